package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/config"
	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── stubs ────────────────────────────────────────────────────────────────────

type stubTerminalRepo struct {
	terminals   map[uuid.UUID]*model.Terminal
	dupOnCreate bool // simulate the serial_number unique index firing
}

func newStubTerminalRepo() *stubTerminalRepo {
	return &stubTerminalRepo{terminals: map[uuid.UUID]*model.Terminal{}}
}

func (r *stubTerminalRepo) Create(_ context.Context, t *model.Terminal) error {
	if r.dupOnCreate {
		return gorm.ErrDuplicatedKey
	}
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.terminals[t.ID] = t
	return nil
}

func (r *stubTerminalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Terminal, error) {
	t, ok := r.terminals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTerminalRepo) FindBySerial(_ context.Context, serial string) (*model.Terminal, error) {
	for _, t := range r.terminals {
		if t.SerialNumber == serial {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTerminalRepo) List(_ context.Context, filter dto.TerminalFilter) ([]model.Terminal, int64, error) {
	var out []model.Terminal
	for _, t := range r.terminals {
		if filter.TenantID != "" && t.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTerminalRepo) Save(_ context.Context, t *model.Terminal) error {
	t.UpdatedAt = time.Now().UTC()
	r.terminals[t.ID] = t
	return nil
}

func (r *stubTerminalRepo) TouchLastSeen(_ context.Context, id uuid.UUID, seenAt time.Time) error {
	t, ok := r.terminals[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if t.LastSeenAt == nil || t.LastSeenAt.Before(seenAt) {
		t.LastSeenAt = &seenAt
	}
	return nil
}

type stubEventRepo struct {
	events []model.TerminalEvent
}

func (r *stubEventRepo) Append(_ context.Context, e *model.TerminalEvent) error {
	r.events = append(r.events, *e)
	return nil
}

func (r *stubEventRepo) List(_ context.Context, terminalID uuid.UUID, filter dto.TerminalEventFilter) ([]model.TerminalEvent, int64, error) {
	var out []model.TerminalEvent
	for _, e := range r.events {
		if e.TerminalID != terminalID {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	total := int64(len(out))
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func newTestTerminalService() (TerminalService, *stubTerminalRepo, *stubEventRepo) {
	repo := newStubTerminalRepo()
	events := &stubEventRepo{}
	cfg := &config.Config{DeviceTokenSecret: "test-secret"}
	return NewTerminalService(repo, events, cfg), repo, events
}

func enrollRequest(serial string) dto.EnrollTerminalRequest {
	return dto.EnrollTerminalRequest{
		TenantID:     "tenant-ci",
		SerialNumber: serial,
		Tags:         []string{"abidjan", "pilot"},
	}
}

// ── Enroll ───────────────────────────────────────────────────────────────────

func TestEnrollCreatesTerminalWithDeviceToken(t *testing.T) {
	svc, _, _ := newTestTerminalService()

	resp, err := svc.Enroll(context.Background(), enrollRequest("SN-0001"))
	require.NoError(t, err)

	assert.Equal(t, model.TerminalEnrolled, resp.Terminal.Status)
	assert.Nil(t, resp.Terminal.LastSeenAt)
	assert.NotEmpty(t, resp.DeviceToken)

	token, err := jwt.Parse(resp.DeviceToken, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.Terminal.ID, claims["terminal_id"])
	assert.Equal(t, "SN-0001", claims["serial"])
}

func TestEnrollDuplicateSerialConflicts(t *testing.T) {
	svc, _, _ := newTestTerminalService()

	_, err := svc.Enroll(context.Background(), enrollRequest("SN-0002"))
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), enrollRequest("SN-0002"))
	assert.Equal(t, apierror.KindConflict, apierror.As(err).Kind)
}

func TestEnrollConcurrentSerialRaceConflicts(t *testing.T) {
	svc, repo, _ := newTestTerminalService()
	repo.dupOnCreate = true

	// The serial lookup passes but the insert loses the race on the
	// unique index; the caller still gets a conflict, not a 500.
	_, err := svc.Enroll(context.Background(), enrollRequest("SN-0099"))
	assert.Equal(t, apierror.KindConflict, apierror.As(err).Kind)
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func TestTerminalLifecycleTransitions(t *testing.T) {
	svc, _, _ := newTestTerminalService()

	resp, err := svc.Enroll(context.Background(), enrollRequest("SN-0003"))
	require.NoError(t, err)
	id := uuid.MustParse(resp.Terminal.ID)

	activated, err := svc.Activate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TerminalActive, activated.Status)

	suspended, err := svc.Suspend(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TerminalSuspended, suspended.Status)

	// SUSPENDED → ACTIVE is allowed
	_, err = svc.Activate(context.Background(), id)
	require.NoError(t, err)

	retired, err := svc.Retire(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TerminalRetired, retired.Status)

	// RETIRED has no outgoing edge
	_, err = svc.Activate(context.Background(), id)
	assert.Equal(t, apierror.KindConflict, apierror.As(err).Kind)
}

func TestLifecycleIsIdempotentOnSameStatus(t *testing.T) {
	svc, _, _ := newTestTerminalService()

	resp, err := svc.Enroll(context.Background(), enrollRequest("SN-0004"))
	require.NoError(t, err)
	id := uuid.MustParse(resp.Terminal.ID)

	_, err = svc.Suspend(context.Background(), id)
	require.NoError(t, err)
	again, err := svc.Suspend(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TerminalSuspended, again.Status)
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, repo, _ := newTestTerminalService()

	enrolled, err := svc.Enroll(context.Background(), dto.EnrollTerminalRequest{
		TenantID:     "tenant-ci",
		SerialNumber: "SN-0005",
		Manufacturer: strPtr("Sunmi"),
		OsVersion:    strPtr("11"),
	})
	require.NoError(t, err)
	id := uuid.MustParse(enrolled.Terminal.ID)

	updated, err := svc.Update(context.Background(), id, dto.UpdateTerminalRequest{
		OsVersion: strPtr("12"),
	})
	require.NoError(t, err)

	assert.Equal(t, "12", *updated.OsVersion)
	assert.Equal(t, "Sunmi", *updated.Manufacturer, "unset fields stay untouched")
	assert.Equal(t, "SN-0005", repo.terminals[id].SerialNumber, "serial is immutable")
}

// ── Heartbeat / events ───────────────────────────────────────────────────────

func TestHeartbeatAdvancesLastSeenAndAppendsEvent(t *testing.T) {
	svc, repo, events := newTestTerminalService()

	enrolled, err := svc.Enroll(context.Background(), enrollRequest("SN-0006"))
	require.NoError(t, err)
	id := uuid.MustParse(enrolled.Terminal.ID)

	captured := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, svc.RecordHeartbeat(context.Background(), id, dto.HeartbeatRequest{
		CapturedAt:     &captured,
		BatteryPercent: intPtr(85),
	}))

	require.NotNil(t, repo.terminals[id].LastSeenAt)
	assert.True(t, repo.terminals[id].LastSeenAt.Equal(captured))
	require.Len(t, events.events, 1)
	assert.Equal(t, model.EventHeartbeat, events.events[0].EventType)
	assert.Equal(t, 85, *events.events[0].BatteryLevel)
}

func TestLateHeartbeatNeverMovesLastSeenBackwards(t *testing.T) {
	svc, repo, _ := newTestTerminalService()

	enrolled, err := svc.Enroll(context.Background(), enrollRequest("SN-0007"))
	require.NoError(t, err)
	id := uuid.MustParse(enrolled.Terminal.ID)

	recent := time.Now().UTC()
	stale := recent.Add(-time.Hour)

	require.NoError(t, svc.RecordHeartbeat(context.Background(), id, dto.HeartbeatRequest{CapturedAt: &recent}))
	require.NoError(t, svc.RecordHeartbeat(context.Background(), id, dto.HeartbeatRequest{CapturedAt: &stale}))

	assert.True(t, repo.terminals[id].LastSeenAt.Equal(recent))
}

func TestRecordEventAndListNewestFirst(t *testing.T) {
	svc, _, _ := newTestTerminalService()

	enrolled, err := svc.Enroll(context.Background(), enrollRequest("SN-0008"))
	require.NoError(t, err)
	id := uuid.MustParse(enrolled.Terminal.ID)

	early := time.Now().UTC().Add(-2 * time.Hour)
	late := time.Now().UTC()
	_, err = svc.RecordEvent(context.Background(), id, dto.TerminalEventRequest{EventType: "BOOT", CapturedAt: &early})
	require.NoError(t, err)
	_, err = svc.RecordEvent(context.Background(), id, dto.TerminalEventRequest{EventType: "CRASH", CapturedAt: &late})
	require.NoError(t, err)

	list, err := svc.ListEvents(context.Background(), id, dto.TerminalEventFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "CRASH", list.Data[0].EventType)
	assert.Equal(t, "BOOT", list.Data[1].EventType)
}

func TestHeartbeatUnknownTerminalIsNotFound(t *testing.T) {
	svc, _, _ := newTestTerminalService()
	err := svc.RecordHeartbeat(context.Background(), uuid.New(), dto.HeartbeatRequest{})
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
