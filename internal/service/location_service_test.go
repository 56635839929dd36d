package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubLocationRepo struct {
	fixes []model.TerminalLocation
}

func (r *stubLocationRepo) Append(_ context.Context, l *model.TerminalLocation) error {
	r.fixes = append(r.fixes, *l)
	return nil
}

func (r *stubLocationRepo) History(_ context.Context, terminalID uuid.UUID, filter dto.LocationHistoryFilter) ([]model.TerminalLocation, int64, error) {
	var out []model.TerminalLocation
	for _, f := range r.fixes {
		if f.TerminalID != terminalID {
			continue
		}
		if filter.From != nil && f.CapturedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && f.CapturedAt.After(*filter.To) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapturedAt.After(out[j].CapturedAt) })
	total := int64(len(out))
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *stubLocationRepo) Latest(ctx context.Context, terminalID uuid.UUID) (*model.TerminalLocation, error) {
	fixes, _, _ := r.History(ctx, terminalID, dto.LocationHistoryFilter{Limit: 1})
	if len(fixes) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &fixes[0], nil
}

func newTestLocationService() (LocationService, uuid.UUID) {
	terminalRepo := newStubTerminalRepo()
	term := &model.Terminal{ID: uuid.New(), TenantID: "tenant-ci", Status: model.TerminalActive, SerialNumber: "SN-LOC"}
	terminalRepo.terminals[term.ID] = term
	return NewLocationService(&stubLocationRepo{}, terminalRepo), term.ID
}

func abidjanFix(at time.Time) dto.LocationIngestRequest {
	return dto.LocationIngestRequest{
		CapturedAt: &at,
		Source:     model.SourceGPS,
		Latitude:   5.3364,
		Longitude:  -4.0267,
	}
}

func TestIngestAndLatest(t *testing.T) {
	svc, terminalID := newTestLocationService()

	old := time.Now().UTC().Add(-time.Hour)
	now := time.Now().UTC()
	_, err := svc.Ingest(context.Background(), terminalID, abidjanFix(old))
	require.NoError(t, err)
	newest, err := svc.Ingest(context.Background(), terminalID, abidjanFix(now))
	require.NoError(t, err)

	latest, err := svc.Latest(context.Background(), terminalID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)
	assert.InDelta(t, 5.3364, latest.Latitude, 1e-9)
}

func TestLatestWithoutFixesIsNotFound(t *testing.T) {
	svc, terminalID := newTestLocationService()
	_, err := svc.Latest(context.Background(), terminalID)
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}

func TestHistoryNewestFirstWithWindow(t *testing.T) {
	svc, terminalID := newTestLocationService()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := svc.Ingest(context.Background(), terminalID, abidjanFix(base.Add(-time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	from := base.Add(-150 * time.Minute)
	list, err := svc.History(context.Background(), terminalID, dto.LocationHistoryFilter{From: &from, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Data, 3)
	for i := 1; i < len(list.Data); i++ {
		assert.True(t, list.Data[i-1].CapturedAt >= list.Data[i].CapturedAt)
	}
}

func TestIngestUnknownTerminalIsNotFound(t *testing.T) {
	svc, _ := newTestLocationService()
	_, err := svc.Ingest(context.Background(), uuid.New(), abidjanFix(time.Now().UTC()))
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}
