package service

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/config"
	"github.com/AngeYobo/oxalio/internal/dgi"
	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── stubs ────────────────────────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices map[int64]*model.Invoice
	nextID   int64
	nextLine int64
	counters map[int]int64
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: map[int64]*model.Invoice{}, counters: map[int]int64{}}
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

func (r *stubInvoiceRepo) Create(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	r.nextID++
	inv.ID = r.nextID
	for i := range inv.Lines {
		r.nextLine++
		inv.Lines[i].ID = r.nextLine
		inv.Lines[i].InvoiceID = inv.ID
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id int64) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindByIDForUpdate(ctx context.Context, _ *gorm.DB, id int64) (*model.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *stubInvoiceRepo) FindByNumber(_ context.Context, number string) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) FindByFneID(_ context.Context, id string) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.FneInvoiceID != nil && *inv.FneInvoiceID == id {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) FindByFneReference(_ context.Context, ref string) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.FneReference != nil && *inv.FneReference == ref {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) List(_ context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	ids := make([]int64, 0, len(r.invoices))
	for id := range r.invoices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		inv := r.invoices[id]
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) Save(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) ReplaceLines(_ context.Context, _ *gorm.DB, inv *model.Invoice, lines []model.InvoiceLine) error {
	for i := range lines {
		r.nextLine++
		lines[i].ID = r.nextLine
		lines[i].InvoiceID = inv.ID
	}
	inv.Lines = lines
	return nil
}

func (r *stubInvoiceRepo) Delete(_ context.Context, id int64) error {
	delete(r.invoices, id)
	return nil
}

func (r *stubInvoiceRepo) NextInvoiceNumber(_ context.Context, _ *gorm.DB, year int) (string, error) {
	r.counters[year]++
	return fmt.Sprintf("INV-%d-%06d", year, r.counters[year]), nil
}

// scriptedDgi lets a test pin the next responses and inspect calls.
type scriptedDgi struct {
	signResp   *dgi.SignResponse
	signErr    error
	signCalls  int
	lastSign   *dgi.SignRequest
	refundResp *dgi.RefundResponse
	refundErr  error
	lastRefund *dgi.RefundRequest
}

func (c *scriptedDgi) SignInvoice(_ context.Context, req *dgi.SignRequest) (*dgi.SignResponse, error) {
	c.signCalls++
	c.lastSign = req
	if c.signErr != nil {
		return nil, c.signErr
	}
	return c.signResp, nil
}

func (c *scriptedDgi) CreateRefund(_ context.Context, _ string, req *dgi.RefundRequest) (*dgi.RefundResponse, error) {
	c.lastRefund = req
	if c.refundErr != nil {
		return nil, c.refundErr
	}
	return c.refundResp, nil
}

func newTestService(client dgi.Client) (InvoiceService, *stubInvoiceRepo) {
	repo := newStubInvoiceRepo()
	cfg := &config.Config{
		FneEstablishmentName: "Etablissement Test",
		FnePointOfSale:       "Point de Vente 1",
	}
	return NewInvoiceService(repo, client, cfg, nil), repo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func draftRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		InvoiceType:   "SALE",
		Template:      "B2C",
		Currency:      "XOF",
		SellerTaxID:   "2505842N",
		SellerName:    "Oxalio Demo SARL",
		BuyerName:     "Client Particulier",
		PaymentMethod: "CASH",
		Lines: []dto.InvoiceLineRequest{
			{Description: "Sac de riz 25kg", Quantity: dec("2"), UnitPrice: dec("10000"), VatRate: dec("18")},
			{Description: "Huile 1L", Quantity: dec("3"), UnitPrice: dec("1500"), VatRate: dec("9"), Discount: dec("500")},
		},
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func TestCreateComputesTotalsAndStampTax(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	resp, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	// line 1: base 20000, vat 3600 — line 2: base 4500-500=4000, vat 360
	assert.True(t, resp.Subtotal.Equal(dec("24000")), "subtotal=%s", resp.Subtotal)
	assert.True(t, resp.TotalVat.Equal(dec("3960")), "totalVat=%s", resp.TotalVat)
	assert.True(t, resp.StampTax.Equal(dec("100")), "cash+XOF carries the stamp")
	assert.True(t, resp.TotalToPay.Equal(dec("28060")), "totalToPay=%s", resp.TotalToPay)
	assert.True(t, resp.TotalDiscount.Equal(dec("500")))

	assert.Equal(t, model.StatusReceived, resp.Status)
	assert.Nil(t, resp.FneInvoiceID)
	assert.Regexp(t, `^INV-\d{4}-\d{6}$`, resp.InvoiceNumber)
	assert.Equal(t, 1, resp.Lines[0].Position)
	assert.True(t, resp.Lines[0].LineTotal.Equal(dec("23600")))
}

func TestCreateNoStampForCardOrForeignCurrency(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	card := draftRequest()
	card.PaymentMethod = "CARD"
	resp, err := svc.Create(context.Background(), card)
	require.NoError(t, err)
	assert.True(t, resp.StampTax.IsZero())

	eur := draftRequest()
	eur.Currency = "EUR"
	resp, err = svc.Create(context.Background(), eur)
	require.NoError(t, err)
	assert.True(t, resp.StampTax.IsZero(), "stamp applies to XOF only")
}

func TestCreateClampsNegativeLineBase(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	req := draftRequest()
	req.Lines = []dto.InvoiceLineRequest{
		{Description: "Remise totale", Quantity: dec("1"), UnitPrice: dec("100"), VatRate: dec("18"), Discount: dec("500")},
	}
	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.IsZero(), "base clamps to zero, never negative")
	assert.True(t, resp.TotalVat.IsZero())
}

func TestCreateNumbersAreSequentialWithinYear(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	first, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.Less(t, first.InvoiceNumber, second.InvoiceNumber)
}

// ── Update / Delete ──────────────────────────────────────────────────────────

func TestUpdateReplacesLinesAndRecomputes(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	req := draftRequest()
	req.Lines = []dto.InvoiceLineRequest{
		{Description: "Article unique", Quantity: dec("1"), UnitPrice: dec("5000"), VatRate: dec("18")},
	}
	updated, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber, "number survives updates")
	assert.Len(t, updated.Lines, 1)
	assert.True(t, updated.Subtotal.Equal(dec("5000")))
	assert.True(t, updated.TotalVat.Equal(dec("900")))
}

func TestUpdateRejectedAfterSubmission(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	_, err = svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, draftRequest())
	ae := apierror.As(err)
	assert.Equal(t, apierror.KindConflict, ae.Kind)
}

func TestDeleteOnlyDrafts(t *testing.T) {
	svc, repo := newTestService(dgi.NewMockClient(""))

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	_, err = svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)
	err = svc.Delete(context.Background(), created.ID)
	assert.Equal(t, apierror.KindConflict, apierror.As(err).Kind)

	draft, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), draft.ID))
	_, ok := repo.invoices[draft.ID]
	assert.False(t, ok)
}

func TestDeleteUnknownIsNotFound(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))
	err := svc.Delete(context.Background(), 424242)
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}

// ── SubmitToDgi ──────────────────────────────────────────────────────────────

func TestSubmitAssignsDgiIdentifiersPositionally(t *testing.T) {
	client := &scriptedDgi{
		signResp: &dgi.SignResponse{
			Ncc:       "2505842N",
			Reference: "DGI-REF-11111111",
			Token:     "https://fne.dgi.gouv.ci/verify/abc",
			Invoice: &dgi.SignedInvoice{
				ID:        "7b0fba2e-48a5-4b9e-8ede-3d9f77c2a001",
				Reference: "DGI-REF-11111111",
				Items: []dgi.SignedItem{
					{ID: "item-0"},
					{ID: "item-1"},
					{ID: "item-extra"}, // ignored: no matching request line
				},
			},
		},
	}
	svc, _ := newTestService(client)

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	resp, err := svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSubmittedToDgi, resp.Status)
	assert.Equal(t, "7b0fba2e-48a5-4b9e-8ede-3d9f77c2a001", *resp.FneInvoiceID)
	assert.Equal(t, "DGI-REF-11111111", *resp.FneReference)
	assert.NotNil(t, resp.DgiSubmittedAt)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "item-0", *resp.Lines[0].FneItemID)
	assert.Equal(t, "item-1", *resp.Lines[1].FneItemID)

	// outbound payload spot checks
	require.NotNil(t, client.lastSign)
	assert.Equal(t, "sale", client.lastSign.InvoiceType)
	assert.Equal(t, "cash", client.lastSign.PaymentMethod)
	assert.Equal(t, "Etablissement Test", client.lastSign.Establishment)
	assert.Equal(t, []string{"TVA"}, client.lastSign.Items[0].Taxes)
}

func TestSubmitMissingResponseItemsLeaveLinesUnmapped(t *testing.T) {
	client := &scriptedDgi{
		signResp: &dgi.SignResponse{
			Reference: "DGI-REF-2",
			Invoice: &dgi.SignedInvoice{
				ID:    "9f0fba2e-48a5-4b9e-8ede-3d9f77c2a002",
				Items: []dgi.SignedItem{{ID: "only-first"}},
			},
		},
	}
	svc, _ := newTestService(client)

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	resp, err := svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "only-first", *resp.Lines[0].FneItemID)
	assert.Nil(t, resp.Lines[1].FneItemID)
}

func TestSubmitIsIdempotentOnFneInvoiceID(t *testing.T) {
	client := &scriptedDgi{
		signResp: &dgi.SignResponse{
			Reference: "DGI-REF-3",
			Invoice:   &dgi.SignedInvoice{ID: "1c0fba2e-48a5-4b9e-8ede-3d9f77c2a003"},
		},
	}
	svc, _ := newTestService(client)

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	first, err := svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, client.signCalls, "second submit must not hit the DGI")
	assert.Equal(t, *first.FneInvoiceID, *second.FneInvoiceID)
}

func TestSubmitFailureKeepsInvoiceReceived(t *testing.T) {
	client := &scriptedDgi{signErr: &dgi.ServerError{Status: 503, Body: "unavailable"}}
	svc, _ := newTestService(client)

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	_, err = svc.SubmitToDgi(context.Background(), created.ID)
	require.Error(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReceived, got.Status)
	assert.Nil(t, got.FneInvoiceID)
}

// ── Refund ───────────────────────────────────────────────────────────────────

func submitInvoice(t *testing.T, svc InvoiceService) *dto.InvoiceResponse {
	t.Helper()
	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	submitted, err := svc.SubmitToDgi(context.Background(), created.ID)
	require.NoError(t, err)
	return submitted
}

func TestRefundCancelsInvoice(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))
	submitted := submitInvoice(t, svc)

	resp, err := svc.Refund(context.Background(), *submitted.FneInvoiceID, dto.RefundInvoiceRequest{
		Items: []dto.RefundLineRequest{{LineID: submitted.Lines[0].ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, resp.Invoice.Status)
	assert.NotEmpty(t, resp.Reference)
}

func TestRefundByDgiReference(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))
	submitted := submitInvoice(t, svc)

	resp, err := svc.Refund(context.Background(), *submitted.FneReference, dto.RefundInvoiceRequest{
		Items: []dto.RefundLineRequest{{LineID: submitted.Lines[0].ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, resp.Invoice.Status)
}

func TestRefundRejectsDrafts(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)
	// drafts have no fne identifiers, so the lookup itself misses
	_, err = svc.Refund(context.Background(), fmt.Sprint(created.ID), dto.RefundInvoiceRequest{
		Items: []dto.RefundLineRequest{{LineID: created.Lines[0].ID, Quantity: dec("1")}},
	})
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}

func TestRefundQuantityMayNotExceedInvoiced(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))
	submitted := submitInvoice(t, svc)

	_, err := svc.Refund(context.Background(), *submitted.FneInvoiceID, dto.RefundInvoiceRequest{
		Items: []dto.RefundLineRequest{{LineID: submitted.Lines[0].ID, Quantity: dec("99")}},
	})
	assert.Equal(t, apierror.KindValidation, apierror.As(err).Kind)
}

func TestRefundTargetsFneItemIDs(t *testing.T) {
	client := &scriptedDgi{
		signResp: &dgi.SignResponse{
			Reference: "DGI-REF-4",
			Invoice: &dgi.SignedInvoice{
				ID:    "5a0fba2e-48a5-4b9e-8ede-3d9f77c2a004",
				Items: []dgi.SignedItem{{ID: "fne-item-a"}, {ID: "fne-item-b"}},
			},
		},
		refundResp: &dgi.RefundResponse{Reference: "AVR-DGI-REF-4"},
	}
	svc, _ := newTestService(client)
	submitted := submitInvoice(t, svc)

	_, err := svc.Refund(context.Background(), *submitted.FneInvoiceID, dto.RefundInvoiceRequest{
		Items: []dto.RefundLineRequest{{LineID: submitted.Lines[1].ID, Quantity: dec("2")}},
	})
	require.NoError(t, err)

	require.NotNil(t, client.lastRefund)
	require.Len(t, client.lastRefund.Items, 1)
	assert.Equal(t, "fne-item-b", client.lastRefund.Items[0].ID)
}

// ── AssemblePdfData ──────────────────────────────────────────────────────────

func TestAssemblePdfDataForDraftUsesSyntheticReference(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))

	created, err := svc.Create(context.Background(), draftRequest())
	require.NoError(t, err)

	m, err := svc.AssemblePdfData(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "DRAFT-"+created.InvoiceNumber, m.FneReference)
	assert.Contains(t, m.QrPayload, "Invoice:"+created.InvoiceNumber)
	assert.Contains(t, m.QrPayload, "Seller:Oxalio Demo SARL")
	assert.Len(t, m.Lines, 2)
}

func TestAssemblePdfDataUsesTokenAfterSubmission(t *testing.T) {
	svc, _ := newTestService(dgi.NewMockClient(""))
	submitted := submitInvoice(t, svc)

	m, err := svc.AssemblePdfData(context.Background(), submitted.ID)
	require.NoError(t, err)

	assert.Equal(t, *submitted.FneReference, m.FneReference)
	assert.Equal(t, *submitted.FneToken, m.QrPayload)
}
