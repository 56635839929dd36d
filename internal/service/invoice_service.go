package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AngeYobo/oxalio/internal/apierror"
	"github.com/AngeYobo/oxalio/internal/config"
	"github.com/AngeYobo/oxalio/internal/dgi"
	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/model"
	"github.com/AngeYobo/oxalio/internal/money"
	"github.com/AngeYobo/oxalio/internal/repository"
	"github.com/AngeYobo/oxalio/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// XOF stamp tax for cash payments, in francs.
var stampTaxCash = decimal.NewFromInt(100)

type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Update(ctx context.Context, id int64, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*dto.InvoiceResponse, error)
	GetByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	SubmitToDgi(ctx context.Context, id int64) (*dto.InvoiceResponse, error)
	// Refund cancels a submitted invoice through the DGI credit-note flow.
	// idOrRef is the fneInvoiceId UUID or the DGI reference.
	Refund(ctx context.Context, idOrRef string, req dto.RefundInvoiceRequest) (*dto.RefundInvoiceResponse, error)
	AssemblePdfData(ctx context.Context, id int64) (*dto.PdfModel, error)
}

type invoiceService struct {
	repo       repository.InvoiceRepository
	dgi        dgi.Client
	cfg        *config.Config
	dispatcher *worker.Dispatcher
}

func NewInvoiceService(repo repository.InvoiceRepository, client dgi.Client, cfg *config.Config, dispatcher *worker.Dispatcher) InvoiceService {
	return &invoiceService{repo: repo, dgi: client, cfg: cfg, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	lines, totals := computeLines(req)

	inv := model.Invoice{
		InvoiceType: req.InvoiceType,
		Template:    req.Template,
		Currency:    req.Currency,
		IsRne:       req.IsRne,

		SellerTaxID:       req.SellerTaxID,
		SellerName:        req.SellerName,
		SellerAddress:     req.SellerAddress,
		SellerPointOfSale: req.SellerPointOfSale,
		SellerContact:     req.SellerContact,

		BuyerTaxID:   req.BuyerTaxID,
		BuyerName:    req.BuyerName,
		BuyerAddress: req.BuyerAddress,
		BuyerPhone:   req.BuyerPhone,
		BuyerEmail:   req.BuyerEmail,

		PaymentMethod:     req.PaymentMethod,
		CommercialMessage: req.CommercialMessage,

		Status:    model.StatusReceived,
		IssueDate: time.Now().UTC(),
		Lines:     lines,
	}
	if req.IsRne {
		rne := req.Rne
		inv.Rne = &rne
	}
	if inv.SellerPointOfSale == "" {
		inv.SellerPointOfSale = s.cfg.FnePointOfSale
	}
	applyTotals(&inv, totals, req.OtherTaxes, req.PaymentMethod, req.Currency)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextInvoiceNumber(ctx, tx, inv.IssueDate.Year())
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		return s.repo.Create(ctx, tx, &inv)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Int64("invoice_id", inv.ID).
		Str("number", inv.InvoiceNumber).
		Str("total_to_pay", inv.TotalToPay.String()).
		Msg("invoice created")

	return invoiceToResponse(&inv), nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// Replaces the full draft (line set included) and recomputes totals. Only
// RECEIVED invoices may change; the invoice number never does.

func (s *invoiceService) Update(ctx context.Context, id int64, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	var inv *model.Invoice
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		inv, err = s.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if inv.IsFinal() {
			return apierror.Conflictf("invoice %s is %s and can no longer be edited", inv.InvoiceNumber, inv.Status)
		}

		lines, totals := computeLines(req)

		inv.InvoiceType = req.InvoiceType
		inv.Template = req.Template
		inv.Currency = req.Currency
		inv.IsRne = req.IsRne
		inv.Rne = nil
		if req.IsRne {
			rne := req.Rne
			inv.Rne = &rne
		}
		inv.SellerTaxID = req.SellerTaxID
		inv.SellerName = req.SellerName
		inv.SellerAddress = req.SellerAddress
		inv.SellerPointOfSale = req.SellerPointOfSale
		if inv.SellerPointOfSale == "" {
			inv.SellerPointOfSale = s.cfg.FnePointOfSale
		}
		inv.SellerContact = req.SellerContact
		inv.BuyerTaxID = req.BuyerTaxID
		inv.BuyerName = req.BuyerName
		inv.BuyerAddress = req.BuyerAddress
		inv.BuyerPhone = req.BuyerPhone
		inv.BuyerEmail = req.BuyerEmail
		inv.PaymentMethod = req.PaymentMethod
		inv.CommercialMessage = req.CommercialMessage
		applyTotals(inv, totals, req.OtherTaxes, req.PaymentMethod, req.Currency)

		if err := s.repo.ReplaceLines(ctx, tx, inv, lines); err != nil {
			return err
		}
		return s.repo.Save(ctx, tx, inv)
	})
	if txErr != nil {
		return nil, txErr
	}
	return invoiceToResponse(inv), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Delete(ctx context.Context, id int64) error {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "invoice", id)
	}
	if inv.IsFinal() {
		return apierror.Conflictf("invoice %s is %s and cannot be deleted", inv.InvoiceNumber, inv.Status)
	}
	return s.repo.Delete(ctx, id)
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *invoiceService) Get(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) GetByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, notFoundOr(err, "invoice", number)
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, *invoiceToResponse(&invoices[i]))
	}
	return &dto.InvoiceListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── SubmitToDgi ──────────────────────────────────────────────────────────────
// Idempotent on fneInvoiceId: resubmitting a submitted invoice returns it
// unchanged. The row lock serializes concurrent submits of the same invoice,
// so at most one DGI call wins.

func (s *invoiceService) SubmitToDgi(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	var inv *model.Invoice
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		inv, err = s.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if inv.FneInvoiceID != nil {
			return nil // already submitted
		}
		if inv.Status != model.StatusReceived {
			return apierror.Conflictf("invoice %s is %s and cannot be submitted", inv.InvoiceNumber, inv.Status)
		}

		resp, err := s.dgi.SignInvoice(ctx, s.buildSignRequest(inv))
		if err != nil {
			log.Error().Err(err).Str("number", inv.InvoiceNumber).Msg("dgi submission failed")
			return err
		}

		now := time.Now().UTC()
		inv.FneInvoiceID = &resp.Invoice.ID
		ref := resp.Invoice.Reference
		if ref == "" {
			ref = resp.Reference
		}
		inv.FneReference = &ref
		if resp.Token != "" {
			token := resp.Token
			inv.FneToken = &token
		}
		inv.Status = model.StatusSubmittedToDgi
		inv.DgiSubmittedAt = &now

		// Positional mapping: response item i belongs to request line i.
		// Extra response items are ignored, missing ones leave fneItemId null.
		for i := range inv.Lines {
			if i < len(resp.Invoice.Items) && resp.Invoice.Items[i].ID != "" {
				itemID := resp.Invoice.Items[i].ID
				inv.Lines[i].FneItemID = &itemID
			}
		}

		if err := s.repo.Save(ctx, tx, inv); err != nil {
			return err
		}
		if tx != nil {
			for i := range inv.Lines {
				if inv.Lines[i].FneItemID == nil {
					continue
				}
				if err := tx.WithContext(ctx).Model(&model.InvoiceLine{}).
					Where("id = ?", inv.Lines[i].ID).
					Update("fne_item_id", *inv.Lines[i].FneItemID).Error; err != nil {
					return err
				}
			}
		}

		log.Info().
			Str("number", inv.InvoiceNumber).
			Str("fne_reference", ref).
			Msg("invoice submitted to dgi")
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Receipt delivery is best-effort and must not delay the response.
	if s.dispatcher != nil && inv.BuyerEmail != "" && inv.Status == model.StatusSubmittedToDgi {
		_ = s.dispatcher.EnqueueReceipt(ctx, map[string]interface{}{
			"invoice_id": inv.ID,
			"email":      inv.BuyerEmail,
		})
	}

	return invoiceToResponse(inv), nil
}

// ── Refund ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Refund(ctx context.Context, idOrRef string, req dto.RefundInvoiceRequest) (*dto.RefundInvoiceResponse, error) {
	inv, err := s.findByFneIdentifier(ctx, idOrRef)
	if err != nil {
		return nil, err
	}

	var dgiResp *dgi.RefundResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.findForUpdate(ctx, tx, inv.ID)
		if err != nil {
			return err
		}
		inv = locked

		if inv.Status != model.StatusSubmittedToDgi {
			return apierror.Conflictf("invoice %s is %s and cannot be refunded", inv.InvoiceNumber, inv.Status)
		}

		refundReq, err := buildRefundRequest(inv, req)
		if err != nil {
			return err
		}

		dgiResp, err = s.dgi.CreateRefund(ctx, *inv.FneInvoiceID, refundReq)
		if err != nil {
			log.Error().Err(err).Str("number", inv.InvoiceNumber).Msg("dgi refund failed")
			return err
		}

		inv.Status = model.StatusCancelled
		if err := s.repo.Save(ctx, tx, inv); err != nil {
			// DGI accepted the credit note but our row did not persist; the
			// operator must reconcile manually from the logged reference.
			log.Warn().
				Str("number", inv.InvoiceNumber).
				Str("refund_reference", dgiResp.Reference).
				Msg("refund accepted by dgi but local state not persisted")
			return err
		}

		log.Info().
			Str("number", inv.InvoiceNumber).
			Str("refund_reference", dgiResp.Reference).
			Msg("invoice refunded and cancelled")
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &dto.RefundInvoiceResponse{
		Ncc:       dgiResp.Ncc,
		Reference: dgiResp.Reference,
		Token:     dgiResp.Token,
		Invoice:   *invoiceToResponse(inv),
	}, nil
}

// ── AssemblePdfData ──────────────────────────────────────────────────────────
// Read-only projection for the PDF renderer. Drafts get the synthetic
// DRAFT-<number> reference and a synthetic QR payload instead of the token.

func (s *invoiceService) AssemblePdfData(ctx context.Context, id int64) (*dto.PdfModel, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}

	ref := "DRAFT-" + inv.InvoiceNumber
	if inv.FneReference != nil {
		ref = *inv.FneReference
	}

	qr := fmt.Sprintf("Invoice:%s|Seller:%s|Amount:%s %s|Date:%s",
		inv.InvoiceNumber, inv.SellerName, inv.TotalToPay.StringFixed(2),
		inv.Currency, inv.IssueDate.Format(time.RFC3339))
	if inv.FneToken != nil && *inv.FneToken != "" {
		qr = *inv.FneToken
	} else if inv.Status == model.StatusSubmittedToDgi {
		return nil, apierror.Conflictf("invoice %s is submitted but carries no verification token", inv.InvoiceNumber)
	}

	lines := make([]dto.PdfLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, dto.PdfLine{
			Description: l.Description,
			Sku:         l.Sku,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VatRate:     l.VatRate,
			Discount:    l.Discount,
			VatAmount:   l.VatAmount,
			LineTotal:   l.LineTotal,
		})
	}

	m := &dto.PdfModel{
		InvoiceNumber: inv.InvoiceNumber,
		FneReference:  ref,
		IssueDate:     inv.IssueDate.Format(time.RFC3339),
		Seller: dto.PdfParty{
			TaxID:   inv.SellerTaxID,
			Name:    inv.SellerName,
			Address: inv.SellerAddress,
			Contact: inv.SellerContact,
		},
		Buyer: dto.PdfParty{
			Name:    inv.BuyerName,
			Address: inv.BuyerAddress,
			Contact: inv.BuyerPhone,
		},
		Lines: lines,
		Totals: dto.PdfTotals{
			Subtotal:   inv.Subtotal,
			TotalVat:   inv.TotalVat,
			OtherTaxes: inv.OtherTaxes,
			StampTax:   inv.StampTax,
			TotalToPay: inv.TotalToPay,
		},
		Template:      inv.Template,
		IsRne:         inv.IsRne,
		PaymentMethod: inv.PaymentMethod,
		Currency:      inv.Currency,
		QrPayload:     qr,
	}
	if inv.BuyerTaxID != nil {
		m.Buyer.TaxID = *inv.BuyerTaxID
	}
	if inv.Rne != nil {
		m.Rne = *inv.Rne
	}
	return m, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// lineTotals carries the aggregate sums of a computed line set.
type lineTotals struct {
	subtotal      decimal.Decimal
	totalVat      decimal.Decimal
	totalDiscount decimal.Decimal
}

// computeLines derives per-line base, VAT and total, and the aggregate sums.
// Bases sum without re-rounding; only per-line values are rounded.
func computeLines(req dto.CreateInvoiceRequest) ([]model.InvoiceLine, lineTotals) {
	lines := make([]model.InvoiceLine, 0, len(req.Lines))
	t := lineTotals{subtotal: decimal.Zero, totalVat: decimal.Zero, totalDiscount: decimal.Zero}

	for i, lr := range req.Lines {
		qty := money.Quantity(lr.Quantity)
		price := money.Round2(lr.UnitPrice)
		discount := money.Round2(lr.Discount)
		rate := money.Rate(lr.VatRate)

		base := money.LineBase(qty, price, discount)
		vat := money.VAT(base, rate)

		lines = append(lines, model.InvoiceLine{
			Position:    i + 1,
			Description: lr.Description,
			Sku:         lr.Sku,
			Unit:        lr.Unit,
			Quantity:    qty,
			UnitPrice:   price,
			VatRate:     rate,
			Discount:    discount,
			VatAmount:   vat,
			LineTotal:   base.Add(vat),
		})

		t.subtotal = t.subtotal.Add(base)
		t.totalVat = t.totalVat.Add(vat)
		t.totalDiscount = t.totalDiscount.Add(discount)
	}
	return lines, t
}

// applyTotals writes the aggregate totals onto the invoice. The stamp tax
// applies only to cash payments in XOF.
func applyTotals(inv *model.Invoice, t lineTotals, otherTaxes decimal.Decimal, paymentMethod, currency string) {
	stamp := decimal.Zero
	if strings.EqualFold(paymentMethod, "CASH") && currency == "XOF" {
		stamp = stampTaxCash
	}
	other := money.Round2(otherTaxes)

	inv.Subtotal = t.subtotal
	inv.TotalVat = t.totalVat
	inv.TotalDiscount = t.totalDiscount
	inv.OtherTaxes = other
	inv.StampTax = stamp
	inv.TotalAmount = t.subtotal.Add(t.totalVat)
	inv.TotalToPay = t.subtotal.Add(t.totalVat).Add(other).Add(stamp)
}

// findForUpdate loads the invoice under the row lock, falling back to a plain
// read when running without a DB (unit test mode).
func (s *invoiceService) findForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Invoice, error) {
	var inv *model.Invoice
	var err error
	if tx == nil {
		inv, err = s.repo.FindByID(ctx, id)
	} else {
		inv, err = s.repo.FindByIDForUpdate(ctx, tx, id)
	}
	if err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return inv, nil
}

// findByFneIdentifier resolves the refund path parameter, which is either
// the fneInvoiceId UUID or the human DGI reference.
func (s *invoiceService) findByFneIdentifier(ctx context.Context, idOrRef string) (*model.Invoice, error) {
	if _, err := uuid.Parse(idOrRef); err == nil {
		inv, err := s.repo.FindByFneID(ctx, idOrRef)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	inv, err := s.repo.FindByFneReference(ctx, idOrRef)
	if err != nil {
		return nil, notFoundOr(err, "invoice", idOrRef)
	}
	return inv, nil
}

// buildSignRequest projects the stored invoice into the DGI sign payload.
func (s *invoiceService) buildSignRequest(inv *model.Invoice) *dgi.SignRequest {
	req := &dgi.SignRequest{
		InvoiceType:       strings.ToLower(inv.InvoiceType),
		PaymentMethod:     strings.ToLower(inv.PaymentMethod),
		Template:          inv.Template,
		IsRne:             inv.IsRne,
		ClientCompanyName: inv.BuyerName,
		ClientPhone:       inv.BuyerPhone,
		ClientEmail:       inv.BuyerEmail,
		Establishment:     s.cfg.FneEstablishmentName,
		PointOfSale:       inv.SellerPointOfSale,
	}
	if inv.Rne != nil {
		req.Rne = *inv.Rne
	}
	if inv.BuyerTaxID != nil {
		req.ClientNcc = *inv.BuyerTaxID
	}
	if inv.CommercialMessage != nil {
		req.CommercialMessage = *inv.CommercialMessage
	}
	if inv.Currency != "XOF" {
		req.ForeignCurrency = inv.Currency
	}

	for _, l := range inv.Lines {
		taxes := []string{}
		if l.VatRate.IsPositive() {
			taxes = []string{"TVA"}
		}
		item := dgi.SignItem{
			Taxes:       taxes,
			Description: l.Description,
			Quantity:    l.Quantity,
			Amount:      l.UnitPrice,
			Discount:    l.Discount,
		}
		if l.Sku != nil {
			item.Reference = *l.Sku
		}
		if l.Unit != nil {
			item.MeasurementUnit = *l.Unit
		}
		req.Items = append(req.Items, item)
	}
	return req
}

// buildRefundRequest validates the refund spec against the stored lines and
// projects it onto the DGI refund payload.
func buildRefundRequest(inv *model.Invoice, req dto.RefundInvoiceRequest) (*dgi.RefundRequest, error) {
	byID := make(map[int64]*model.InvoiceLine, len(inv.Lines))
	for i := range inv.Lines {
		byID[inv.Lines[i].ID] = &inv.Lines[i]
	}

	out := &dgi.RefundRequest{}
	for _, item := range req.Items {
		line, ok := byID[item.LineID]
		if !ok {
			return nil, apierror.NotFound("invoice line", item.LineID)
		}
		if line.FneItemID == nil {
			return nil, apierror.Conflictf("line %d has no DGI item id and cannot be refunded", line.Position)
		}
		if item.Quantity.GreaterThan(line.Quantity) {
			return nil, apierror.Validation(map[string]string{
				fmt.Sprintf("items[%d].quantity", line.Position-1): "refund quantity exceeds invoiced quantity",
			})
		}
		out.Items = append(out.Items, dgi.RefundItem{
			ID:       *line.FneItemID,
			Quantity: money.Quantity(item.Quantity),
		})
	}
	return out, nil
}

func notFoundOr(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(resource, id)
	}
	return err
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	lines := make([]dto.InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, dto.InvoiceLineResponse{
			ID:          l.ID,
			Position:    l.Position,
			Description: l.Description,
			Sku:         l.Sku,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VatRate:     l.VatRate,
			Discount:    l.Discount,
			VatAmount:   l.VatAmount,
			LineTotal:   l.LineTotal,
			FneItemID:   l.FneItemID,
		})
	}

	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceType:   inv.InvoiceType,
		Template:      inv.Template,
		Currency:      inv.Currency,
		IsRne:         inv.IsRne,

		SellerTaxID:       inv.SellerTaxID,
		SellerName:        inv.SellerName,
		SellerAddress:     inv.SellerAddress,
		SellerPointOfSale: inv.SellerPointOfSale,
		SellerContact:     inv.SellerContact,

		BuyerTaxID:   inv.BuyerTaxID,
		BuyerName:    inv.BuyerName,
		BuyerAddress: inv.BuyerAddress,
		BuyerPhone:   inv.BuyerPhone,
		BuyerEmail:   inv.BuyerEmail,

		Subtotal:      inv.Subtotal,
		TotalVat:      inv.TotalVat,
		OtherTaxes:    inv.OtherTaxes,
		StampTax:      inv.StampTax,
		TotalAmount:   inv.TotalAmount,
		TotalToPay:    inv.TotalToPay,
		TotalDiscount: inv.TotalDiscount,

		PaymentMethod:     inv.PaymentMethod,
		CommercialMessage: inv.CommercialMessage,

		Status:       inv.Status,
		FneInvoiceID: inv.FneInvoiceID,
		FneReference: inv.FneReference,
		FneToken:     inv.FneToken,
		IssueDate:    inv.IssueDate.Format(time.RFC3339),

		Lines: lines,
	}
	if inv.Rne != nil {
		resp.Rne = *inv.Rne
	}
	if inv.DgiSubmittedAt != nil {
		s := inv.DgiSubmittedAt.Format(time.RFC3339)
		resp.DgiSubmittedAt = &s
	}
	return resp
}
