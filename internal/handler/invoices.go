package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/infra"
	"github.com/AngeYobo/oxalio/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct {
	svc            service.InvoiceService
	pdfStoragePath string
}

func NewInvoicesHandler(svc service.InvoiceService, pdfStoragePath string) *InvoicesHandler {
	return &InvoicesHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// Create godoc
// @Summary      Create a draft invoice
// @Description  Computes line amounts, VAT and stamp tax, assigns the next sequential number and stores the invoice as RECEIVED.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateInvoiceRequest true "Invoice detail"
// @Success      201  {object} dto.InvoiceResponse
// @Failure      400  {object} apierror.Envelope
// @Router       /api/v1/invoices [post]
func (h *InvoicesHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List invoices
// @Description  Returns a paginated list filtered by status and invoice type, newest first.
// @Tags         invoices
// @Produce      json
// @Param        status      query string false "RECEIVED | SUBMITTED_TO_DGI | REJECTED | CANCELLED"
// @Param        invoiceType query string false "SALE | PURCHASE | CREDIT_NOTE | PROFORMA"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Rows per page (default 50)"
// @Success      200  {object} dto.InvoiceListResponse
// @Failure      400  {object} apierror.Envelope
// @Router       /api/v1/invoices [get]
func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeEnvelope(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get an invoice by id
// @Tags         invoices
// @Produce      json
// @Param        id path int true "Invoice id"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/invoices/{id} [get]
func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByNumber godoc
// @Summary      Get an invoice by its sequential number
// @Tags         invoices
// @Produce      json
// @Param        number path string true "Invoice number, e.g. INV-2026-000042"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/invoices/number/{number} [get]
func (h *InvoicesHandler) GetByNumber(c *gin.Context) {
	resp, err := h.svc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Replace a draft invoice
// @Description  Recomputes all amounts from the new payload. Rejected once the invoice reached a final status.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id   path int true "Invoice id"
// @Param        body body dto.CreateInvoiceRequest true "New invoice detail"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/invoices/{id} [put]
func (h *InvoicesHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a draft invoice
// @Description  Only invoices still in RECEIVED can be deleted.
// @Tags         invoices
// @Param        id path int true "Invoice id"
// @Success      204
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/invoices/{id} [delete]
func (h *InvoicesHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit godoc
// @Summary      Submit an invoice to the DGI
// @Description  Signs the invoice with the tax authority. Idempotent: re-submitting an already signed invoice returns its stored result.
// @Tags         invoices
// @Produce      json
// @Param        id path int true "Invoice id"
// @Success      200  {object} dto.InvoiceResponse
// @Failure      502  {object} apierror.Envelope
// @Router       /api/v1/invoices/{id}/submit-to-dgi [post]
func (h *InvoicesHandler) Submit(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.SubmitToDgi(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pdf godoc
// @Summary      Download the invoice PDF
// @Description  Renders the normalized invoice with its verification QR and streams it back.
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path int true "Invoice id"
// @Success      200
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/invoices/{id}/pdf [get]
func (h *InvoicesHandler) Pdf(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	m, err := h.svc.AssemblePdfData(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	path, err := infra.RenderInvoicePDF(m, h.pdfStoragePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("%s.pdf", m.InvoiceNumber))
}

func (h *InvoicesHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeEnvelope(c, http.StatusBadRequest, "invalid invoice id")
		return 0, false
	}
	return id, true
}
