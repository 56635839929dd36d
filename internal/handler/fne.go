package handler

import (
	"net/http"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/service"

	"github.com/gin-gonic/gin"
)

// FneHandler exposes the DGI-facing operations keyed by FNE identifiers
// rather than internal ids.
type FneHandler struct{ svc service.InvoiceService }

func NewFneHandler(svc service.InvoiceService) *FneHandler { return &FneHandler{svc: svc} }

// Refund godoc
// @Summary      Refund a signed invoice
// @Description  Issues a DGI credit note for the listed lines and cancels the invoice.
// @Tags         fne
// @Accept       json
// @Produce      json
// @Param        idOrRef path string true "fneInvoiceId UUID or DGI reference"
// @Param        body    body dto.RefundInvoiceRequest true "Lines to refund"
// @Success      200  {object} dto.RefundInvoiceResponse
// @Failure      404  {object} apierror.Envelope
// @Failure      409  {object} apierror.Envelope
// @Router       /api/fne/invoices/{idOrRef}/refund [post]
func (h *FneHandler) Refund(c *gin.Context) {
	var req dto.RefundInvoiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refund(c.Request.Context(), c.Param("idOrRef"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
