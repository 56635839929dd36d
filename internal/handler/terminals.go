package handler

import (
	"context"
	"net/http"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/middleware"
	"github.com/AngeYobo/oxalio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TerminalsHandler struct{ svc service.TerminalService }

func NewTerminalsHandler(svc service.TerminalService) *TerminalsHandler {
	return &TerminalsHandler{svc: svc}
}

// Enroll godoc
// @Summary      Enroll a POS terminal
// @Description  Registers a terminal by serial number and returns its device token. Serial numbers are unique per fleet.
// @Tags         terminals
// @Accept       json
// @Produce      json
// @Param        body body dto.EnrollTerminalRequest true "Terminal identity"
// @Success      200  {object} dto.EnrollTerminalResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals [post]
func (h *TerminalsHandler) Enroll(c *gin.Context) {
	var req dto.EnrollTerminalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Enroll(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List terminals
// @Tags         terminals
// @Produce      json
// @Param        tenantId query string false "Filter by tenant"
// @Param        posId    query string false "Filter by point of sale"
// @Param        status   query string false "ENROLLED | ACTIVE | SUSPENDED | RETIRED"
// @Success      200  {object} dto.TerminalListResponse
// @Router       /api/v1/terne/terminals [get]
func (h *TerminalsHandler) List(c *gin.Context) {
	var filter dto.TerminalFilter
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
// @Summary      Get a terminal
// @Tags         terminals
// @Produce      json
// @Param        id path string true "Terminal UUID"
// @Success      200  {object} dto.TerminalResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id} [get]
func (h *TerminalsHandler) Get(c *gin.Context) {
	id, ok := parseTerminalID(c)
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

// Update godoc
// @Summary      Update terminal metadata
// @Description  Partial update of label, pos assignment and tags. Serial and IMEI are immutable.
// @Tags         terminals
// @Accept       json
// @Produce      json
// @Param        id   path string true "Terminal UUID"
// @Param        body body dto.UpdateTerminalRequest true "Fields to change"
// @Success      200  {object} dto.TerminalResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id} [patch]
func (h *TerminalsHandler) Update(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var req dto.UpdateTerminalRequest
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

// Activate godoc
// @Summary      Activate a terminal
// @Tags         terminals
// @Produce      json
// @Param        id path string true "Terminal UUID"
// @Success      200  {object} dto.TerminalResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/activate [post]
func (h *TerminalsHandler) Activate(c *gin.Context) { h.lifecycle(c, h.svc.Activate) }

// Suspend godoc
// @Summary      Suspend a terminal
// @Tags         terminals
// @Produce      json
// @Param        id path string true "Terminal UUID"
// @Success      200  {object} dto.TerminalResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/suspend [post]
func (h *TerminalsHandler) Suspend(c *gin.Context) { h.lifecycle(c, h.svc.Suspend) }

// Retire godoc
// @Summary      Retire a terminal
// @Description  Terminal decommissioning is permanent: a retired terminal accepts no further state changes.
// @Tags         terminals
// @Produce      json
// @Param        id path string true "Terminal UUID"
// @Success      200  {object} dto.TerminalResponse
// @Router       /api/v1/terne/terminals/{id}/retire [post]
func (h *TerminalsHandler) Retire(c *gin.Context) { h.lifecycle(c, h.svc.Retire) }

// Heartbeat godoc
// @Summary      Record a terminal heartbeat
// @Description  Advances lastSeenAt (never backwards) and appends a HEARTBEAT event. Called by the device itself.
// @Tags         terminals
// @Accept       json
// @Security     DeviceToken
// @Param        id   path string true "Terminal UUID"
// @Param        body body dto.HeartbeatRequest true "Heartbeat detail"
// @Success      200
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/heartbeat [post]
func (h *TerminalsHandler) Heartbeat(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var req dto.HeartbeatRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RecordHeartbeat(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	if claims := middleware.GetDeviceClaims(c); claims != nil {
		log.Debug().Str("serial", claims.Serial).Str("terminal_id", claims.TerminalID).Msg("heartbeat recorded")
	}
	c.Status(http.StatusOK)
}

func (h *TerminalsHandler) lifecycle(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*dto.TerminalResponse, error)) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseTerminalID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeEnvelope(c, http.StatusBadRequest, "invalid terminal id")
		return uuid.Nil, false
	}
	return id, true
}
