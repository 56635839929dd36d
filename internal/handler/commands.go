package handler

import (
	"net/http"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommandsHandler struct{ svc service.CommandService }

func NewCommandsHandler(svc service.CommandService) *CommandsHandler {
	return &CommandsHandler{svc: svc}
}

// Create godoc
// @Summary      Queue a command for a terminal
// @Description  Commands start in QUEUED and are picked up by the device on its next poll.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        id   path string true "Terminal UUID"
// @Param        body body dto.CreateCommandRequest true "Command detail"
// @Success      200  {object} dto.CommandResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/commands [post]
func (h *CommandsHandler) Create(c *gin.Context) {
	terminalID, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var req dto.CreateCommandRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), terminalID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List commands of a terminal
// @Tags         commands
// @Produce      json
// @Param        id     path  string true  "Terminal UUID"
// @Param        status query string false "QUEUED | ACKED | RUNNING | SUCCEEDED | FAILED | CANCELED"
// @Param        limit  query int    false "Max rows (default 50)"
// @Success      200  {object} dto.CommandListResponse
// @Router       /api/v1/terne/terminals/{id}/commands [get]
func (h *CommandsHandler) List(c *gin.Context) {
	terminalID, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var filter dto.CommandFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeEnvelope(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.List(c.Request.Context(), terminalID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a command
// @Tags         commands
// @Produce      json
// @Param        cmdId path string true "Command UUID"
// @Success      200  {object} dto.CommandResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/terne/commands/{cmdId} [get]
func (h *CommandsHandler) Get(c *gin.Context) {
	id, ok := parseCommandID(c)
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
// @Summary      Advance a command through its lifecycle
// @Description  Devices report QUEUED→ACKED→RUNNING→SUCCEEDED/FAILED; operators may CANCEL anything not final. Illegal transitions return 409.
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        cmdId path string true "Command UUID"
// @Param        body  body dto.UpdateCommandRequest true "New status and result"
// @Success      200  {object} dto.CommandResponse
// @Failure      409  {object} apierror.Envelope
// @Router       /api/v1/terne/commands/{cmdId} [patch]
func (h *CommandsHandler) Update(c *gin.Context) {
	id, ok := parseCommandID(c)
	if !ok {
		return
	}
	var req dto.UpdateCommandRequest
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

func parseCommandID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("cmdId"))
	if err != nil {
		writeEnvelope(c, http.StatusBadRequest, "invalid command id")
		return uuid.Nil, false
	}
	return id, true
}
