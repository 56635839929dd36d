package handler

import (
	"net/http"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/service"

	"github.com/gin-gonic/gin"
)

type EventsHandler struct{ svc service.TerminalService }

func NewEventsHandler(svc service.TerminalService) *EventsHandler { return &EventsHandler{svc: svc} }

// Ingest godoc
// @Summary      Record a terminal event
// @Description  Appends an operational event (boot, app crash, paper out, …) to the terminal history. Called by the device itself.
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     DeviceToken
// @Param        id   path string true "Terminal UUID"
// @Param        body body dto.TerminalEventRequest true "Event detail"
// @Success      200  {object} dto.TerminalEventResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/events [post]
func (h *EventsHandler) Ingest(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var req dto.TerminalEventRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordEvent(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List terminal events
// @Description  Returns the event history newest first, optionally filtered by type.
// @Tags         events
// @Produce      json
// @Param        id        path  string true  "Terminal UUID"
// @Param        eventType query string false "Event type filter"
// @Param        limit     query int    false "Max rows (default 100)"
// @Success      200  {object} dto.TerminalEventListResponse
// @Router       /api/v1/terne/terminals/{id}/events [get]
func (h *EventsHandler) List(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var filter dto.TerminalEventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeEnvelope(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.ListEvents(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
