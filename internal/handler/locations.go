package handler

import (
	"net/http"

	"github.com/AngeYobo/oxalio/internal/dto"
	"github.com/AngeYobo/oxalio/internal/service"

	"github.com/gin-gonic/gin"
)

type LocationsHandler struct{ svc service.LocationService }

func NewLocationsHandler(svc service.LocationService) *LocationsHandler {
	return &LocationsHandler{svc: svc}
}

// Ingest godoc
// @Summary      Report a terminal position
// @Description  Appends a geographic fix to the terminal track. Called by the device itself.
// @Tags         locations
// @Accept       json
// @Produce      json
// @Security     DeviceToken
// @Param        id   path string true "Terminal UUID"
// @Param        body body dto.LocationIngestRequest true "Position fix"
// @Success      200  {object} dto.LocationResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/locations [post]
func (h *LocationsHandler) Ingest(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var req dto.LocationIngestRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ingest(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Terminal position history
// @Description  Returns fixes newest first within an optional time window.
// @Tags         locations
// @Produce      json
// @Param        id    path  string true  "Terminal UUID"
// @Param        from  query string false "Window start (RFC 3339)"
// @Param        to    query string false "Window end (RFC 3339)"
// @Param        limit query int    false "Max rows (default 100)"
// @Success      200  {object} dto.LocationListResponse
// @Router       /api/v1/terne/terminals/{id}/locations [get]
func (h *LocationsHandler) History(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	var filter dto.LocationHistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeEnvelope(c, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.History(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Latest godoc
// @Summary      Latest terminal position
// @Tags         locations
// @Produce      json
// @Param        id path string true "Terminal UUID"
// @Success      200  {object} dto.LocationResponse
// @Failure      404  {object} apierror.Envelope
// @Router       /api/v1/terne/terminals/{id}/location/latest [get]
func (h *LocationsHandler) Latest(c *gin.Context) {
	id, ok := parseTerminalID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Latest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
