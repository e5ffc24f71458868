package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/unitlink/protocol"
)

// PrepareEventRequest describes an event a running unit reports.
type PrepareEventRequest struct {
	ID           string         `json:"id"`
	Segmentation map[string]any `json:"segmentation"`
	TimeMs       int64          `json:"time_ms"`
	DurationMs   int64          `json:"duration_ms"`
}

// PrepareEvent builds a data event bag.
// POST /v1/events
func (h *Handler) PrepareEvent(c echo.Context) error {
	var req PrepareEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	b, err := h.service.PrepareEvent(req.ID, req.Segmentation, req.TimeMs, req.DurationMs)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return writeBag(c, http.StatusOK, b)
}

// RecordEvent decodes a data event bag and records it.
// POST /v1/events/record
func (h *Handler) RecordEvent(c echo.Context) error {
	b, err := readBag(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bag document: " + err.Error()})
	}

	ev, err := h.service.RecordEvent(b)
	if err != nil {
		return decodeFailure(c, string(protocol.KindDataEvent), err)
	}
	return c.JSON(http.StatusAccepted, ev)
}
