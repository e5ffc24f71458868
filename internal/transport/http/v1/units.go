package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/unitlink/discovery"
)

// UnitRegisterRequest is the request to register a unit.
type UnitRegisterRequest struct {
	UnitID    string `json:"unit_id"`
	Title     string `json:"title,omitempty"`
	Available *bool  `json:"available,omitempty"`
}

// RegisterUnit adds or updates a catalog entry. Units are available unless
// stated otherwise.
// POST /v1/units
func (h *Handler) RegisterUnit(c echo.Context) error {
	ctx := c.Request().Context()

	var req UnitRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UnitID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unit_id is required"})
	}
	available := req.Available == nil || *req.Available

	if err := h.service.RegisterUnit(ctx, req.UnitID, req.Title, available); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}

// ListUnits lists the catalog.
// GET /v1/units
func (h *Handler) ListUnits(c echo.Context) error {
	units, err := h.service.ListUnits(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units": units,
	})
}

// RemoveUnit deletes a catalog entry.
// DELETE /v1/units/:unit_id
func (h *Handler) RemoveUnit(c echo.Context) error {
	err := h.service.RemoveUnit(c.Request().Context(), c.Param("unit_id"))
	if errors.Is(err, discovery.ErrUnitNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unit not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
