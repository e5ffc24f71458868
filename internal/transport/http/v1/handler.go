// Package v1 provides the inspector's HTTP handlers.
package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/internal/service"
)

// maxBagSize caps posted bag documents.
const maxBagSize = 1 << 20

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Bag decoding
	e.POST("/v1/bags/inspect", h.InspectBag)

	// Orchestrator side
	e.POST("/v1/launches", h.PrepareLaunch)
	e.POST("/v1/results", h.CollectResult)

	// Receiving side
	e.POST("/v1/launches/accept", h.AcceptLaunch)
	e.POST("/v1/results/complete", h.CompleteRun)
	e.POST("/v1/queries", h.AnswerQuery)

	// Unit analytics
	e.POST("/v1/events", h.PrepareEvent)
	e.POST("/v1/events/record", h.RecordEvent)

	// Unit catalog
	e.GET("/v1/units", h.ListUnits)
	e.POST("/v1/units", h.RegisterUnit)
	e.DELETE("/v1/units/:unit_id", h.RemoveUnit)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// readBag decodes the request body as a JSON or CBOR bag document.
func readBag(c echo.Context) (*bag.Bag, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBagSize))
	if err != nil {
		return nil, err
	}
	return bag.Unmarshal(data)
}

// writeBag answers with b as CBOR when the client accepts it, JSON otherwise.
func writeBag(c echo.Context, status int, b *bag.Bag) error {
	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), bag.ContentCBOR) {
		data, err := b.MarshalCBOR()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.Blob(status, bag.ContentCBOR, data)
	}
	return c.JSON(status, b)
}

// decodeFailure renders a decode error. Validation failures list every
// offending field.
func decodeFailure(c echo.Context, kind string, err error) error {
	body := map[string]interface{}{"error": err.Error()}
	if kind != "" {
		body["kind"] = kind
	}
	var verr *envelope.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = fieldViews(verr.Fields)
		return c.JSON(http.StatusUnprocessableEntity, body)
	}
	return c.JSON(http.StatusBadRequest, body)
}

type fieldView struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
	Raw    string `json:"raw,omitempty"`
}

// fieldViews renders raw values as text; a NaN score has no JSON form.
func fieldViews(fields []envelope.FieldError) []fieldView {
	out := make([]fieldView, len(fields))
	for i, f := range fields {
		out[i] = fieldView{Key: f.Key, Reason: string(f.Reason)}
		if f.Raw != nil {
			out[i].Raw = fmt.Sprint(f.Raw)
		}
	}
	return out
}
