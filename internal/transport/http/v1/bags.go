package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/internal/service"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

// InspectBag decodes a posted bag with whichever schema claims it.
// POST /v1/bags/inspect
func (h *Handler) InspectBag(c echo.Context) error {
	b, err := readBag(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bag document: " + err.Error()})
	}

	env, err := h.service.Inspect(b)
	if err != nil {
		return decodeFailure(c, string(env.Kind), err)
	}
	return c.JSON(http.StatusOK, env)
}

// PrepareLaunch builds a launch bag for the posted spec.
// POST /v1/launches
func (h *Handler) PrepareLaunch(c echo.Context) error {
	var spec service.LaunchSpec
	if err := c.Bind(&spec); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	b, req, err := h.service.PrepareLaunch(spec)
	if err != nil {
		return decodeFailure(c, string(protocol.KindRunRequest), err)
	}
	if c.QueryParam("format") == "bag" {
		return writeBag(c, http.StatusOK, b)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"run_id":  req.RunID,
		"request": req,
		"bag":     b,
	})
}

// CollectResult decodes a returned result bag, degrading to an Error result
// when it cannot be read.
// POST /v1/results?run_id=...
func (h *Handler) CollectResult(c echo.Context) error {
	b, err := readBag(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bag document: " + err.Error()})
	}

	res, degraded := h.service.CollectResult(c.QueryParam("run_id"), b)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"result":   res,
		"degraded": degraded,
	})
}

// AcceptLaunch decodes and admits a launch bag.
// POST /v1/launches/accept
func (h *Handler) AcceptLaunch(c echo.Context) error {
	b, err := readBag(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bag document: " + err.Error()})
	}

	req, err := h.service.AcceptLaunch(c.Request().Context(), b)
	var denied *service.DeniedError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"admitted": true,
			"request":  req,
		})
	case errors.As(err, &denied):
		return c.JSON(http.StatusForbidden, map[string]interface{}{
			"admitted": false,
			"run_id":   denied.RunID,
			"reason":   denied.Reason,
		})
	case errors.Is(err, envelope.ErrNotApplicable), errors.Is(err, envelope.ErrMissingOrInvalidField):
		return decodeFailure(c, string(protocol.KindRunRequest), err)
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// CompleteRunRequest carries a finished run's result.
type CompleteRunRequest struct {
	RunID  string                  `json:"run_id"`
	Result *protocol.RunUnitResult `json:"result"`
}

// CompleteRun encodes a result bag.
// POST /v1/results/complete
func (h *Handler) CompleteRun(c echo.Context) error {
	var req CompleteRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Result == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "result is required"})
	}
	if req.Result.Version == 0 {
		req.Result.Version = protocol.ResultVersion
	}

	b, err := h.service.CompleteRun(req.RunID, *req.Result)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return writeBag(c, http.StatusOK, b)
}

// AnswerQuery answers a discovery query bag.
// POST /v1/queries
func (h *Handler) AnswerQuery(c echo.Context) error {
	b, err := readBag(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bag document: " + err.Error()})
	}

	reply, err := h.service.AnswerQuery(c.Request().Context(), b)
	if errors.Is(err, envelope.ErrNotApplicable) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bag is not a discovery query"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return writeBag(c, http.StatusOK, reply)
}
