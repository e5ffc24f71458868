package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

// LaunchSpec is what the orchestrator knows before a run exists.
type LaunchSpec struct {
	UnitID                    string      `json:"unit_id"`
	LearnerID                 string      `json:"learner_id"`
	OwnerID                   string      `json:"owner_id"`
	Stage                     string      `json:"stage"`
	RemainingForegroundTimeMs *int64      `json:"remaining_foreground_time_ms,omitempty"`
	InactivityTimeoutMs       *int64      `json:"inactivity_timeout_ms,omitempty"`
	AssetsBaseLocator         *string     `json:"assets_base_locator,omitempty"`
	Target                    *bag.Target `json:"target,omitempty"`
}

// PrepareLaunch assigns a run ID and encodes the launch bag. The bag is
// decoded once before it is returned, so a launch that the receiver would
// reject never leaves the orchestrator.
func (s *Service) PrepareLaunch(spec LaunchSpec) (*bag.Bag, protocol.RunUnitRequest, error) {
	runID := "run_" + uuid.New().String()[:8]
	req := protocol.NewRunUnitRequest(
		spec.UnitID, runID, spec.LearnerID, spec.OwnerID, spec.Stage,
		spec.RemainingForegroundTimeMs, spec.InactivityTimeoutMs, spec.AssetsBaseLocator,
	)

	var b *bag.Bag
	if spec.Target != nil {
		b = req.EncodeFor(*spec.Target)
	} else {
		b = req.Encode()
	}

	if _, err := protocol.DecodeRunUnitRequest(b); err != nil {
		s.logger.Warn("launch rejected before dispatch",
			zap.String("unit_id", spec.UnitID),
			zap.Strings("fields", invalidKeys(err)),
			zap.Error(err))
		return nil, protocol.RunUnitRequest{}, fmt.Errorf("invalid launch: %w", err)
	}

	s.logger.Info("launch prepared",
		zap.String("run_id", runID),
		zap.String("unit_id", spec.UnitID),
		zap.Bool("explicit_target", spec.Target != nil))
	return b, req, nil
}

// CollectResult decodes the bag returned by a run. A missing or undecodable
// bag never fails the orchestrator: it degrades to an Error result whose
// details describe what went wrong, and degraded is true.
func (s *Service) CollectResult(runID string, b *bag.Bag) (res protocol.RunUnitResult, degraded bool) {
	if b == nil {
		s.logger.Warn("run returned no result", zap.String("run_id", runID))
		return protocol.ResultOfError(0, "no result returned", nil, nil), true
	}

	res, err := protocol.DecodeRunUnitResult(b)
	if err == nil {
		if !res.Outcome.Known() {
			s.logger.Warn("result has an unknown outcome", zap.String("run_id", runID))
		}
		s.logger.Info("result collected",
			zap.String("run_id", runID),
			zap.Stringer("outcome", res.Outcome),
			zap.Int64("foreground_duration_ms", res.ForegroundDurationMs),
			zap.Bool("has_items", res.Items != nil))
		return res, false
	}

	// keep whatever duration survived so time accounting stays close
	var duration int64
	if n, fe := envelope.RequiredLong(b, protocol.KeyForegroundDurationMs); fe == nil && n >= 0 {
		duration = n
	}
	details := "undecodable result: " + err.Error()
	if errors.Is(err, envelope.ErrMalformedItemList) {
		details = "undecodable result items: " + err.Error()
	}
	s.logger.Error("result degraded to error",
		zap.String("run_id", runID),
		zap.Strings("fields", invalidKeys(err)),
		zap.Error(err))
	return protocol.ResultOfError(duration, details, nil, nil), true
}
