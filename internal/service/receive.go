package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/policy"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

// ErrLaunchDenied is matched by every *DeniedError.
var ErrLaunchDenied = errors.New("launch denied")

// DeniedError reports a well-formed launch that admission refused.
type DeniedError struct {
	RunID  string
	UnitID string
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("launch of %s (run %s) denied: %s", e.UnitID, e.RunID, e.Reason)
}

func (e *DeniedError) Is(target error) bool { return target == ErrLaunchDenied }

// AcceptLaunch decodes an incoming launch and decides whether it may run. A
// request that fails to decode cannot start; its validation error is returned
// unchanged. envelope.ErrNotApplicable is returned for bags routed elsewhere.
func (s *Service) AcceptLaunch(ctx context.Context, b *bag.Bag) (protocol.RunUnitRequest, error) {
	req, err := protocol.DecodeRunUnitRequest(b)
	if err != nil {
		if !errors.Is(err, envelope.ErrNotApplicable) {
			s.logger.Error("launch request invalid",
				zap.Strings("fields", invalidKeys(err)),
				zap.Error(err))
		}
		return protocol.RunUnitRequest{}, err
	}

	available, err := s.catalog.Has(ctx, req.UnitID)
	if err != nil {
		return protocol.RunUnitRequest{}, fmt.Errorf("failed to look up unit: %w", err)
	}

	input := policy.Input{
		UnitID:              req.UnitID,
		UnitAvailable:       available,
		Stage:               req.Stage,
		AllowedStages:       s.config.AllowedStages,
		HasTimeBudget:       req.RemainingForegroundTimeMs != nil,
		MinForegroundTimeMs: s.config.MinForegroundTimeMs,
	}
	if req.RemainingForegroundTimeMs != nil {
		input.RemainingForegroundTimeMs = *req.RemainingForegroundTimeMs
	}
	decision, err := s.policyEngine.Evaluate(ctx, input)
	if err != nil {
		return protocol.RunUnitRequest{}, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if !decision.Allow {
		s.logger.Warn("launch denied",
			zap.String("run_id", req.RunID),
			zap.String("unit_id", req.UnitID),
			zap.String("reason", decision.Reason))
		return protocol.RunUnitRequest{}, &DeniedError{RunID: req.RunID, UnitID: req.UnitID, Reason: decision.Reason}
	}

	s.logger.Info("launch admitted",
		zap.String("run_id", req.RunID),
		zap.String("unit_id", req.UnitID),
		zap.String("stage", req.Stage),
		zap.Int("version", req.Version))
	return req, nil
}

// CompleteRun encodes the result handed back to the orchestrator.
func (s *Service) CompleteRun(runID string, res protocol.RunUnitResult) (*bag.Bag, error) {
	b, err := res.Encode()
	if err != nil {
		s.logger.Error("failed to encode result", zap.String("run_id", runID), zap.Error(err))
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	s.logger.Info("run completed",
		zap.String("run_id", runID),
		zap.Stringer("outcome", res.Outcome))
	return b, nil
}
