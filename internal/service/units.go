package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/discovery"
)

// RegisterUnit adds unitID to the catalog or updates it.
func (s *Service) RegisterUnit(ctx context.Context, unitID, title string, available bool) error {
	if unitID == "" {
		return fmt.Errorf("unit_id is required")
	}
	if err := s.catalog.Register(ctx, discovery.Unit{UnitID: unitID, Title: title, Available: available}); err != nil {
		return fmt.Errorf("failed to register unit: %w", err)
	}
	s.logger.Info("unit registered", zap.String("unit_id", unitID), zap.Bool("available", available))
	return nil
}

// ListUnits returns every catalog entry.
func (s *Service) ListUnits(ctx context.Context) ([]discovery.Unit, error) {
	return s.catalog.List(ctx)
}

// RemoveUnit deletes unitID; discovery.ErrUnitNotFound if it is not listed.
func (s *Service) RemoveUnit(ctx context.Context, unitID string) error {
	if err := s.catalog.Remove(ctx, unitID); err != nil {
		return err
	}
	s.logger.Info("unit removed", zap.String("unit_id", unitID))
	return nil
}
