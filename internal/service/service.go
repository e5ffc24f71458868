// Package service holds the handoff glue used on both sides of a bag: the
// orchestrator building launches and collecting results, and the receiving
// application admitting launches, completing runs and answering discovery
// queries.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/discovery"
	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/internal/config"
	"github.com/xiaot623/gogo/unitlink/policy"
)

// Catalog is the receiving application's list of runnable units.
type Catalog interface {
	Has(ctx context.Context, unitID string) (bool, error)
	AvailableUnitIDs(ctx context.Context) ([]string, error)
	Register(ctx context.Context, unit discovery.Unit) error
	Remove(ctx context.Context, unitID string) error
	List(ctx context.Context) ([]discovery.Unit, error)
}

type Service struct {
	catalog      Catalog
	policyEngine *policy.Engine
	config       *config.Config
	logger       *zap.Logger
}

func New(catalog Catalog, policyEngine *policy.Engine, cfg *config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:      catalog,
		policyEngine: policyEngine,
		config:       cfg,
		logger:       logger,
	}
}

// invalidKeys lists the offending keys of a validation failure, if err is one.
func invalidKeys(err error) []string {
	var verr *envelope.ValidationError
	if errors.As(err, &verr) {
		return verr.Keys()
	}
	return nil
}
