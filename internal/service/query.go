package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

// AnswerQuery replies to a discovery query with the catalog's available
// units.
func (s *Service) AnswerQuery(ctx context.Context, b *bag.Bag) (*bag.Bag, error) {
	if !protocol.IsDiscoveryQuery(b) {
		return nil, envelope.ErrNotApplicable
	}
	ids, err := s.catalog.AvailableUnitIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	s.logger.Debug("discovery query answered", zap.Int("units", len(ids)))
	return protocol.NewDiscoveryResult(ids).Encode(), nil
}

// CollectUnitIDs reads the reply to a discovery query. A missing reply means
// the application offers nothing.
func (s *Service) CollectUnitIDs(b *bag.Bag) ([]string, error) {
	if b == nil {
		return []string{}, nil
	}
	res, err := protocol.DecodeDiscoveryResult(b)
	if err != nil {
		s.logger.Warn("discovery result invalid", zap.Error(err))
		return nil, err
	}
	return res.UnitIDs, nil
}

// Inspect decodes a bag of any kind.
func (s *Service) Inspect(b *bag.Bag) (protocol.Envelope, error) {
	env, err := protocol.Inspect(b)
	if err != nil {
		s.logger.Debug("bag inspection failed",
			zap.String("kind", string(env.Kind)),
			zap.Strings("fields", invalidKeys(err)),
			zap.Error(err))
	}
	return env, err
}
