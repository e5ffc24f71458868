package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/protocol"
)

// PrepareEvent builds the bag a running unit sends to report an analytics
// event.
func (s *Service) PrepareEvent(id string, segmentation map[string]any, timeMs, durationMs int64) (*bag.Bag, error) {
	ev, err := protocol.NewDataEvent(id, segmentation, timeMs, durationMs)
	if err != nil {
		return nil, fmt.Errorf("failed to build event %s: %w", id, err)
	}
	return ev.Encode(), nil
}

// RecordEvent decodes a reported event and writes it to the event log.
func (s *Service) RecordEvent(b *bag.Bag) (protocol.DataEvent, error) {
	ev, err := protocol.DecodeDataEvent(b)
	if err != nil {
		s.logger.Warn("event rejected",
			zap.Strings("fields", invalidKeys(err)),
			zap.Error(err))
		return protocol.DataEvent{}, err
	}
	s.logger.Info("event recorded",
		zap.String("event_id", ev.ID),
		zap.String("segmentation", ev.Segmentation),
		zap.Int64("time_ms", ev.TimeMs),
		zap.Int64("duration_ms", ev.DurationMs))
	return ev, nil
}
