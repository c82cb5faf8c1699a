// internal/store/sink.go
package store

import (
	"context"
	"errors"

	"advisory-workers/internal/models"
)

// Sink receives the persistence event of each advisory response.
type Sink interface {
	Persist(ctx context.Context, event models.PersistenceEvent) error
}

type SinkFunc func(ctx context.Context, event models.PersistenceEvent) error

func (f SinkFunc) Persist(ctx context.Context, event models.PersistenceEvent) error {
	return f(ctx, event)
}

// ChatHistorySink adapts Store to Sink.
func ChatHistorySink(s *Store) Sink {
	return SinkFunc(s.SaveChatExchange)
}

// StreamSink adapts EventPublisher to Sink.
func StreamSink(p *EventPublisher) Sink {
	return SinkFunc(func(ctx context.Context, event models.PersistenceEvent) error {
		_, err := p.Publish(ctx, event)
		return err
	})
}

// MultiSink hands the event to every sink, in order, and joins their errors.
// One failing sink does not stop the others.
type MultiSink []Sink

func (m MultiSink) Persist(ctx context.Context, event models.PersistenceEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Persist(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
