package event

import (
	"context"
	"errors"

	"github.com/stockroom/backend/internal/domain/shared"
)

// FanoutPublisher hands the same events to several publishers
type FanoutPublisher struct {
	publishers []shared.EventPublisher
}

// NewFanoutPublisher creates a FanoutPublisher; nil publishers are skipped
func NewFanoutPublisher(publishers ...shared.EventPublisher) *FanoutPublisher {
	f := &FanoutPublisher{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

// Publish calls every publisher even when an earlier one fails and joins the errors
func (f *FanoutPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ shared.EventPublisher = (*FanoutPublisher)(nil)
