package service

import (
	"context"
	"strconv"
	"time"

	"noah-food/web-svc/internal/upstream"
)

const DefaultPollInterval = 12 * time.Second

// StatusPoller refreshes one order view on a fixed interval.
type StatusPoller struct {
	status   StatusServiceInterface
	interval time.Duration
}

func NewStatusPoller(status StatusServiceInterface, interval time.Duration) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{status: status, interval: interval}
}

// Run fetches immediately and then on every tick until ctx is done, the
// order reaches a terminal status, or the customer is not authorized.
// Fetches never overlap and a result arriving after cancellation is dropped.
func (p *StatusPoller) Run(ctx context.Context, ref string, emit func(*StatusView, error)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		view, err := p.status.Resolve(ctx, ref)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		emit(view, err)

		if err != nil && upstream.IsAuthError(err) {
			return err
		}
		if view != nil && view.Order != nil {
			if view.Terminal {
				return nil
			}
			if view.Order.ID != 0 {
				ref = strconv.Itoa(view.Order.ID)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
