package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"doc-portal/backend/pkg/metrics"
)

// Breaker guards a BlobStore with a circuit breaker. After three consecutive
// failures calls fail fast with ErrUnavailable until the open timeout passes.
type Breaker struct {
	next    BlobStore
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewBreaker wraps next.
func NewBreaker(name string, next BlobStore, m *metrics.Metrics, logger *zap.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Breaker{next: next, cb: cb, metrics: m}
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	err := b.execute(func() error { return b.next.Put(ctx, key, r, contentType) })
	b.metrics.Blob("put", err)
	return err
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	err := b.execute(func() error { return b.next.Delete(ctx, key) })
	b.metrics.Blob("delete", err)
	return err
}

func (b *Breaker) URL(key string) string {
	return b.next.URL(key)
}

func (b *Breaker) execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
