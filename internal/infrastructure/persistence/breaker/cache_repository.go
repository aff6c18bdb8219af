// Package breaker guards a remote cache with a circuit breaker
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/nutrition/internal/ports/outbound"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config holds circuit breaker settings
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns the settings used for the analysis cache
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      10,
	}
}

// CacheRepository is a CacheRepository that stops calling its backend while
// the backend keeps failing. Misses are successful calls.
type CacheRepository struct {
	next    outbound.CacheRepository
	breaker *gobreaker.CircuitBreaker
}

// NewCacheRepository wraps next with a circuit breaker
func NewCacheRepository(next outbound.CacheRepository, cfg Config, logger *zap.Logger) *CacheRepository {
	logger = logger.Named("cache-breaker")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, outbound.ErrCacheMiss)
		},
	})

	return &CacheRepository{next: next, breaker: cb}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// State reports the breaker state
func (r *CacheRepository) State() gobreaker.State {
	return r.breaker.State()
}

// Get retrieves a value from the wrapped cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.breaker.Execute(func() (interface{}, error) {
		return r.next.Get(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Set stores a value in the wrapped cache
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.next.Set(ctx, key, value, ttl)
	})
	return err
}

// Delete removes a value from the wrapped cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.next.Delete(ctx, key)
	})
	return err
}

// Exists checks a key in the wrapped cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	v, err := r.breaker.Execute(func() (interface{}, error) {
		return r.next.Exists(ctx, key)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}
