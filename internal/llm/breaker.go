package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures the circuit breaker around an LLM client.
type BreakerSettings struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	MinRequests      uint32
	FailureThreshold float64
}

// DefaultBreakerSettings returns settings suitable for interactive API traffic.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MinRequests:      5,
		FailureThreshold: 0.6,
	}
}

// BreakerClient wraps a Client with a circuit breaker so that a misbehaving
// upstream fails fast instead of tying up request handlers. It performs no
// retries; a tripped breaker surfaces the same way as any upstream error.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps client with circuit breaker protection. Returns the
// client unchanged if the breaker is disabled.
func WithBreaker(client Client, settings BreakerSettings, logger *zap.Logger) Client {
	if !settings.Enabled {
		return client
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinRequests && failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("LLM circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &BreakerClient{inner: client, cb: cb}
}

// GenerateContent generates text content through the breaker.
func (c *BreakerClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.cb.Execute(func() (string, error) {
		return c.inner.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON generates JSON content through the breaker.
func (c *BreakerClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.cb.Execute(func() (string, error) {
		return c.inner.GenerateJSON(ctx, prompt, tier)
	})
}

// GetModel returns the model name for a tier.
func (c *BreakerClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close releases resources held by the underlying client.
func (c *BreakerClient) Close() error {
	return c.inner.Close()
}
