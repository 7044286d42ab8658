package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient returns canned responses and counts calls
type stubClient struct {
	response string
	err      error
	calls    int
}

func (s *stubClient) GenerateContent(_ context.Context, _ string, _ ModelTier) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) GenerateJSON(_ context.Context, _ string, _ ModelTier) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) GetModel(_ ModelTier) string { return "stub-model" }
func (s *stubClient) Close() error                { return nil }

func TestWithBreaker_Disabled(t *testing.T) {
	stub := &stubClient{response: "ok"}
	client := WithBreaker(stub, BreakerSettings{Enabled: false}, nil)

	assert.Same(t, Client(stub), client)
}

func TestBreakerClient_PassesThrough(t *testing.T) {
	stub := &stubClient{response: "hello"}
	client := WithBreaker(stub, DefaultBreakerSettings(), nil)

	out, err := client.GenerateContent(context.Background(), "prompt", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, 1, stub.calls)
}

func TestBreakerClient_OpensAfterFailures(t *testing.T) {
	stub := &stubClient{err: errors.New("upstream down")}
	settings := BreakerSettings{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      3,
		FailureThreshold: 0.5,
	}
	client := WithBreaker(stub, settings, nil)

	for i := 0; i < 3; i++ {
		_, err := client.GenerateJSON(context.Background(), "prompt", TierStandard)
		require.Error(t, err)
	}

	// Breaker should now be open: the stub is no longer invoked
	before := stub.calls
	_, err := client.GenerateJSON(context.Background(), "prompt", TierStandard)
	require.Error(t, err)
	assert.Equal(t, before, stub.calls)
}
