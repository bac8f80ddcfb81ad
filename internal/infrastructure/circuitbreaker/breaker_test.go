package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/imob-crm/pkg/config"
)

func testConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
	}
}

func TestManager_TripsAfterFailureRatio(t *testing.T) {
	m := NewManager(testConfig(), zap.NewNop())
	cb := m.Get("email")
	boom := errors.New("boom")

	require.ErrorIs(t, Execute(cb, func() error { return boom }), boom)
	require.ErrorIs(t, Execute(cb, func() error { return boom }), boom)

	err := Execute(cb, func() error { return nil })
	assert.True(t, IsOpen(err))
	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, "open", m.Status()["email"].State)
}

func TestManager_StaysClosedBelowMinimumRequests(t *testing.T) {
	m := NewManager(testConfig(), zap.NewNop())
	cb := m.Get("http")

	_ = Execute(cb, func() error { return errors.New("boom") })

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestManager_ReturnsSameBreaker(t *testing.T) {
	m := NewManager(testConfig(), zap.NewNop())

	assert.Same(t, m.Get("email"), m.Get("email"))
	assert.Len(t, m.Status(), 1)
}
