package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2022, 5, 15, 8, 0, 0, 0, time.UTC)}
	l, err := New("test", max, window, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l, clock
}

func TestAllow_BurstThenReject(t *testing.T) {
	l, _ := newTestLimiter(t, 5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("10.0.0.1")
		assert.True(t, ok, "request %d", i+1)
	}
	ok, retry := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.InDelta(t, float64(3*time.Minute), float64(retry), float64(time.Millisecond))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	ok, _ := l.Allow("a")
	assert.True(t, ok)
	ok, _ = l.Allow("a")
	assert.False(t, ok)
	ok, _ = l.Allow("b")
	assert.True(t, ok)
}

func TestAllow_Refills(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Minute)

	l.Allow("k")
	l.Allow("k")
	ok, _ := l.Allow("k")
	assert.False(t, ok)

	clock.Advance(31 * time.Second)
	ok, _ = l.Allow("k")
	assert.True(t, ok)
}

func TestAllow_RejectionDoesNotConsume(t *testing.T) {
	l, clock := newTestLimiter(t, 1, time.Minute)

	l.Allow("k")
	for i := 0; i < 10; i++ {
		l.Allow("k")
	}
	clock.Advance(61 * time.Second)
	ok, _ := l.Allow("k")
	assert.True(t, ok)
}

func TestSweep_DropsIdleKeys(t *testing.T) {
	l, clock := newTestLimiter(t, 10, time.Minute)

	l.Allow("old")
	clock.Advance(2 * time.Minute)
	l.Allow("fresh")

	l.Sweep()
	assert.Equal(t, 1, l.Len())
}

func TestClose_Idempotent(t *testing.T) {
	l, err := New("close", 1, time.Millisecond, time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	l.Close()
	l.Close()
}

func TestNew_RejectsInvalidBudgets(t *testing.T) {
	tests := map[string]struct {
		max           int
		window, sweep time.Duration
	}{
		"zero max":       {0, time.Minute, 0},
		"zero window":    {5, 0, 0},
		"negative win":   {5, -time.Second, 0},
		"negative sweep": {5, time.Minute, -time.Second},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := New(name, tt.max, tt.window, tt.sweep)
			assert.ErrorIs(t, err, ErrInvalidLimit)
			assert.Nil(t, l)
		})
	}
}
