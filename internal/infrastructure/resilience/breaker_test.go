package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping
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

func newTestBreaker(threshold uint32, cooldown time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	b := New("test", Settings{Threshold: threshold, Cooldown: cooldown})
	b.now = clock.Now
	return b, clock
}

func run(t *testing.T, b *Breaker, success bool) {
	t.Helper()
	require.NoError(t, b.Allow())
	b.Record(success)
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		threshold     uint32
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			threshold:     3,
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			threshold:     3,
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name:          "success resets the streak",
			threshold:     3,
			requests:      []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBreaker(tt.threshold, time.Minute)
			for _, ok := range tt.requests {
				run(t, b, ok)
			}
			assert.Equal(t, tt.expectedState, b.State())
		})
	}
}

func TestBreakerFailsFastWhenOpen(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)
	run(t, b, false)

	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	t.Run("success closes", func(t *testing.T) {
		b, clock := newTestBreaker(1, time.Minute)
		run(t, b, false)

		clock.Advance(time.Minute)
		assert.Equal(t, StateHalfOpen, b.State())

		require.NoError(t, b.Allow())
		// only one trial request at a time
		assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

		b.Record(true)
		assert.Equal(t, StateClosed, b.State())
		assert.NoError(t, b.Allow())
	})

	t.Run("failure reopens", func(t *testing.T) {
		b, clock := newTestBreaker(1, time.Minute)
		run(t, b, false)

		clock.Advance(time.Minute)
		run(t, b, false)
		assert.Equal(t, StateOpen, b.State())
		assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

		clock.Advance(30 * time.Second)
		assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
	})
}

func TestBreakerCounts(t *testing.T) {
	b, _ := newTestBreaker(5, time.Minute)
	run(t, b, true)
	run(t, b, false)
	run(t, b, false)

	counts := b.Counts()
	assert.Equal(t, uint32(3), counts.Requests)
	assert.Equal(t, uint32(2), counts.Failures)
	assert.Equal(t, uint32(2), counts.ConsecutiveFailures)
}

func TestBreakerOnStateChange(t *testing.T) {
	var transitions []string
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	b := New("rest", Settings{
		Threshold: 1,
		Cooldown:  time.Second,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})
	b.now = clock.Now

	run(t, b, false)
	clock.Advance(time.Second)
	run(t, b, true)

	assert.Equal(t, []string{
		"rest:closed->open",
		"rest:open->half-open",
		"rest:half-open->closed",
	}, transitions)
}

func TestBreakerDefaults(t *testing.T) {
	b := New("defaults", Settings{})
	assert.Equal(t, "defaults", b.Name())
	assert.Equal(t, uint32(5), b.settings.Threshold)
	assert.Equal(t, 30*time.Second, b.settings.Cooldown)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "unknown", State(42).String())
}

func TestBreakerConcurrent(t *testing.T) {
	b, _ := newTestBreaker(1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if b.Allow() == nil {
				b.Record(i%2 == 0)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint32(50), b.Counts().Requests)
	assert.Equal(t, StateClosed, b.State())
}
