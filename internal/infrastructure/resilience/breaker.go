package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Threshold is the number of consecutive failures that opens the circuit
	Threshold uint32
	// Cooldown is how long the circuit stays open before one trial request is let through
	Cooldown time.Duration
	// OnStateChange is called whenever the state changes, under no lock
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the circuit breaker
type Counts struct {
	Requests            uint32
	Failures            uint32
	ConsecutiveFailures uint32
}

// Breaker fails requests fast after repeated transport failures
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	probing  bool
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.Threshold == 0 {
		settings.Threshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	return &Breaker{
		name:     name,
		settings: settings,
		now:      time.Now,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state. An open circuit whose cooldown has
// elapsed reports half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.cooled() {
		return StateHalfOpen
	}
	return b.state
}

// Counts returns a copy of the counts since the last state change
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Allow reports whether a request may proceed. Every nil return must be
// followed by exactly one Record.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	var from State
	changed := false

	switch b.state {
	case StateOpen:
		if !b.cooled() {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		from, changed = b.setState(StateHalfOpen)
		b.probing = true
	case StateHalfOpen:
		if b.probing {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.probing = true
	}
	b.counts.Requests++
	b.mu.Unlock()

	if changed {
		b.notify(from, StateHalfOpen)
	}
	return nil
}

// Record reports the outcome of an allowed request
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	to := b.state

	switch b.state {
	case StateClosed:
		if success {
			b.counts.ConsecutiveFailures = 0
			break
		}
		b.counts.Failures++
		b.counts.ConsecutiveFailures++
		if b.counts.ConsecutiveFailures >= b.settings.Threshold {
			to = StateOpen
		}
	case StateHalfOpen:
		b.probing = false
		to = StateOpen
		if success {
			to = StateClosed
		}
	}

	from, changed := b.setState(to)
	b.mu.Unlock()

	if changed {
		b.notify(from, to)
	}
}

func (b *Breaker) cooled() bool {
	return !b.now().Before(b.openedAt.Add(b.settings.Cooldown))
}

// setState must be called with mu held
func (b *Breaker) setState(state State) (State, bool) {
	prev := b.state
	if prev == state {
		return prev, false
	}
	b.state = state
	b.counts = Counts{}
	if state == StateOpen {
		b.openedAt = b.now()
	}
	return prev, true
}

func (b *Breaker) notify(from, to State) {
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
