package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker rejects a call without executing it.
var ErrOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type Settings struct {
	Name        string
	MaxFailures int           // consecutive failures before opening
	Cooldown    time.Duration // how long the breaker stays open
}

// CircuitBreaker guards calls to the remote case-management backend so a
// hung or failing upstream does not get hammered by every proxy request.
type CircuitBreaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       State
}

func New(settings Settings) *CircuitBreaker {
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:        settings.Name,
		maxFailures: settings.MaxFailures,
		cooldown:    settings.Cooldown,
		state:       StateClosed,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Execute runs fn unless the breaker is open. A success in half-open state
// closes the breaker; a failure re-opens it immediately.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if time.Since(cb.lastFailure) < cb.cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = StateHalfOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
		return err
	}

	cb.failures = 0
	cb.state = StateClosed
	return nil
}
