package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards outbound notification channels (SMTP, SNS). After FailureThreshold
// consecutive failures the breaker opens and every call fails fast until
// OpenTimeout elapses; then probes are let through and SuccessThreshold
// consecutive successes close it again.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Execute without calling fn.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// DefaultCBConfig is tuned for notification delivery: a flapping SMTP relay
// should not stall the worker pool for more than half a minute.
func DefaultCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		OpenTimeout:      30 * time.Second,
	}
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig(cfg.Name)
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

func (cb *CircuitBreaker) Name() string { return cb.cfg.Name }

// State reports the current state, moving open → half-open once the timeout elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentLocked()
}

func (cb *CircuitBreaker) currentLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failures++
		if cb.state == CBHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
		return err
	}

	cb.failures = 0
	if cb.state == CBHalfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.successes = 0
		}
	}
	return nil
}

func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = cb.now()
	cb.failures = 0
	cb.successes = 0
}
