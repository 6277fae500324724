package clients

import (
	"sync"
	"time"
)

// State is a circuit breaker state.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota
	// StateOpen rejects requests until the cool-down elapses.
	StateOpen
	// StateHalfOpen lets a limited number of probe requests through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int
	// Timeout is the cool-down before an open circuit admits probes.
	Timeout time.Duration
	// HalfOpenLimit caps concurrent probes and is also the number of
	// consecutive probe successes that close the circuit.
	HalfOpenLimit int
}

// CircuitBreaker guards a downstream service.
//
//	closed    --MaxFailures failures-->   open
//	open      --Timeout elapsed-->        half-open
//	half-open --HalfOpenLimit successes--> closed
//	half-open --any failure-->            open
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       CircuitBreakerConfig
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to be called after every transition.
// fn runs synchronously on the goroutine that caused the transition,
// outside the breaker's lock.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. An open breaker whose
// cool-down has elapsed moves to half-open and admits the caller as a probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	allowed := false
	var notify func()

	switch cb.state {
	case StateClosed:
		allowed = true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
			notify = cb.transition(StateHalfOpen)
			cb.probes = 1
			allowed = true
		}
	case StateHalfOpen:
		if cb.probes < cb.cfg.HalfOpenLimit {
			cb.probes++
			allowed = true
		}
	}

	cb.mu.Unlock()
	run(notify)

	return allowed
}

// RecordSuccess reports a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()

	var notify func()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes--
		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			notify = cb.transition(StateClosed)
		}
	}

	cb.mu.Unlock()
	run(notify)
}

// RecordFailure reports a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()

	var notify func()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			notify = cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.probes--
		notify = cb.transition(StateOpen)
	}

	cb.mu.Unlock()
	run(notify)
}

// State returns the current state without triggering transitions.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// transition must be called with mu held. It returns the deferred
// notification, if any.
func (cb *CircuitBreaker) transition(to State) func() {
	from := cb.state
	if from == to {
		return nil
	}

	cb.state = to
	cb.failures = 0
	cb.successes = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
		cb.probes = 0
	}

	if fn := cb.onStateChange; fn != nil {
		return func() { fn(from, to) }
	}
	return nil
}

func run(fn func()) {
	if fn != nil {
		fn()
	}
}
