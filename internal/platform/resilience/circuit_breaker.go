package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateListener observes breaker transitions, e.g. to export them as metrics.
type StateListener func(name string, from, to CircuitState)

// CircuitBreaker guards one upstream source. A nil breaker allows everything.
type CircuitBreaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int
	listener         StateListener

	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
}

// NewCircuitBreaker returns nil when cfg is disabled.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, listener StateListener) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	cfg = NormalizeCircuitBreakerConfig(cfg)

	return &CircuitBreaker{
		name:             name,
		failureThreshold: cfg.FailureThreshold,
		openTimeout:      cfg.OpenTimeout,
		halfOpenMaxReq:   cfg.HalfOpenMaxReq,
		listener:         listener,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

func (b *CircuitBreaker) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

func (b *CircuitBreaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.transition(CircuitStateHalfOpen)
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}

	return nil
}

// Record settles an allowed call. Only errors for which isFailure reports true count
// against the breaker; a "not found" answer proves the upstream is healthy.
func (b *CircuitBreaker) Record(err error, isFailure func(error) bool) {
	if b == nil {
		return
	}
	if err != nil && (isFailure == nil || isFailure(err)) {
		b.RecordFailure()
		return
	}
	b.RecordSuccess()
}

func (b *CircuitBreaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures = 0
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.transition(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.transition(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		b.transition(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

// transition must be called with mu held.
func (b *CircuitBreaker) transition(to CircuitState) {
	from := b.state
	b.state = to
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0

	switch to {
	case CircuitStateClosed:
		b.consecutiveFailures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}

	if b.listener != nil && from != to {
		b.listener(b.name, from, to)
	}
}
