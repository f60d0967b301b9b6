package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota + 1
	StateOpen
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

var ErrOpen = errors.New("circuit breaker is open")

// CircuitBreaker short-circuits calls to a failing dependency. After
// maxFailures consecutive failures it opens for openTimeout, then lets a
// single probe through (half-open) to decide whether to close again.
type CircuitBreaker struct {
	name string

	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	openSince   time.Time
	openTimeout time.Duration
	now         func() time.Time
}

func New(name string, maxFailures int, openTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if openTimeout <= 0 {
		openTimeout = 10 * time.Second
	}
	return &CircuitBreaker{
		name:        name,
		state:       StateClosed,
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Allow reports whether a call may proceed. It returns ErrOpen while the
// breaker is open or while a half-open probe is in flight.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openSince) > cb.openTimeout {
			logger.Warn("circuit breaker half-open", zap.String("breaker", cb.name))
			cb.state = StateHalfOpen
			return nil
		}
		return ErrOpen
	case StateHalfOpen:
		return ErrOpen
	}
	return nil
}

func (cb *CircuitBreaker) OnSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		logger.Info("circuit breaker closed", zap.String("breaker", cb.name))
		cb.state = StateClosed
		cb.failures = 0
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) OnFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		logger.Warn("circuit breaker re-opened after failed probe", zap.String("breaker", cb.name))
		cb.state = StateOpen
		cb.openSince = cb.now()
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.maxFailures {
			logger.Error("circuit breaker opened",
				zap.String("breaker", cb.name),
				zap.Int("failures", cb.failures),
			)
			cb.state = StateOpen
			cb.openSince = cb.now()
		}
	}
}
