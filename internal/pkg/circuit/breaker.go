package circuit

import (
	"sync"
	"time"

	"netscope/internal/logger"
)

type State int

const (
	StateClosed State = iota
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

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status 是熔断器某一时刻的只读快照，供接口展示。
type Status struct {
	Name      string     `json:"name"`
	State     State      `json:"state"`
	Failures  int        `json:"failures"`
	Threshold int        `json:"threshold"`
	RetryAt   *time.Time `json:"retry_at,omitempty"`
}

// CircuitBreaker 在模型连续失败 threshold 次后打开，cooldown 过后放行一次试探调用。
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	onStateChange func(name string, from, to State)
}

func NewCircuitBreaker(name string, threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		state:     StateClosed,
	}
}

func (cb *CircuitBreaker) SetStateChangeHandler(handler func(name string, from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = handler
}

// State returns the current state without triggering the open->half-open move.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Status() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	st := Status{Name: cb.name, State: cb.state, Failures: cb.failures, Threshold: cb.threshold}
	if cb.state == StateOpen {
		retry := cb.openedAt.Add(cb.cooldown)
		st.RetryAt = &retry
	}
	return st
}

// Allow reports whether a call may go through. An open breaker whose
// cooldown has elapsed moves to half-open and lets the caller probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateOpen {
		return true
	}
	if cb.now().Sub(cb.openedAt) > cb.cooldown {
		cb.transition(StateHalfOpen)
		return true
	}
	return false
}

// Record 按调用结果记录成功或失败。
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err == nil {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.transition(StateClosed)
		}
		return
	}
	cb.failures++
	switch {
	case cb.state == StateHalfOpen:
		cb.open()
	case cb.state == StateClosed && cb.failures >= cb.threshold:
		cb.open()
	}
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.transition(StateOpen)
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	if cb.onStateChange != nil {
		go cb.onStateChange(cb.name, from, to)
		return
	}
	logger.Warnf("CircuitBreaker %s state change: %s -> %s (failures=%d/%d, cooldown=%s)",
		cb.name, from, to, cb.failures, cb.threshold, cb.cooldown)
}
