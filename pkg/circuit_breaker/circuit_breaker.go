package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is the number of most recent calls taken into account.
	Window int `envconfig:"CB_WINDOW" default:"10"`
	// Threshold is the share of failed calls in the window that opens the breaker.
	Threshold float64 `envconfig:"CB_THRESHOLD" default:"0.5"`
	// Timeout is how long the breaker stays open before letting a probe through.
	Timeout time.Duration `envconfig:"CB_TIMEOUT" default:"10s"`
	// Recovery is the number of consecutive successful probes that close it again.
	Recovery int `envconfig:"CB_RECOVERY" default:"3"`
}

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type circuitBreaker struct {
	mu sync.Mutex

	state    State
	window   []bool
	pos      int
	openedAt time.Time

	threshold float64
	timeout   time.Duration
	recovery  int
	successes int
}

func New(cfg Config) CircuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	return &circuitBreaker{
		state:     Closed,
		window:    make([]bool, cfg.Window),
		threshold: cfg.Threshold,
		timeout:   cfg.Timeout,
		recovery:  cfg.Recovery,
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if time.Since(cb.openedAt) <= cb.timeout {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.successes = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.window[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.window)

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.successes++
		if cb.successes >= cb.recovery {
			cb.reset()
		}
		return nil
	}

	failed := 0
	for _, f := range cb.window {
		if f {
			failed++
		}
	}
	if float64(failed)/float64(len(cb.window)) >= cb.threshold {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.openedAt = time.Now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.window {
		cb.window[i] = false
	}
	cb.pos = 0
	cb.successes = 0
	cb.state = Closed
}
