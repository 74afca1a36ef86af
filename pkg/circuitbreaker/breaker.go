package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

type Config struct {
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before one probe is allowed.
	OpenTimeout time.Duration
	Logger      *zap.Logger
}

// Breaker guards a single endpoint. While open, calls fail with
// ErrCircuitOpen without running. After OpenTimeout exactly one probe call
// is let through; its outcome closes or re-opens the circuit.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func New(name string, cfg Config) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})}
}

// Execute runs fn unless the circuit is open. A panic in fn counts as a
// failure and is re-raised.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

func (b *Breaker) State() State {
	return b.cb.State()
}

// Registry hands out one Breaker per key. Endpoints can be reconfigured at
// runtime, so each URL gets its own failure history.
type Registry struct {
	cfg      Config
	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, breakers: make(map[string]*Breaker)}
}

func (r *Registry) Get(key string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[key]
	if !ok {
		b = New(key, r.cfg)
		r.breakers[key] = b
	}
	return b
}
