// Package breaker provides per-factor circuit breaking for the analysis
// engine. Each factor has an independent state machine so one broken
// heuristic cannot destabilize the batch.
package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pagefactor/pagefactor/internal/analysis"
)

// State is the circuit position for one factor.
type State string

// Circuit states.
const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Defaults mirror the documented fault policy: three consecutive failures
// open the circuit, a 60 second window gates the half-open probe, and each
// call races a 2 second timeout.
const (
	DefaultFailureThreshold = 3
	DefaultResetTimeout     = 60 * time.Second
	DefaultCallTimeout      = 2 * time.Second
)

// Operation is the guarded analyzer call.
type Operation func(ctx context.Context) (analysis.FactorResult, error)

// Options configures a Registry.
type Options struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	CallTimeout      time.Duration
	Clock            analysis.Clock
	Logger           *zap.Logger
}

// Registry owns the per-factor circuit states. It lives for the host
// process, not per request: the failure memory spans analysis runs and is
// reset only by recovery or an explicit operator action.
type Registry struct {
	mu     sync.Mutex
	states map[string]*circuit

	threshold    int
	resetTimeout time.Duration
	callTimeout  time.Duration
	clock        analysis.Clock
	logger       *zap.Logger
}

type circuit struct {
	failures int
	lastFail time.Time
	state    State
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewRegistry builds a Registry, filling unset options with the defaults.
func NewRegistry(opts Options) *Registry {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if opts.ResetTimeout <= 0 {
		opts.ResetTimeout = DefaultResetTimeout
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		states:       make(map[string]*circuit),
		threshold:    opts.FailureThreshold,
		resetTimeout: opts.ResetTimeout,
		callTimeout:  opts.CallTimeout,
		clock:        opts.Clock,
		logger:       opts.Logger,
	}
}

// Execute runs op under the factor's circuit. It never returns an error:
// the result is either the real analyzer output or the supplied fallback.
// A call that panics, errors, or exceeds the call timeout counts as one
// failure toward opening the circuit.
func (r *Registry) Execute(
	ctx context.Context,
	factorID string,
	op Operation,
	fallback analysis.FactorResult,
) analysis.FactorResult {
	if !r.admit(factorID) {
		r.logger.Debug("circuit open, returning fallback", zap.String("factor", factorID))
		return fallback
	}

	result, err := r.call(ctx, op)
	if err != nil {
		r.recordFailure(factorID)
		r.logger.Warn("factor call failed",
			zap.String("factor", factorID),
			zap.Error(err),
		)
		return fallback
	}

	r.recordSuccess(factorID)
	return result
}

// State reports the current circuit position for a factor.
func (r *Registry) State(factorID string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.states[factorID]
	if !ok {
		return StateClosed
	}
	return c.state
}

// Reset closes one factor's circuit and clears its failure count.
func (r *Registry) Reset(factorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, factorID)
}

// ResetAll clears every circuit. Exposed for operators and tests.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = make(map[string]*circuit)
}

// admit decides whether the call may proceed, moving open circuits to
// half-open once the reset window elapses.
func (r *Registry) admit(factorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.states[factorID]
	if !ok {
		c = &circuit{state: StateClosed}
		r.states[factorID] = c
	}
	switch c.state {
	case StateOpen:
		if r.clock.Now().Sub(c.lastFail) > r.resetTimeout {
			c.state = StateHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// call races the operation against the per-call timeout. The operation runs
// in its own goroutine; a timed-out operation's eventual result is
// discarded.
func (r *Registry) call(ctx context.Context, op Operation) (analysis.FactorResult, error) {
	type callResult struct {
		result analysis.FactorResult
		err    error
	}
	done := make(chan callResult, 1)

	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- callResult{err: fmt.Errorf("factor panic: %v", rec)}
			}
		}()
		result, err := op(callCtx)
		done <- callResult{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-callCtx.Done():
		return analysis.FactorResult{}, fmt.Errorf("factor call timed out: %w", callCtx.Err())
	}
}

func (r *Registry) recordFailure(factorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.states[factorID]
	if c == nil {
		c = &circuit{state: StateClosed}
		r.states[factorID] = c
	}
	c.failures++
	c.lastFail = r.clock.Now()
	if c.state == StateHalfOpen || c.failures >= r.threshold {
		if c.state != StateOpen {
			r.logger.Warn("circuit opened",
				zap.String("factor", factorID),
				zap.Int("failures", c.failures),
			)
		}
		c.state = StateOpen
	}
}

func (r *Registry) recordSuccess(factorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.states[factorID]
	if c == nil {
		return
	}
	if c.state == StateHalfOpen {
		r.logger.Info("circuit closed after successful probe", zap.String("factor", factorID))
	}
	c.state = StateClosed
	c.failures = 0
}
