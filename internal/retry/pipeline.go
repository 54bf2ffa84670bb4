package retry

import (
	"context"
	"sync"
	"time"

	"github.com/ai-scholar/scholar-admin/internal/apperr"
)

// Failure is the classified outcome of an exhausted retry sequence.
type Failure struct {
	Kind    apperr.Kind
	Message string
	Time    time.Time
}

// Observer receives pipeline lifecycle events. The web layer uses it
// to drive spinners, retry counters and announcements; the pipeline
// itself never touches presentation.
type Observer interface {
	AttemptStarted(label string, attempt, maxAttempts int)
	RetryScheduled(label string, attempt int, delay time.Duration, err error)
	Succeeded(label string, attempts int)
	Exhausted(label string, failure Failure)
}

// Pipeline runs operations through bounded retry while exposing the
// observable state around them: a busy flag with the operation label,
// the current retry count, and the last classified failure.
type Pipeline struct {
	mu          sync.Mutex
	policy      Policy
	clock       func() time.Time
	observer    Observer
	busy        bool
	label       string
	retryCount  int
	lastFailure *Failure
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPolicy overrides the default retry policy.
func WithPolicy(policy Policy) PipelineOption {
	return func(p *Pipeline) { p.policy = policy }
}

// WithObserver wires a lifecycle observer.
func WithObserver(o Observer) PipelineOption {
	return func(p *Pipeline) { p.observer = o }
}

// WithClock overrides the pipeline clock.
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.clock = clock }
}

// NewPipeline creates a pipeline with the default policy.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		policy: DefaultPolicy(),
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Busy reports whether an operation is in flight and its label.
func (p *Pipeline) Busy() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.busy, p.label
}

// RetryCount returns the number of retries of the operation in flight.
// It resets to zero when the sequence ends.
func (p *Pipeline) RetryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.retryCount
}

// LastFailure returns the classified outcome of the most recent
// exhausted sequence, or nil.
func (p *Pipeline) LastFailure() *Failure {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastFailure == nil {
		return nil
	}

	f := *p.lastFailure
	return &f
}

// ClearFailure dismisses the stored failure.
func (p *Pipeline) ClearFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastFailure = nil
}

// Run executes op through the pipeline. On success the result is
// returned as soon as an attempt succeeds. On exhaustion the last
// error is classified, stored with a timestamp and returned; the retry
// counter is reset and the busy flag cleared either way. Operations
// must be safely re-runnable: the pipeline re-invokes the same closure
// verbatim.
func Run[T any](ctx context.Context, p *Pipeline, label string, op func() (T, error)) (T, error) {
	maxAttempts := p.policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := p.policy.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff
	}

	p.begin(label)

	attempts := 0
	wrapped := func() (T, error) {
		attempts++
		p.attemptStarted(label, attempts, maxAttempts)

		result, err := op()
		if err != nil && attempts < maxAttempts {
			p.retryScheduled(label, attempts, backoff(attempts), err)
		}

		return result, err
	}

	result, err := Do(ctx, p.policy, wrapped)

	if err != nil {
		failure := Failure{
			Kind:    apperr.Classify(err),
			Message: apperr.UserMessage(apperr.Classify(err)),
			Time:    p.clock(),
		}
		p.finishFailed(label, failure)
		return result, err
	}

	p.finishSucceeded(label, attempts)

	return result, nil
}

func (p *Pipeline) begin(label string) {
	p.mu.Lock()
	p.busy = true
	p.label = label
	p.retryCount = 0
	p.lastFailure = nil
	p.mu.Unlock()
}

func (p *Pipeline) attemptStarted(label string, attempt, maxAttempts int) {
	p.mu.Lock()
	p.retryCount = attempt - 1
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer.AttemptStarted(label, attempt, maxAttempts)
	}
}

func (p *Pipeline) retryScheduled(label string, attempt int, delay time.Duration, err error) {
	p.mu.Lock()
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer.RetryScheduled(label, attempt, delay, err)
	}
}

func (p *Pipeline) finishSucceeded(label string, attempts int) {
	p.mu.Lock()
	p.busy = false
	p.label = ""
	p.retryCount = 0
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer.Succeeded(label, attempts)
	}
}

func (p *Pipeline) finishFailed(label string, failure Failure) {
	p.mu.Lock()
	p.busy = false
	p.label = ""
	p.retryCount = 0
	p.lastFailure = &failure
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer.Exhausted(label, failure)
	}
}
