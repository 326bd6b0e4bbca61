// Package submission holds the user's draft (resume + job description) and
// drives one analysis request at a time through Idle → InFlight → Succeeded/Failed.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonathan/jobjeeves/internal/analysis"
	"github.com/jonathan/jobjeeves/internal/types"
)

// MinJobDescriptionLength is the minimum trimmed length, in characters, of a submittable job description.
const MinJobDescriptionLength = 20

// DefaultTimeout bounds a single analysis call.
const DefaultTimeout = 2 * time.Minute

// CancelledMessage is the Failed message for a call abandoned through Close or the caller's context.
const CancelledMessage = "analysis cancelled"

// Analyzer performs one analysis call. *analysis.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, doc *types.Document, jobDescription string) (*types.AnalysisResult, error)
}

// Options configures a Controller.
type Options struct {
	// Timeout bounds each call. Zero disables the bound.
	Timeout time.Duration
	Verbose bool
}

// DefaultOptions returns the default controller options.
func DefaultOptions() *Options {
	return &Options{Timeout: DefaultTimeout}
}

// Controller owns the draft and the lifecycle state. All methods are safe for
// concurrent use; the call itself completes on its own goroutine.
type Controller struct {
	analyzer Analyzer
	timeout  time.Duration
	verbose  bool

	mu             sync.Mutex
	doc            *types.Document
	jobDescription string
	state          State
	seq            int
	cancel         context.CancelFunc
	closed         bool
	listeners      []func(State)
}

// New creates an idle controller that submits through analyzer.
func New(analyzer Analyzer, opts *Options) *Controller {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Controller{
		analyzer: analyzer,
		timeout:  opts.Timeout,
		verbose:  opts.Verbose,
		state:    State{Phase: Idle},
	}
}

// SetDocument replaces the held document. nil clears the selection.
func (c *Controller) SetDocument(doc *types.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc
}

// SetJobDescription replaces the held job description verbatim.
func (c *Controller) SetJobDescription(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobDescription = text
}

// State returns a snapshot of the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnChange registers fn to be called after every state transition.
// Listeners run synchronously, in registration order, without the lock held.
func (c *Controller) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// CanSubmit reports whether a document is held, the trimmed job description
// has at least MinJobDescriptionLength characters, and no call is in flight.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Controller) canSubmitLocked() bool {
	return !c.closed &&
		c.doc != nil &&
		JobDescriptionReady(c.jobDescription) &&
		c.state.Phase != InFlight
}

// JobDescriptionReady reports whether text is long enough to submit.
func JobDescriptionReady(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinJobDescriptionLength
}

// Submit starts an analysis of the current draft. It is a no-op returning
// (nil, false) when CanSubmit is false, which includes any call made while a
// previous submission is still in flight.
//
// On start, any previous result or failure is discarded and the state becomes
// InFlight. The returned channel receives the terminal state exactly once and
// is then closed; the state is already visible through State when it arrives.
func (c *Controller) Submit(ctx context.Context) (<-chan State, bool) {
	c.mu.Lock()
	if !c.canSubmitLocked() {
		c.mu.Unlock()
		return nil, false
	}

	c.seq++
	seq := c.seq
	doc := c.doc
	jobDescription := c.jobDescription

	var callCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.state = State{Phase: InFlight, Submission: seq}
	inFlight := c.state
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	if c.verbose {
		log.Printf("[VERBOSE] submission %d: analyzing %q (%d bytes) against %d-char job description",
			seq, doc.Name, doc.Size(), utf8.RuneCountInString(jobDescription))
	}
	notify(listeners, inFlight)

	done := make(chan State, 1)
	go c.run(callCtx, cancel, seq, doc, jobDescription, done)
	return done, true
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, seq int, doc *types.Document, jobDescription string, done chan<- State) {
	defer cancel()

	result, err := c.analyzer.Analyze(ctx, doc, jobDescription)

	next := State{Submission: seq}
	switch {
	case err != nil:
		next.Phase = Failed
		next.Message = c.failureMessage(err)
	case result == nil:
		next.Phase = Failed
		next.Message = "analysis service returned no result"
	default:
		next.Phase = Succeeded
		next.Result = result
	}

	c.mu.Lock()
	c.state = next
	c.cancel = nil
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	if c.verbose {
		if next.Phase == Failed {
			detail := next.Message
			var reqErr *analysis.RequestError
			if errors.As(err, &reqErr) {
				detail = reqErr.Describe()
			}
			log.Printf("[VERBOSE] submission %d failed: %s", seq, detail)
		} else {
			log.Printf("[VERBOSE] submission %d succeeded: analysis %s", seq, next.Result.AnalysisID)
		}
	}
	notify(listeners, next)

	done <- next
	close(done)
}

// failureMessage turns any failure into the single string shown to the user.
func (c *Controller) failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		if c.timeout > 0 {
			return fmt.Sprintf("analysis timed out after %s", c.timeout)
		}
		return "analysis timed out"
	case errors.Is(err, context.Canceled):
		return CancelledMessage
	}

	var reqErr *analysis.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}

// Close abandons any in-flight call and makes further Submit calls inert.
// The abandoned submission still reaches a terminal Failed state.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Controller) snapshotListenersLocked() []func(State) {
	if len(c.listeners) == 0 {
		return nil
	}
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	return listeners
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
