package consultation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWizardClosed indicates the owning view was torn down; the wizard
	// ignores further calls and late-resolving submissions.
	ErrWizardClosed = errors.New("consultation: wizard closed")
	// ErrAlreadySubmitted indicates the wizard reached its terminal state.
	ErrAlreadySubmitted = errors.New("consultation: wizard already submitted")

	errMissingSubmissionClient = errors.New("consultation: submission client is required")
)

// SubmissionClient persists a validated submission payload in the external
// datastore.
type SubmissionClient interface {
	CreateConsultation(ctx context.Context, request SubmissionRequest) (Receipt, error)
}

// SubmissionFailedError wraps a rejected create call. The draft and step are
// preserved so the user can retry.
type SubmissionFailedError struct {
	cause error
}

func (e *SubmissionFailedError) Error() string {
	return fmt.Sprintf("consultation: submission failed: %v", e.cause)
}

func (e *SubmissionFailedError) Unwrap() error {
	return e.cause
}

// LeaveConfirmer is the host hook consulted before abandoning an in-progress
// flow. Hosts without a confirmation primitive simply leave it nil.
type LeaveConfirmer interface {
	ConfirmLeave() bool
}

// WizardConfig wires the wizard's collaborators and optional host callbacks.
type WizardConfig struct {
	Client         SubmissionClient
	Clock          func() time.Time
	Logger         *zap.Logger
	LeaveConfirmer LeaveConfirmer
	OnStepChange   func(Step)
	OnStepTiming   func(step Step, spent time.Duration)
	OnSubmitted    func(Receipt)
}

// Wizard drives the guided consultation flow: it owns the draft, gates every
// forward transition, and performs exactly one submission when the terminal
// gate is passed.
type Wizard struct {
	mu            sync.Mutex
	draft         *Draft
	step          Step
	stepEnteredAt time.Time
	inFlight      bool
	submitted     bool
	closed        bool
	receipt       Receipt

	client       SubmissionClient
	clock        func() time.Time
	logger       *zap.Logger
	confirmer    LeaveConfirmer
	onStepChange func(Step)
	onStepTiming func(Step, time.Duration)
	onSubmitted  func(Receipt)
}

// NewWizard constructs a wizard positioned at the first step with an empty
// draft.
func NewWizard(cfg WizardConfig) (*Wizard, error) {
	if cfg.Client == nil {
		return nil, errMissingSubmissionClient
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{
		draft:         NewDraft(),
		step:          FirstStep,
		stepEnteredAt: clock(),
		client:        cfg.Client,
		clock:         clock,
		logger:        logger,
		confirmer:     cfg.LeaveConfirmer,
		onStepChange:  cfg.OnStepChange,
		onStepTiming:  cfg.OnStepTiming,
		onSubmitted:   cfg.OnSubmitted,
	}, nil
}

// Draft exposes the in-progress draft for field mutation through its setters.
func (w *Wizard) Draft() *Draft {
	return w.draft
}

// Step returns the current step index.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Submitted reports whether the wizard reached the terminal state.
func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

// Receipt returns the stored submission receipt once submitted.
func (w *Wizard) Receipt() (Receipt, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.receipt, w.submitted
}

// Advance validates the current step and moves forward. On intermediate
// steps it increments the index; on the final step it performs the one
// submission attempt. When validation fails it returns a
// ValidationBlockedError and leaves step and draft untouched. While a
// submission is outstanding, further calls at the final step are no-ops.
func (w *Wizard) Advance(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWizardClosed
	}
	if w.submitted {
		w.mu.Unlock()
		return ErrAlreadySubmitted
	}
	if missing := MissingFields(w.step, w.draft); len(missing) > 0 {
		blocked := &ValidationBlockedError{Step: w.step, Missing: missing}
		w.mu.Unlock()
		return blocked
	}

	if w.step < LastStep {
		spent := w.clock().Sub(w.stepEnteredAt)
		previous := w.step
		w.step++
		w.stepEnteredAt = w.clock()
		next := w.step
		w.mu.Unlock()

		if w.onStepTiming != nil {
			w.onStepTiming(previous, spent)
		}
		if w.onStepChange != nil {
			w.onStepChange(next)
		}
		return nil
	}

	if w.inFlight {
		w.mu.Unlock()
		return nil
	}
	w.inFlight = true
	request := NewGuidedRequest(w.draft)
	w.mu.Unlock()

	receipt, err := w.client.CreateConsultation(ctx, request)

	w.mu.Lock()
	w.inFlight = false
	if w.closed {
		w.mu.Unlock()
		return ErrWizardClosed
	}
	if err != nil {
		w.mu.Unlock()
		w.logger.Warn("consultation submission failed", zap.Error(err))
		return &SubmissionFailedError{cause: err}
	}
	w.submitted = true
	w.receipt = receipt
	w.draft.lock()
	w.mu.Unlock()

	if w.onSubmitted != nil {
		w.onSubmitted(receipt)
	}
	return nil
}

// Retreat moves one step back. Going backward never validates; at the first
// step, after submission, or while a submission is outstanding it is a no-op.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	if w.closed || w.submitted || w.inFlight || w.step <= FirstStep {
		w.mu.Unlock()
		return
	}
	w.step--
	w.stepEnteredAt = w.clock()
	current := w.step
	w.mu.Unlock()

	if w.onStepChange != nil {
		w.onStepChange(current)
	}
}

// ConfirmLeave asks the host whether the user may abandon the flow. It only
// intercepts while progress would be lost (past the first step and not yet
// submitted); without a confirmer hook it degrades to allowing the leave.
func (w *Wizard) ConfirmLeave() bool {
	w.mu.Lock()
	intercept := w.step > FirstStep && !w.submitted && !w.closed
	w.mu.Unlock()
	if !intercept || w.confirmer == nil {
		return true
	}
	return w.confirmer.ConfirmLeave()
}

// Close marks the wizard disposed. An unsubmitted draft is discarded and a
// late-resolving submission result will not mutate state.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if !w.submitted {
		w.draft.Reset()
	}
}
