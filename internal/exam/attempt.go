package exam

import (
	"errors"
	"fmt"
	"time"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

// Phase is the state of one student's interaction with an exam.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseIntro     Phase = "intro"
	PhaseTaking    Phase = "taking"
	PhaseSubmitted Phase = "submitted"
	PhaseEnded     Phase = "ended"
)

// Attempt machine errors.
var (
	ErrNotEnterable     = errors.New("exam is not enterable right now")
	ErrNotTaking        = errors.New("attempt is not in the taking phase")
	ErrAlreadySubmitted = errors.New("attempt was already submitted")
	ErrUnknownQuestion  = errors.New("question does not belong to this exam")
	ErrInvalidChoice    = errors.New("choice answers must be one of the labels 1-5")
)

// choiceLabels is the fixed label set for CHOICE answers.
var choiceLabels = map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}

// Outcome is produced exactly once per attempt, by whichever submit trigger
// fires first.
type Outcome struct {
	Summary Summary
	Forced  bool
	Elapsed time.Duration
}

// Attempt drives a single student through waiting → intro → taking →
// submitted, with an early exit to ended when the window closes before entry.
// It owns the in-memory answer map and the countdown bookkeeping; the caller
// owns the one-second clock and feeds Tick. The machine is not safe for
// concurrent use; one goroutine (the attempt stream) drives it.
type Attempt struct {
	exam      *model.Exam
	questions map[int]model.Question

	phase     Phase
	answers   model.AnswerMap
	remaining int
	startedAt time.Time
	outcome   *Outcome
}

// NewAttempt positions the machine according to the scheduling gate at the
// moment of construction.
func NewAttempt(e *model.Exam, now time.Time) *Attempt {
	byID := make(map[int]model.Question, len(e.Questions))
	for _, q := range e.Questions {
		byID[q.ID] = q
	}

	a := &Attempt{
		exam:      e,
		questions: byID,
		answers:   make(model.AnswerMap),
	}

	switch Classify(e, now).State {
	case GateEnded:
		a.phase = PhaseEnded
	case GateWaiting:
		a.phase = PhaseWaiting
	default:
		a.phase = PhaseIntro
	}
	return a
}

// Phase reports the current phase.
func (a *Attempt) Phase() Phase { return a.phase }

// Exam returns the definition the machine was built from.
func (a *Attempt) Exam() *model.Exam { return a.exam }

// Remaining reports the countdown in seconds while taking.
func (a *Attempt) Remaining() int { return a.remaining }

// Outcome returns the submission outcome, or nil before submission.
func (a *Attempt) Outcome() *Outcome { return a.outcome }

// Answers returns a copy of the captured answer map.
func (a *Attempt) Answers() model.AnswerMap {
	out := make(model.AnswerMap, len(a.answers))
	for id, v := range a.answers {
		out[id] = v
	}
	return out
}

// RestoreAnswers seeds the answer map when a student resumes an interrupted
// attempt. Only valid before submission.
func (a *Attempt) RestoreAnswers(answers model.AnswerMap) error {
	if a.phase == PhaseSubmitted {
		return ErrAlreadySubmitted
	}
	for id, v := range answers {
		if err := a.setAnswer(id, v); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances the machine by one observed second. While waiting it
// re-evaluates the gate (the window may have opened, or closed unseen);
// while taking it decrements the countdown and forces submission exactly
// once when it reaches zero.
func (a *Attempt) Tick(now time.Time) (Phase, *Outcome) {
	switch a.phase {
	case PhaseWaiting:
		switch Classify(a.exam, now).State {
		case GateEnded:
			a.phase = PhaseEnded
		case GateEnterable:
			a.phase = PhaseIntro
		}
	case PhaseTaking:
		a.remaining--
		if a.remaining <= 0 {
			a.remaining = 0
			out, _ := a.Submit(now, true)
			return a.phase, out
		}
	}
	return a.phase, nil
}

// Start moves intro → taking. The gate is re-checked at this instant; the
// granted countdown is min(timeLimit, window remainder), never more time
// than the window allows.
func (a *Attempt) Start(now time.Time) error {
	if a.phase != PhaseIntro {
		return fmt.Errorf("start from phase %s: %w", a.phase, ErrNotEnterable)
	}

	gate := Classify(a.exam, now)
	if gate.State != GateEnterable {
		a.phase = PhaseEnded
		return ErrNotEnterable
	}

	a.remaining = gate.SecondsRemaining
	a.startedAt = now
	a.phase = PhaseTaking
	return nil
}

// Resume moves intro → taking with a countdown carried over from an earlier
// entry, used when a student reconnects mid-attempt. The carried countdown
// never exceeds what the gate would grant a fresh entry at this instant.
func (a *Attempt) Resume(now time.Time, remaining int) error {
	if err := a.Start(now); err != nil {
		return err
	}
	if remaining < a.remaining {
		a.remaining = remaining
	}
	if a.remaining < 1 {
		a.remaining = 1
	}
	return nil
}

// SetAnswer records one answer edit. Edits are rejected outside the taking
// phase; CHOICE answers must come from the fixed label set.
func (a *Attempt) SetAnswer(questionID int, value string) error {
	if a.phase == PhaseSubmitted {
		return ErrAlreadySubmitted
	}
	if a.phase != PhaseTaking {
		return ErrNotTaking
	}
	return a.setAnswer(questionID, value)
}

func (a *Attempt) setAnswer(questionID int, value string) error {
	q, ok := a.questions[questionID]
	if !ok {
		return fmt.Errorf("question %d: %w", questionID, ErrUnknownQuestion)
	}
	if q.Kind == model.QuestionKindChoice && value != "" && !choiceLabels[value] {
		return ErrInvalidChoice
	}
	if value == "" {
		delete(a.answers, questionID)
		return nil
	}
	a.answers[questionID] = value
	return nil
}

// Submit finishes the attempt. The manual button and the countdown reaching
// zero are two independent triggers into this one method; only the first
// wins, the second receives the existing outcome and ErrAlreadySubmitted.
// The returned summary is advisory; the server recomputes the authoritative
// score from the raw answers.
func (a *Attempt) Submit(now time.Time, forced bool) (*Outcome, error) {
	if a.phase == PhaseSubmitted {
		return a.outcome, ErrAlreadySubmitted
	}
	if a.phase != PhaseTaking {
		return nil, ErrNotTaking
	}

	a.outcome = &Outcome{
		Summary: Score(a.exam.Questions, a.answers),
		Forced:  forced,
		Elapsed: now.Sub(a.startedAt),
	}
	a.phase = PhaseSubmitted
	return a.outcome, nil
}

// FormatElapsed renders an elapsed duration the way results display it,
// e.g. "17m32s".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int(d/time.Second) % 60
	return fmt.Sprintf("%dm%02ds", m, s)
}
