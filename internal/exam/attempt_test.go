package exam

import (
	"errors"
	"testing"
	"time"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

func attemptExam(limitMinutes int, start, end time.Time) *model.Exam {
	return &model.Exam{
		Title:            "final",
		TimeLimitMinutes: limitMinutes,
		WindowStart:      start,
		WindowEnd:        end,
		Questions: []model.Question{
			{ID: 1, Kind: model.QuestionKindChoice, Score: 10, CorrectAnswer: "3"},
			{ID: 2, Kind: model.QuestionKindText, Score: 20, CorrectAnswer: "Goguryeo"},
		},
	}
}

func TestNewAttemptInitialPhase(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{name: "before window", now: base.Add(-time.Minute), want: PhaseWaiting},
		{name: "inside window", now: base.Add(time.Minute), want: PhaseIntro},
		{name: "after window", now: base.Add(2 * time.Hour), want: PhaseEnded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewAttempt(e, tc.now).Phase(); got != tc.want {
				t.Fatalf("expected phase=%s, got=%s", tc.want, got)
			}
		})
	}
}

func TestWaitingTickReclassifiesGate(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	a := NewAttempt(e, base.Add(-2*time.Second))
	if a.Phase() != PhaseWaiting {
		t.Fatalf("expected waiting, got %s", a.Phase())
	}

	// Still closed one second before the window.
	if phase, _ := a.Tick(base.Add(-time.Second)); phase != PhaseWaiting {
		t.Fatalf("expected waiting, got %s", phase)
	}

	// Window opens.
	if phase, _ := a.Tick(base); phase != PhaseIntro {
		t.Fatalf("expected intro, got %s", phase)
	}
}

func TestWaitingTickSkipsToEndedWhenWindowPassed(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	// Student was left waiting (e.g. tab asleep) until after windowEnd.
	a := NewAttempt(e, base.Add(-time.Minute))
	if phase, _ := a.Tick(base.Add(2 * time.Hour)); phase != PhaseEnded {
		t.Fatalf("expected ended, got %s", phase)
	}
}

func TestStartGrantsCappedBudget(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// timeLimit=60min but the window closes in 10 minutes.
	e := attemptExam(60, base, base.Add(time.Hour))

	entry := base.Add(50 * time.Minute)
	a := NewAttempt(e, entry)
	if err := a.Start(entry); err != nil {
		t.Fatalf("start: %v", err)
	}
	if a.Remaining() != 600 {
		t.Fatalf("expected 600 seconds granted, got %d", a.Remaining())
	}
}

func TestStartRefusedAfterWindowEnd(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	a := NewAttempt(e, base.Add(59*time.Minute))
	// The student idles on the intro screen past windowEnd.
	if err := a.Start(base.Add(61 * time.Minute)); !errors.Is(err, ErrNotEnterable) {
		t.Fatalf("expected ErrNotEnterable, got %v", err)
	}
	if a.Phase() != PhaseEnded {
		t.Fatalf("expected ended, got %s", a.Phase())
	}
}

func TestResumeCarriesCountdownAndAnswers(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	// Reconnect 10 minutes in with 20 minutes of the original grant left.
	now := base.Add(10 * time.Minute)
	a := NewAttempt(e, now)
	if err := a.Resume(now, 1200); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if a.Remaining() != 1200 {
		t.Fatalf("expected carried countdown 1200, got %d", a.Remaining())
	}
	if err := a.RestoreAnswers(model.AnswerMap{1: "3"}); err != nil {
		t.Fatalf("restore answers: %v", err)
	}
	if a.Answers()[1] != "3" {
		t.Fatal("restored answer missing")
	}
}

func TestResumeNeverExceedsFreshGrant(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(60, base, base.Add(time.Hour))

	// 5 minutes of window left; a stale carried value cannot extend it.
	now := base.Add(55 * time.Minute)
	a := NewAttempt(e, now)
	if err := a.Resume(now, 3600); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if a.Remaining() != 300 {
		t.Fatalf("expected fresh grant cap 300, got %d", a.Remaining())
	}
}

func TestResumeExhaustedBudgetForcesSubmitOnNextTick(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	now := base.Add(time.Minute)
	a := NewAttempt(e, now)
	if err := a.Resume(now, 0); err != nil {
		t.Fatalf("resume: %v", err)
	}

	phase, out := a.Tick(now.Add(time.Second))
	if phase != PhaseSubmitted || out == nil || !out.Forced {
		t.Fatalf("expected immediate forced submission, got phase=%s out=%+v", phase, out)
	}
}

func TestAnswerCaptureRules(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	a := NewAttempt(e, base)
	if err := a.SetAnswer(1, "3"); !errors.Is(err, ErrNotTaking) {
		t.Fatalf("expected ErrNotTaking before start, got %v", err)
	}

	if err := a.Start(base); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := a.SetAnswer(1, "6"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
	if err := a.SetAnswer(99, "1"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
	if err := a.SetAnswer(1, "3"); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	if err := a.SetAnswer(2, "Goguryeo"); err != nil {
		t.Fatalf("set answer: %v", err)
	}

	// Clearing an answer removes it from the map.
	if err := a.SetAnswer(2, ""); err != nil {
		t.Fatalf("clear answer: %v", err)
	}
	if _, ok := a.Answers()[2]; ok {
		t.Fatal("cleared answer still present")
	}

	if _, err := a.Submit(base.Add(time.Minute), false); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := a.SetAnswer(1, "2"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted after submit, got %v", err)
	}
}

func TestManualSubmitScoresAdvisorySummary(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Hour))

	a := NewAttempt(e, base)
	if err := a.Start(base); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.SetAnswer(1, "3"); err != nil {
		t.Fatalf("set answer: %v", err)
	}
	if err := a.SetAnswer(2, "Silla"); err != nil {
		t.Fatalf("set answer: %v", err)
	}

	out, err := a.Submit(base.Add(17*time.Minute), false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Forced {
		t.Fatal("manual submit flagged as forced")
	}
	if out.Summary.Earned != 10 || out.Summary.Total != 30 {
		t.Fatalf("unexpected summary: %+v", out.Summary)
	}
	if out.Elapsed != 17*time.Minute {
		t.Fatalf("expected 17m elapsed, got %s", out.Elapsed)
	}
}

func TestCountdownForcesSubmissionExactlyOnce(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// 1-minute window so the budget is 60 seconds.
	e := attemptExam(30, base, base.Add(time.Minute))

	a := NewAttempt(e, base)
	if err := a.Start(base); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.SetAnswer(1, "3"); err != nil {
		t.Fatalf("set answer: %v", err)
	}

	var forced *Outcome
	now := base
	for i := 0; i < 60; i++ {
		now = now.Add(time.Second)
		_, out := a.Tick(now)
		if out != nil {
			if forced != nil {
				t.Fatal("forced submission fired twice")
			}
			forced = out
		}
	}

	if forced == nil {
		t.Fatal("countdown reached zero without forcing submission")
	}
	if !forced.Forced {
		t.Fatal("expected forced flag on timeout submission")
	}
	if forced.Summary.Earned != 10 {
		t.Fatalf("expected captured answers to be scored, got %+v", forced.Summary)
	}

	// A late manual submit (the race) loses and sees the original outcome.
	out, err := a.Submit(now, false)
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if out != forced {
		t.Fatal("losing trigger received a different outcome")
	}

	// Further ticks are inert.
	if phase, extra := a.Tick(now.Add(time.Second)); phase != PhaseSubmitted || extra != nil {
		t.Fatalf("tick after submit: phase=%s extra=%v", phase, extra)
	}
}

func TestManualBeatsForcedRace(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := attemptExam(30, base, base.Add(time.Minute))

	a := NewAttempt(e, base)
	if err := a.Start(base); err != nil {
		t.Fatalf("start: %v", err)
	}

	manual, err := a.Submit(base.Add(59*time.Second), false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The tick that would have forced submission arrives right after.
	_, out := a.Tick(base.Add(60 * time.Second))
	if out != nil {
		t.Fatal("tick forced a second submission")
	}
	if a.Outcome() != manual {
		t.Fatal("outcome replaced after manual submit")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 17*time.Minute + 32*time.Second, want: "17m32s"},
		{in: 5 * time.Second, want: "0m05s"},
		{in: 61 * time.Minute, want: "61m00s"},
		{in: -3 * time.Second, want: "0m00s"},
	}
	for _, tc := range tests {
		if got := FormatElapsed(tc.in); got != tc.want {
			t.Fatalf("FormatElapsed(%s): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
