package exam

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/somang-edu/eduportal-backend/internal/model"
)

func reportQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Kind: model.QuestionKindChoice, Score: 50, CorrectAnswer: "3"},
		{ID: 2, Kind: model.QuestionKindText, Score: 50, CorrectAnswer: "Hangang"},
	}
}

func resultAt(score int, answers model.AnswerMap, submittedAt time.Time) model.Result {
	return model.Result{
		ID:          uuid.New(),
		Score:       score,
		Answers:     answers,
		SubmittedAt: submittedAt,
	}
}

func TestBuildReportEmpty(t *testing.T) {
	got := BuildReport(reportQuestions(), nil)

	if got.Stats.Attempts != 0 || got.Stats.Average != 0 || got.Stats.Max != 0 {
		t.Fatalf("expected zeroed stats, got %+v", got.Stats)
	}
	if len(got.Ranked) != 0 {
		t.Fatalf("expected no ranked results, got %d", len(got.Ranked))
	}
	for _, qs := range got.PerQuestion {
		if qs.CorrectRate != 0 || qs.CorrectCount != 0 {
			t.Fatalf("expected zero per-question stats, got %+v", qs)
		}
	}
}

func TestBuildReportStatsAndRanking(t *testing.T) {
	base := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	results := []model.Result{
		resultAt(90, nil, base.Add(1*time.Minute)),
		resultAt(70, nil, base.Add(2*time.Minute)),
		resultAt(90, nil, base.Add(3*time.Minute)),
		resultAt(50, nil, base.Add(4*time.Minute)),
	}

	got := BuildReport(reportQuestions(), results)

	if got.Stats.Attempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", got.Stats.Attempts)
	}
	if got.Stats.Average != 75 {
		t.Fatalf("expected average=75, got %d", got.Stats.Average)
	}
	if got.Stats.Max != 90 {
		t.Fatalf("expected max=90, got %d", got.Stats.Max)
	}

	// Sorted [90,90,70,50]: ties get distinct consecutive ranks, never
	// shared ranks, stable by submission time.
	wantScores := []int{90, 90, 70, 50}
	for i, rr := range got.Ranked {
		if rr.Score != wantScores[i] {
			t.Fatalf("position %d: expected score=%d, got=%d", i, wantScores[i], rr.Score)
		}
		if rr.Rank != i+1 {
			t.Fatalf("position %d: expected rank=%d, got=%d", i, i+1, rr.Rank)
		}
	}
	if !got.Ranked[0].SubmittedAt.Before(got.Ranked[1].SubmittedAt) {
		t.Fatal("equal scores not ordered by submission time")
	}
}

func TestBuildReportAverageRounds(t *testing.T) {
	base := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	results := []model.Result{
		resultAt(50, nil, base),
		resultAt(51, nil, base.Add(time.Minute)),
	}

	got := BuildReport(reportQuestions(), results)
	if got.Stats.Average != 51 {
		t.Fatalf("expected rounded average=51, got %d", got.Stats.Average)
	}
}

func TestBuildReportPerQuestionUsesScoringRule(t *testing.T) {
	base := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	results := []model.Result{
		// Correct on both.
		resultAt(100, model.AnswerMap{1: "3", 2: " Hangang "}, base),
		// "13" contains "3" but containment must not count as correct.
		resultAt(0, model.AnswerMap{1: "13", 2: "hangang"}, base.Add(time.Minute)),
		// Unanswered everywhere.
		resultAt(0, model.AnswerMap{}, base.Add(2*time.Minute)),
	}

	got := BuildReport(reportQuestions(), results)

	if len(got.PerQuestion) != 2 {
		t.Fatalf("expected 2 question stats, got %d", len(got.PerQuestion))
	}
	for _, qs := range got.PerQuestion {
		if qs.CorrectCount != 1 {
			t.Fatalf("question %d: expected correct_count=1, got=%d", qs.QuestionID, qs.CorrectCount)
		}
		if qs.CorrectRate != 33 {
			t.Fatalf("question %d: expected correct_rate=33, got=%d", qs.QuestionID, qs.CorrectRate)
		}
	}
}
