package exam

import (
	"testing"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

func TestAnswerCorrect(t *testing.T) {
	tests := []struct {
		name      string
		kind      model.QuestionKind
		key       string
		submitted string
		want      bool
	}{
		{name: "choice exact match", kind: model.QuestionKindChoice, key: "3", submitted: "3", want: true},
		{name: "choice no normalization", kind: model.QuestionKindChoice, key: "3", submitted: "03", want: false},
		{name: "choice wrong label", kind: model.QuestionKindChoice, key: "2", submitted: "4", want: false},
		{name: "text trimmed both sides", kind: model.QuestionKindText, key: "Paris", submitted: " Paris ", want: true},
		{name: "text case sensitive", kind: model.QuestionKindText, key: "Paris", submitted: "paris", want: false},
		{name: "text key padded", kind: model.QuestionKindText, key: " Paris ", submitted: "Paris", want: true},
		{name: "text substring is not enough", kind: model.QuestionKindText, key: "3", submitted: "13", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := model.Question{ID: 1, Kind: tc.kind, Score: 5, CorrectAnswer: tc.key}
			if got := AnswerCorrect(q, tc.submitted); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestScore(t *testing.T) {
	questions := []model.Question{
		{ID: 1, Kind: model.QuestionKindChoice, Score: 10, CorrectAnswer: "2"},
		{ID: 2, Kind: model.QuestionKindChoice, Score: 10, CorrectAnswer: "5"},
		{ID: 3, Kind: model.QuestionKindText, Score: 15, CorrectAnswer: "Seoul"},
		{ID: 4, Kind: model.QuestionKindText, Score: 5, CorrectAnswer: "1919"},
	}
	answers := model.AnswerMap{
		1: "2",       // correct
		2: "1",       // wrong
		3: " Seoul ", // correct after trim
		// 4 unanswered
	}

	got := Score(questions, answers)

	if got.Total != 40 {
		t.Fatalf("expected total=40, got=%d", got.Total)
	}
	if got.Earned != 25 {
		t.Fatalf("expected earned=25, got=%d", got.Earned)
	}
	if got.CorrectCount != 2 {
		t.Fatalf("expected correct_count=2, got=%d", got.CorrectCount)
	}
	wantPer := map[int]bool{1: true, 2: false, 3: true, 4: false}
	for id, want := range wantPer {
		if got.PerQuestion[id] != want {
			t.Fatalf("question %d: expected correct=%v, got=%v", id, want, got.PerQuestion[id])
		}
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	questions := []model.Question{
		{ID: 1, Kind: model.QuestionKindChoice, Score: 3, CorrectAnswer: "1"},
		{ID: 2, Kind: model.QuestionKindChoice, Score: 7, CorrectAnswer: "2"},
		{ID: 3, Kind: model.QuestionKindText, Score: 11, CorrectAnswer: "x"},
	}
	reversed := []model.Question{questions[2], questions[1], questions[0]}
	answers := model.AnswerMap{1: "1", 3: "x"}

	a := Score(questions, answers)
	b := Score(reversed, answers)

	if a.Earned != b.Earned || a.Total != b.Total || a.CorrectCount != b.CorrectCount {
		t.Fatalf("scoring depends on question order: %+v vs %+v", a, b)
	}
}

func TestScoreEmptyAnswerNeverCorrect(t *testing.T) {
	questions := []model.Question{
		{ID: 1, Kind: model.QuestionKindText, Score: 10, CorrectAnswer: "ok"},
	}
	got := Score(questions, model.AnswerMap{1: ""})
	if got.Earned != 0 || got.PerQuestion[1] {
		t.Fatalf("empty submission scored as correct: %+v", got)
	}
}
