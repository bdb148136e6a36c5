package exam

import (
	"strings"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

// Summary is the outcome of scoring one answer map against an exam's
// question list.
type Summary struct {
	Earned       int          `json:"earned"`
	Total        int          `json:"total"`
	CorrectCount int          `json:"correct_count"`
	PerQuestion  map[int]bool `json:"per_question"`
}

// AnswerCorrect applies the single correctness rule used everywhere: for
// CHOICE questions the submitted label must equal the key exactly (no
// normalization, so "3" never matches "03"); for TEXT questions both sides
// are trimmed and compared case-sensitively.
func AnswerCorrect(q model.Question, submitted string) bool {
	switch q.Kind {
	case model.QuestionKindChoice:
		return submitted == q.CorrectAnswer
	case model.QuestionKindText:
		return strings.TrimSpace(submitted) == strings.TrimSpace(q.CorrectAnswer)
	default:
		return false
	}
}

// Score grades an answer map deterministically. Every question contributes
// its score to Total regardless of whether it was answered; Earned sums the
// scores of correct questions. Permuting the question list does not change
// the result.
func Score(questions []model.Question, answers model.AnswerMap) Summary {
	s := Summary{PerQuestion: make(map[int]bool, len(questions))}

	for _, q := range questions {
		s.Total += q.Score

		submitted, ok := answers[q.ID]
		correct := ok && submitted != "" && AnswerCorrect(q, submitted)
		s.PerQuestion[q.ID] = correct
		if correct {
			s.Earned += q.Score
			s.CorrectCount++
		}
	}

	return s
}
