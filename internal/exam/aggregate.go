package exam

import (
	"math"
	"sort"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

// Stats summarizes all submitted results for an exam.
type Stats struct {
	Attempts int `json:"attempts"`
	Average  int `json:"average"`
	Max      int `json:"max"`
}

// RankedResult annotates a result with its 1-based rank.
type RankedResult struct {
	model.Result
	Rank int `json:"rank"`
}

// QuestionStat reports how often a question was answered correctly.
type QuestionStat struct {
	QuestionID   int `json:"question_id"`
	CorrectCount int `json:"correct_count"`
	CorrectRate  int `json:"correct_rate"`
}

// Report is the aggregated analytics view for one exam.
type Report struct {
	Stats       Stats          `json:"stats"`
	Ranked      []RankedResult `json:"ranked_results"`
	PerQuestion []QuestionStat `json:"per_question_stats"`
}

// BuildReport aggregates all results for an exam. Ranking sorts by score
// descending and assigns purely positional ranks: ties receive distinct
// consecutive ranks, ordered stably by submission time. Per-question
// correctness uses AnswerCorrect, the same rule the scoring engine applies,
// never substring containment. With zero results every figure is 0.
func BuildReport(questions []model.Question, results []model.Result) Report {
	r := Report{
		Ranked:      make([]RankedResult, 0, len(results)),
		PerQuestion: make([]QuestionStat, 0, len(questions)),
	}
	r.Stats.Attempts = len(results)

	sum := 0
	for _, res := range results {
		sum += res.Score
		if res.Score > r.Stats.Max {
			r.Stats.Max = res.Score
		}
		r.Ranked = append(r.Ranked, RankedResult{Result: res})
	}
	if len(results) > 0 {
		r.Stats.Average = int(math.Round(float64(sum) / float64(len(results))))
	}

	sort.SliceStable(r.Ranked, func(i, j int) bool {
		if r.Ranked[i].Score != r.Ranked[j].Score {
			return r.Ranked[i].Score > r.Ranked[j].Score
		}
		return r.Ranked[i].SubmittedAt.Before(r.Ranked[j].SubmittedAt)
	})
	for i := range r.Ranked {
		r.Ranked[i].Rank = i + 1
	}

	sorted := make([]model.Question, len(questions))
	copy(sorted, questions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, q := range sorted {
		stat := QuestionStat{QuestionID: q.ID}
		for _, res := range results {
			if submitted, ok := res.Answers[q.ID]; ok && submitted != "" && AnswerCorrect(q, submitted) {
				stat.CorrectCount++
			}
		}
		if len(results) > 0 {
			stat.CorrectRate = int(math.Round(100 * float64(stat.CorrectCount) / float64(len(results))))
		}
		r.PerQuestion = append(r.PerQuestion, stat)
	}

	return r
}
