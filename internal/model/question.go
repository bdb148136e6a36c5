package model

// QuestionKind enumerates the supported question types.
type QuestionKind string

const (
	// QuestionKindChoice is a single selection from the fixed labels "1".."5".
	QuestionKindChoice QuestionKind = "CHOICE"
	// QuestionKindText is a free-form answer compared by trimmed exact match.
	QuestionKindText QuestionKind = "TEXT"
)

// Question is a single exam question. IDs are integers unique within their
// exam and double as the stable ordering key.
type Question struct {
	ID            int          `json:"id"`
	Kind          QuestionKind `json:"kind"`
	Score         int          `json:"score"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
}

// QuestionForStudent is a question stripped of its answer key, sent to
// students taking the exam.
type QuestionForStudent struct {
	ID    int          `json:"id"`
	Kind  QuestionKind `json:"kind"`
	Score int          `json:"score"`
}

// QuestionInput is the payload for authoring a question inside an exam.
type QuestionInput struct {
	ID            int    `json:"id" binding:"required,min=1"`
	Kind          string `json:"kind" binding:"required,oneof=CHOICE TEXT"`
	Score         int    `json:"score" binding:"min=0"`
	CorrectAnswer string `json:"correct_answer" binding:"required"`
}

// AnswerMap maps question IDs to submitted answer strings. Unanswered
// questions are simply absent. encoding/json renders the integer keys as
// JSON object keys.
type AnswerMap map[int]string
