package websocket

import "github.com/somang-edu/eduportal-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart  Action = "start"
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestEnvelope carries every client action; the answer fields are only
// read for ActionAnswer.
type RequestEnvelope struct {
	Action Action `json:"action"`
	QID    int    `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick    Event = "tick"
	EventPhase   Event = "phase"
	EventStarted Event = "started"
	EventSaved   Event = "saved"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// TickResponse is pushed once per second: the countdown while taking, the
// time until the window opens while waiting.
type TickResponse struct {
	Event             Event  `json:"event"`
	Phase             string `json:"phase"`
	Remaining         int    `json:"remaining,omitempty"`
	SecondsUntilStart int    `json:"seconds_until_start,omitempty"`
}

// PhaseResponse announces a phase transition outside the tick cadence.
type PhaseResponse struct {
	Event Event  `json:"event"`
	Phase string `json:"phase"`
}

// StartedResponse confirms entry and carries restored state for resumes.
type StartedResponse struct {
	Event     Event           `json:"event"`
	Remaining int             `json:"remaining"`
	Answers   model.AnswerMap `json:"answers"`
}

// SavedResponse acknowledges one answer edit.
type SavedResponse struct {
	Event Event `json:"event"`
	QID   int   `json:"q_id"`
}

// GradedResponse carries the authoritative stored result after submission.
type GradedResponse struct {
	Event        Event  `json:"event"`
	Score        int    `json:"score"`
	TimeTaken    string `json:"time_taken"`
	Forced       bool   `json:"forced"`
	AlreadyTaken bool   `json:"already_taken"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
