// Package exam holds the pure core of the examination subsystem: window
// scheduling, answer scoring, the per-student attempt state machine and
// results aggregation. Nothing in here touches the network or storage, which
// keeps the rules identical between the advisory (client-facing) path and the
// authoritative (persistence) path.
package exam

import (
	"time"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

// GateState classifies an exam window against a point in time.
type GateState string

const (
	// GateWaiting means the window has not opened yet.
	GateWaiting GateState = "waiting"
	// GateEnterable means a student may start an attempt right now.
	GateEnterable GateState = "enterable"
	// GateEnded means the window has closed.
	GateEnded GateState = "ended"
)

// Gate is the result of classifying an exam at a given instant.
type Gate struct {
	State GateState `json:"state"`
	// SecondsUntilStart is set while waiting.
	SecondsUntilStart int `json:"seconds_until_start,omitempty"`
	// SecondsRemaining is the countdown budget a student entering at this
	// instant would receive: min(timeLimit*60, windowEnd-now).
	SecondsRemaining int `json:"seconds_remaining,omitempty"`
}

// Classify is a pure function of (exam, now). It must be re-evaluated at
// every phase transition, not only once at page load: a student may be
// mid-wait when the window opens or closes.
func Classify(e *model.Exam, now time.Time) Gate {
	if !now.Before(e.WindowEnd) {
		return Gate{State: GateEnded}
	}
	if now.Before(e.WindowStart) {
		return Gate{
			State:             GateWaiting,
			SecondsUntilStart: int(e.WindowStart.Sub(now) / time.Second),
		}
	}

	budget := e.TimeLimitMinutes * 60
	if untilClose := int(e.WindowEnd.Sub(now) / time.Second); untilClose < budget {
		budget = untilClose
	}
	return Gate{State: GateEnterable, SecondsRemaining: budget}
}
