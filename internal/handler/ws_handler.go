package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/somang-edu/eduportal-backend/internal/exam"
	"github.com/somang-edu/eduportal-backend/internal/middleware"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/service"
	ws "github.com/somang-edu/eduportal-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation. An
// empty origins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler hosts one attempt state machine per student connection and
// drives it with a one-second server clock. Each tick pushes the countdown;
// the tick that hits zero force-submits whatever is captured.
type WSHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       gorillaws.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService:    examService,
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// attemptStream is the per-connection state: the machine plus the lock that
// serializes the read loop and the ticker goroutine.
type attemptStream struct {
	mu      sync.Mutex
	machine *exam.Attempt
	conn    *ws.Conn

	examID uuid.UUID
	userID int
	name   string
}

// AttemptStream godoc
// WS /ws/v1/student/exams/:exam_id/attempt
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(raw)
	defer conn.Close()

	ctx := context.Background()
	userID := claims.UserID

	status, err := h.attemptService.Status(ctx, examID, userID)
	if err != nil {
		conn.WriteError("status check failed")
		return
	}
	if status.Taken {
		conn.WriteError("exam already submitted")
		return
	}

	window, err := h.examService.GetWindow(ctx, examID)
	if err != nil {
		conn.WriteError("exam not found")
		return
	}
	questions, err := h.examService.GetQuestionsWithKey(ctx, examID)
	if err != nil {
		conn.WriteError("exam not found")
		return
	}

	stream := &attemptStream{
		machine: exam.NewAttempt(&model.Exam{
			Title:            window.Title,
			TimeLimitMinutes: window.TimeLimitMinutes,
			WindowStart:      window.WindowStart,
			WindowEnd:        window.WindowEnd,
			Questions:        questions,
		}, time.Now()),
		conn:   conn,
		examID: examID,
		userID: userID,
		name:   claims.Name,
	}

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	done := make(chan struct{})
	defer close(done)
	go h.runTicker(stream, wsLog, done)

	stream.conn.WriteTyped(ws.PhaseResponse{Event: ws.EventPhase, Phase: string(stream.machine.Phase())})

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionStart:
			h.handleStart(ctx, stream, wsLog)
		case ws.ActionAnswer:
			h.handleAnswer(ctx, stream, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, stream, wsLog, false)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// runTicker drives the machine once per second until the connection goes
// away or the attempt reaches a terminal phase.
func (h *WSHandler) runTicker(stream *attemptStream, wsLog zerolog.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			stream.mu.Lock()
			prev := stream.machine.Phase()
			phase, forced := stream.machine.Tick(now)
			tick := ws.TickResponse{Event: ws.EventTick, Phase: string(phase)}
			switch phase {
			case exam.PhaseTaking:
				tick.Remaining = stream.machine.Remaining()
			case exam.PhaseWaiting:
				g := exam.Classify(stream.machine.Exam(), now)
				tick.SecondsUntilStart = g.SecondsUntilStart
			}
			stream.mu.Unlock()

			stream.conn.WriteTyped(tick)
			if phase != prev {
				stream.conn.WriteTyped(ws.PhaseResponse{Event: ws.EventPhase, Phase: string(phase)})
			}
			if forced != nil {
				h.persistOutcome(context.Background(), stream, wsLog, true)
			}
			if phase == exam.PhaseSubmitted || phase == exam.PhaseEnded {
				return
			}
		}
	}
}

// handleStart enters (or resumes) the attempt and starts the countdown.
func (h *WSHandler) handleStart(ctx context.Context, stream *attemptStream, wsLog zerolog.Logger) {
	state, err := h.attemptService.Enter(ctx, stream.examID, stream.userID)
	if err != nil {
		stream.conn.WriteError(err.Error())
		return
	}

	stream.mu.Lock()
	err = stream.machine.Resume(time.Now(), state.RemainingSeconds)
	if err == nil && len(state.Answers) > 0 {
		err = stream.machine.RestoreAnswers(state.Answers)
	}
	remaining := stream.machine.Remaining()
	answers := stream.machine.Answers()
	stream.mu.Unlock()

	if err != nil {
		stream.conn.WriteError(err.Error())
		return
	}

	wsLog.Info().Int("remaining", remaining).Msg("Attempt running")
	stream.conn.WriteTyped(ws.StartedResponse{
		Event:     ws.EventStarted,
		Remaining: remaining,
		Answers:   answers,
	})
}

// handleAnswer captures one edit and autosaves the full map.
func (h *WSHandler) handleAnswer(ctx context.Context, stream *attemptStream, msg *ws.RequestEnvelope) {
	stream.mu.Lock()
	err := stream.machine.SetAnswer(msg.QID, msg.Answer)
	answers := stream.machine.Answers()
	stream.mu.Unlock()

	if err != nil {
		stream.conn.WriteError(err.Error())
		return
	}

	if err := h.attemptService.Autosave(ctx, stream.examID, stream.userID, answers); err != nil {
		stream.conn.WriteError("autosave failed")
		return
	}
	stream.conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

// handleSubmit triggers the manual submission path. A manual submit that
// loses the race against the forced timeout still goes through
// persistOutcome, so the losing trigger receives the graded result instead
// of an error frame.
func (h *WSHandler) handleSubmit(ctx context.Context, stream *attemptStream, wsLog zerolog.Logger, forced bool) {
	stream.mu.Lock()
	_, err := stream.machine.Submit(time.Now(), forced)
	stream.mu.Unlock()

	if err != nil && !errors.Is(err, exam.ErrAlreadySubmitted) {
		stream.conn.WriteError(err.Error())
		return
	}
	h.persistOutcome(ctx, stream, wsLog, forced)
}

// persistOutcome runs the machine's captured answers through the
// authoritative submission path and pushes the stored result.
func (h *WSHandler) persistOutcome(ctx context.Context, stream *attemptStream, wsLog zerolog.Logger, forced bool) {
	stream.mu.Lock()
	answers := stream.machine.Answers()
	stream.mu.Unlock()

	result, alreadyTaken, err := h.attemptService.Submit(ctx, stream.examID, stream.userID, stream.name, answers, forced)
	if err != nil {
		wsLog.Error().Err(err).Msg("Persist submission failed")
		stream.conn.WriteError("submission failed")
		return
	}

	stream.conn.WriteTyped(ws.GradedResponse{
		Event:        ws.EventGraded,
		Score:        result.Score,
		TimeTaken:    result.TimeTaken,
		Forced:       forced,
		AlreadyTaken: alreadyTaken,
	})
}
