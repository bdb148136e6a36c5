package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/somang-edu/eduportal-backend/internal/exam"
	"github.com/somang-edu/eduportal-backend/internal/middleware"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/response"
	"github.com/somang-edu/eduportal-backend/internal/service"
	"github.com/somang-edu/eduportal-backend/internal/validator"
)

// AttemptHandler handles the student-facing exam endpoints.
type AttemptHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(examService *service.ExamService, attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		examService:    examService,
		attemptService: attemptService,
	}
}

// List godoc
// GET /api/v1/student/exams
// Every exam with its gate position and this student's attempt status.
func (h *AttemptHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	exams, err := h.attemptService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Paper godoc
// GET /api/v1/student/exams/:exam_id/paper
// The answer-key-free paper. Withheld until the window opens.
func (h *AttemptHandler) Paper(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	paper, err := h.examService.GetPaper(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	gate := exam.Classify(&model.Exam{
		TimeLimitMinutes: paper.TimeLimitMinutes,
		WindowStart:      paper.WindowStart,
		WindowEnd:        paper.WindowEnd,
	}, time.Now())
	if gate.State == exam.GateWaiting {
		response.Fail(c, http.StatusForbidden, response.ErrExamNotOpen)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper, "gate": gate})
}

// Status godoc
// GET /api/v1/student/exams/:exam_id/status
func (h *AttemptHandler) Status(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	status, err := h.attemptService.Status(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": status})
}

// Enter godoc
// POST /api/v1/student/exams/:exam_id/enter
// Starts (or resumes) the attempt clock.
func (h *AttemptHandler) Enter(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.Enter(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyTaken):
			h.failAlreadyTaken(c, examID, claims.UserID)
		case errors.Is(err, service.ErrExamNotOpenYet):
			response.Fail(c, http.StatusForbidden, response.ErrExamNotOpen)
		case errors.Is(err, service.ErrExamWindowEnded):
			response.Fail(c, http.StatusForbidden, response.ErrExamEnded)
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}

// State godoc
// GET /api/v1/student/exams/:exam_id/state
// The running attempt clock and autosaved answers, for page reloads.
func (h *AttemptHandler) State(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.attemptService.State(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveAttempt) {
			response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": state})
}

// Submit godoc
// POST /api/v1/student/exams/:exam_id/submit
// Grades and persists the attempt. A repeat submission gets the stored
// result back with ALREADY_SUBMITTED, never a second grading.
func (h *AttemptHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, alreadyTaken, err := h.attemptService.Submit(c.Request.Context(), examID, claims.UserID, claims.Name, req.Answers, false)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveAttempt) {
			response.Fail(c, http.StatusConflict, response.ErrNoActiveAttempt)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if alreadyTaken {
		response.FailWithData(c, http.StatusConflict, response.ErrAlreadySubmitted, gin.H{"result": result})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

func (h *AttemptHandler) failAlreadyTaken(c *gin.Context, examID uuid.UUID, userID int) {
	status, err := h.attemptService.Status(c.Request.Context(), examID, userID)
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
		return
	}
	response.FailWithData(c, http.StatusConflict, response.ErrAlreadySubmitted, gin.H{"status": status})
}
