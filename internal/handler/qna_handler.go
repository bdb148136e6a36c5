package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/somang-edu/eduportal-backend/internal/middleware"
	"github.com/somang-edu/eduportal-backend/internal/model"
	"github.com/somang-edu/eduportal-backend/internal/response"
	"github.com/somang-edu/eduportal-backend/internal/service"
	"github.com/somang-edu/eduportal-backend/internal/validator"
)

// QnaHandler handles the Q&A board endpoints.
type QnaHandler struct {
	qnaService *service.QnaService
}

// NewQnaHandler creates a new QnaHandler.
func NewQnaHandler(qnaService *service.QnaService) *QnaHandler {
	return &QnaHandler{qnaService: qnaService}
}

// List godoc
// GET /api/v1/student/qna
func (h *QnaHandler) List(c *gin.Context) {
	posts, err := h.qnaService.GetAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"posts": posts})
}

// Get godoc
// GET /api/v1/student/qna/:id
func (h *QnaHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	post, err := h.qnaService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Create godoc
// POST /api/v1/student/qna
// Author identity comes from the verified claims.
func (h *QnaHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateQnaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	post, err := h.qnaService.Create(c.Request.Context(), claims.UserID, claims.Name, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// DeleteOwn godoc
// DELETE /api/v1/student/qna/:id
// Students may only delete their own posts.
func (h *QnaHandler) DeleteOwn(c *gin.Context) {
	claims := middleware.GetClaims(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.qnaService.Delete(c.Request.Context(), id, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotPostAuthor):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Answer godoc
// PATCH /api/v1/admin/qna/:id/answer
func (h *QnaHandler) Answer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AnswerQnaRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	post, err := h.qnaService.Answer(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": post})
}

// Delete godoc
// DELETE /api/v1/admin/qna/:id
// Admin moderation: removes any post.
func (h *QnaHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.qnaService.Delete(c.Request.Context(), id, 0); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
