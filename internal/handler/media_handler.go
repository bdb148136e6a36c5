package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/somang-edu/eduportal-backend/internal/response"
	"github.com/somang-edu/eduportal-backend/internal/service"
)

// MediaHandler handles media upload endpoints.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadImage godoc
// POST /api/v1/admin/media/images
// Uploads an exam paper image and returns its URL.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	h.upload(c, h.mediaService.SaveImage)
}

// UploadDocument godoc
// POST /api/v1/admin/media/documents
// Uploads a study material file and returns its URL.
func (h *MediaHandler) UploadDocument(c *gin.Context) {
	h.upload(c, h.mediaService.SaveDocument)
}

func (h *MediaHandler) upload(c *gin.Context, save func(multipart.File, *multipart.FileHeader) (string, error)) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	url, err := save(file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}
