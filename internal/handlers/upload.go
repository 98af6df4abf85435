package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"innoportal/internal/models"
	"innoportal/internal/services"
)

type UploadHandler struct {
	files *services.FileService
	log   zerolog.Logger
}

func NewUploadHandler(files *services.FileService, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{files: files, log: log}
}

// Upload handles POST /api/upload (multipart field "file")
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "no file uploaded")
		return
	}
	file, err := h.files.Store(c.Request.Context(), currentUser(c), services.UploadInput{
		Header:       header,
		Description:  formValue(c, "description"),
		ArticleID:    formValue(c, "articleId"),
		NewsID:       formValue(c, "newsId"),
		InnovationID: formValue(c, "innovationId"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *UploadHandler) List(c *gin.Context) {
	files, err := h.files.List(c.Request.Context(), services.FileFilter{
		ArticleID:    c.Query("articleId"),
		NewsID:       c.Query("newsId"),
		InnovationID: c.Query("innovationId"),
		UploadedBy:   c.Query("uploadedBy"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if files == nil {
		files = []models.File{}
	}
	c.JSON(http.StatusOK, files)
}

func (h *UploadHandler) Delete(c *gin.Context) {
	deleted, err := h.files.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func formValue(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok && v != "" {
		return &v
	}
	return nil
}
