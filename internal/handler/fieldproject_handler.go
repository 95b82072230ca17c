package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/service"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// FieldProjectHandler exposes Field Project document endpoints.
type FieldProjectHandler struct {
	fp      *service.FieldProjectService
	metrics *service.MetricsService
}

// NewFieldProjectHandler constructs FieldProjectHandler.
func NewFieldProjectHandler(fp *service.FieldProjectService, metrics *service.MetricsService) *FieldProjectHandler {
	return &FieldProjectHandler{fp: fp, metrics: metrics}
}

// Upload godoc
// @Summary Upload a Field Project document
// @Description Stores one document slot; uploading the same type again replaces the file
// @Tags FieldProject
// @Accept mpfd
// @Produce json
// @Param type path string true "Document type" Enums(completion_letter, outcome_form, feedback_form, video_presentation)
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Router /field-project/documents/{type} [post]
func (h *FieldProjectHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	upload, closeFile, err := formUpload(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	if closeFile != nil {
		defer closeFile()
	}

	sub, err := h.fp.Upload(c.Request.Context(), claims.UserID, claims.Class, c.Param("type"), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordUpload("field-project")
	response.Created(c, sub)
}

// MySubmissions godoc
// @Summary Get own document checklist
// @Tags FieldProject
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /field-project/me [get]
func (h *FieldProjectHandler) MySubmissions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	view, err := h.fp.MySubmissions(c.Request.Context(), claims.UserID, claims.Class)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// DeleteDocument godoc
// @Summary Remove an uploaded document
// @Tags FieldProject
// @Produce json
// @Param type path string true "Document type"
// @Success 204
// @Router /field-project/documents/{type} [delete]
func (h *FieldProjectHandler) DeleteDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.fp.DeleteDocument(c.Request.Context(), claims.UserID, claims.Class, c.Param("type")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClassReview godoc
// @Summary Review a class's Field Project uploads
// @Tags FieldProject
// @Produce json
// @Param class path string true "Class code"
// @Success 200 {object} response.Envelope
// @Router /field-project/review/{class} [get]
func (h *FieldProjectHandler) ClassReview(c *gin.Context) {
	reviews, err := h.fp.ClassReview(c.Request.Context(), c.Param("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}

// Evaluate godoc
// @Summary Evaluate a student's Field Project
// @Tags FieldProject
// @Accept json
// @Produce json
// @Param payload body service.FieldProjectEvaluationInput true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /field-project/evaluate [post]
func (h *FieldProjectHandler) Evaluate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var input service.FieldProjectEvaluationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	approval, err := h.fp.Evaluate(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, approval, nil)
}
