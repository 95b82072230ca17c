package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/service"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// CEPHandler exposes Community Engagement Program endpoints.
type CEPHandler struct {
	cep     *service.CEPService
	metrics *service.MetricsService
}

// NewCEPHandler constructs CEPHandler.
func NewCEPHandler(cep *service.CEPService, metrics *service.MetricsService) *CEPHandler {
	return &CEPHandler{cep: cep, metrics: metrics}
}

// ListRequirements godoc
// @Summary List CEP requirements
// @Tags CEP
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cep/requirements [get]
func (h *CEPHandler) ListRequirements(c *gin.Context) {
	reqs, err := h.cep.ListRequirements(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// MyRequirement godoc
// @Summary Get the requirement for the student's class
// @Tags CEP
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cep/requirements/me [get]
func (h *CEPHandler) MyRequirement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req, err := h.cep.RequirementForClass(c.Request.Context(), claims.Class)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// CreateRequirement godoc
// @Summary Publish a class requirement
// @Tags CEP
// @Accept json
// @Produce json
// @Param payload body service.CEPRequirementInput true "Requirement payload"
// @Success 201 {object} response.Envelope
// @Router /cep/requirements [post]
func (h *CEPHandler) CreateRequirement(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var input service.CEPRequirementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req, err := h.cep.CreateRequirement(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// UpdateRequirement godoc
// @Summary Update a class requirement
// @Tags CEP
// @Accept json
// @Produce json
// @Param id path string true "Requirement ID"
// @Param payload body service.CEPRequirementInput true "Requirement payload"
// @Success 200 {object} response.Envelope
// @Router /cep/requirements/{id} [put]
func (h *CEPHandler) UpdateRequirement(c *gin.Context) {
	var input service.CEPRequirementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req, err := h.cep.UpdateRequirement(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// DeleteRequirement godoc
// @Summary Remove a class requirement
// @Tags CEP
// @Produce json
// @Param id path string true "Requirement ID"
// @Success 204
// @Router /cep/requirements/{id} [delete]
func (h *CEPHandler) DeleteRequirement(c *gin.Context) {
	if err := h.cep.DeleteRequirement(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Log a CEP activity
// @Description Multipart form with activity details, a required certificate and an optional picture
// @Tags CEP
// @Accept mpfd
// @Produce json
// @Param activity_name formData string true "Activity name"
// @Param hours formData number true "Hours spent"
// @Param activity_date formData string true "Activity date"
// @Param location formData string false "Location"
// @Param geolocation formData string false "Geolocation"
// @Param certificate formData file true "Certificate file"
// @Param picture formData file false "Activity picture"
// @Success 201 {object} response.Envelope
// @Router /cep/submissions [post]
func (h *CEPHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	hours, err := strconv.ParseFloat(c.PostForm("hours"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hours must be a number"))
		return
	}
	input := service.CEPSubmissionInput{
		ActivityName: c.PostForm("activity_name"),
		Hours:        hours,
		ActivityDate: c.PostForm("activity_date"),
		Location:     c.PostForm("location"),
		Geolocation:  c.PostForm("geolocation"),
	}

	certificate, closeCert, err := formUpload(c, "certificate")
	if err != nil {
		response.Error(c, err)
		return
	}
	if closeCert != nil {
		defer closeCert()
	}
	picture, closePic, err := formUpload(c, "picture")
	if err != nil {
		response.Error(c, err)
		return
	}
	if closePic != nil {
		defer closePic()
	}

	sub, err := h.cep.Submit(c.Request.Context(), claims.UserID, claims.Class, input, certificate, picture)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordUpload("cep")
	response.Created(c, sub)
}

// Overview godoc
// @Summary Get own CEP progress
// @Tags CEP
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cep/me [get]
func (h *CEPHandler) Overview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	overview, err := h.cep.Overview(c.Request.Context(), claims.UserID, claims.Class)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// DeleteSubmission godoc
// @Summary Remove own submission
// @Tags CEP
// @Produce json
// @Param id path string true "Submission ID"
// @Success 204
// @Router /cep/submissions/{id} [delete]
func (h *CEPHandler) DeleteSubmission(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.cep.DeleteSubmission(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClassReview godoc
// @Summary Review a class's CEP submissions
// @Tags CEP
// @Produce json
// @Param class path string true "Class code"
// @Success 200 {object} response.Envelope
// @Router /cep/review/{class} [get]
func (h *CEPHandler) ClassReview(c *gin.Context) {
	reviews, err := h.cep.ClassReview(c.Request.Context(), c.Param("class"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reviews, nil)
}

// Evaluate godoc
// @Summary Evaluate a student's CEP record
// @Tags CEP
// @Accept json
// @Produce json
// @Param payload body service.CEPEvaluationInput true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /cep/evaluate [post]
func (h *CEPHandler) Evaluate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var input service.CEPEvaluationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	approval, err := h.cep.Evaluate(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, approval, nil)
}

// formUpload opens a named multipart file part. A missing part returns a nil
// upload rather than an error; the service decides whether it was required.
func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "uploaded file too large")
		}
		return nil, nil, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable uploaded file")
	}
	return &service.Upload{Filename: header.Filename, Reader: file}, func() { _ = file.Close() }, nil
}
