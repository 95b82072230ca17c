package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/service"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// StudentHandler exposes roster management endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param class query string false "Filter by class"
// @Param search query string false "Search by name or UID"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Class:  c.Query("class"),
		Search: strings.TrimSpace(c.Query("search")),
	}

	students, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param uid path string true "Student UID"
// @Success 200 {object} response.Envelope
// @Router /students/{uid} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Register student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.StudentInput true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var input service.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param uid path string true "Student UID"
// @Param payload body service.StudentInput true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{uid} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var input service.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("uid"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Remove student
// @Tags Students
// @Produce json
// @Param uid path string true "Student UID"
// @Success 204
// @Router /students/{uid} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("uid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Promote godoc
// @Summary Promote a class to a new semester
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body handler.PromoteRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Router /students/promote [post]
func (h *StudentHandler) Promote(c *gin.Context) {
	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.students.PromoteClass(c.Request.Context(), req.Class, req.Semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"class": models.NormalizeClass(req.Class), "semester": req.Semester, "students_updated": affected}, nil)
}

// PromoteRequest moves every student of a class to a new semester.
type PromoteRequest struct {
	Class    string `json:"class"`
	Semester int    `json:"semester"`
}
