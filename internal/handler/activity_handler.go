package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/service"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// ActivityHandler exposes co-curricular activity and attendance endpoints.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// List godoc
// @Summary List activities
// @Description Teachers see every activity; students see those assigned to their class
// @Tags Activities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		activities []models.Activity
		err        error
	)
	if claims.Role == models.RoleTeacher {
		activities, err = h.activities.List(c.Request.Context())
	} else {
		activities, err = h.activities.ListForClass(c.Request.Context(), claims.Class)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

// Get godoc
// @Summary Get activity detail
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, err := activityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	activity, err := h.activities.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Create godoc
// @Summary Publish activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body service.ActivityInput true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var input service.ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.activities.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Update godoc
// @Summary Update activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body service.ActivityInput true "Activity payload"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	id, err := activityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input service.ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.activities.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Delete godoc
// @Summary Remove activity
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 204
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, err := activityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.activities.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAttendance godoc
// @Summary Mark attendance for an activity
// @Description Records a batch of present/absent marks; re-marking replaces earlier marks
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body handler.MarkAttendanceRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/attendance [post]
func (h *ActivityHandler) MarkAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := activityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.activities.MarkAttendance(c.Request.Context(), id, claims.UserID, req.Marks); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"marked": len(req.Marks)}, nil)
}

// Attendance godoc
// @Summary List attendance for an activity
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/attendance [get]
func (h *ActivityHandler) Attendance(c *gin.Context) {
	id, err := activityID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.activities.ActivityAttendance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// MyAttendance godoc
// @Summary Get own attendance history
// @Description Returns the student's marks with per-activity CC points and the earned total
// @Tags Activities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/me [get]
func (h *ActivityHandler) MyAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries, total, err := h.activities.StudentAttendance(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"entries": entries, "total_points": total}, nil)
}

// MarkAttendanceRequest is a bulk attendance marking payload.
type MarkAttendanceRequest struct {
	Marks []service.AttendanceMarkInput `json:"marks"`
}

func activityID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid activity id")
	}
	return id, nil
}
