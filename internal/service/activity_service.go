package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/models"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	ListForClass(ctx context.Context, class string) ([]models.Activity, error)
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id int64) error
}

type attendanceRepository interface {
	UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error
	ListByActivity(ctx context.Context, activityID int64) ([]models.AttendanceRecord, error)
	ListByStudent(ctx context.Context, studentUID string) ([]models.AttendanceRecord, error)
}

// ActivityInput is the create/update payload for a co-curricular activity.
type ActivityInput struct {
	ActivityName  string   `json:"activity_name" validate:"required"`
	Date          string   `json:"date" validate:"required"`
	Time          string   `json:"time"`
	Venue         string   `json:"venue"`
	AssignedClass []string `json:"assigned_class" validate:"required,min=1"`
	Comments      string   `json:"comments"`
	CCPoints      int      `json:"cc_points" validate:"min=0"`
}

// AttendanceMarkInput is one student's mark inside a bulk marking request.
type AttendanceMarkInput struct {
	StudentUID string `json:"student_uid" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=present absent"`
}

// StudentAttendanceEntry pairs an activity with the student's mark and the
// CC points it earned (points accrue only when present).
type StudentAttendanceEntry struct {
	Activity models.Activity `json:"activity"`
	Status   string          `json:"status"`
	Points   int             `json:"points"`
}

// ActivityService manages co-curricular activities and their attendance.
type ActivityService struct {
	activities activityRepository
	attendance attendanceRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(activities activityRepository, attendance attendanceRepository, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ActivityService{activities: activities, attendance: attendance, validator: validate, logger: logger}
}

// List returns every activity for the teacher view.
func (s *ActivityService) List(ctx context.Context) ([]models.Activity, error) {
	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}

// ListForClass returns activities targeting the given class.
func (s *ActivityService) ListForClass(ctx context.Context, class string) ([]models.Activity, error) {
	activities, err := s.activities.ListForClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class activities")
	}
	return activities, nil
}

// Get fetches one activity.
func (s *ActivityService) Get(ctx context.Context, id int64) (*models.Activity, error) {
	activity, err := s.activities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch activity")
	}
	return activity, nil
}

// Create publishes a new activity.
func (s *ActivityService) Create(ctx context.Context, input ActivityInput) (*models.Activity, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity := &models.Activity{
		ActivityName:  input.ActivityName,
		Date:          input.Date,
		Time:          input.Time,
		Venue:         input.Venue,
		AssignedClass: normalizeClasses(input.AssignedClass),
		Comments:      input.Comments,
		CCPoints:      input.CCPoints,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}

	s.logger.Info("activity created", zap.Int64("id", activity.ID), zap.String("name", activity.ActivityName))
	return activity, nil
}

// Update modifies an existing activity.
func (s *ActivityService) Update(ctx context.Context, id int64, input ActivityInput) (*models.Activity, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	activity.ActivityName = input.ActivityName
	activity.Date = input.Date
	activity.Time = input.Time
	activity.Venue = input.Venue
	activity.AssignedClass = normalizeClasses(input.AssignedClass)
	activity.Comments = input.Comments
	activity.CCPoints = input.CCPoints
	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	return activity, nil
}

// Delete removes an activity and its attendance marks.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	s.logger.Info("activity deleted", zap.Int64("id", id))
	return nil
}

// MarkAttendance records a batch of marks for one activity. Re-marking a
// student replaces the earlier mark rather than duplicating it.
func (s *ActivityService) MarkAttendance(ctx context.Context, activityID int64, markedBy string, marks []AttendanceMarkInput) error {
	if len(marks) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one attendance mark is required")
	}
	for _, mark := range marks {
		if err := s.validator.Struct(mark); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance mark")
		}
	}

	if _, err := s.Get(ctx, activityID); err != nil {
		return err
	}

	records := make([]models.AttendanceRecord, 0, len(marks))
	for _, mark := range marks {
		records = append(records, models.AttendanceRecord{
			ActivityID:       activityID,
			StudentUID:       mark.StudentUID,
			AttendanceStatus: mark.Status,
			MarkedBy:         markedBy,
		})
	}
	if err := s.attendance.UpsertBatch(ctx, records); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.logger.Info("attendance marked", zap.Int64("activity_id", activityID), zap.Int("marks", len(marks)))
	return nil
}

// ActivityAttendance returns every mark recorded for one activity.
func (s *ActivityService) ActivityAttendance(ctx context.Context, activityID int64) ([]models.AttendanceRecord, error) {
	if _, err := s.Get(ctx, activityID); err != nil {
		return nil, err
	}
	records, err := s.attendance.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// StudentAttendance returns the student's marks joined with activity details
// and the CC points earned for each.
func (s *ActivityService) StudentAttendance(ctx context.Context, studentUID string) ([]StudentAttendanceEntry, int, error) {
	records, err := s.attendance.ListByStudent(ctx, studentUID)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student attendance")
	}

	entries := make([]StudentAttendanceEntry, 0, len(records))
	total := 0
	for _, record := range records {
		activity, err := s.activities.FindByID(ctx, record.ActivityID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch activity")
		}
		points := 0
		if record.AttendanceStatus == models.AttendancePresent {
			points = activity.CCPoints
		}
		total += points
		entries = append(entries, StudentAttendanceEntry{
			Activity: *activity,
			Status:   record.AttendanceStatus,
			Points:   points,
		})
	}
	return entries, total, nil
}

func normalizeClasses(classes []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(classes))
	for _, c := range classes {
		if normalized := models.NormalizeClass(c); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
