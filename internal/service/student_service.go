package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/roster"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByUID(ctx context.Context, uid string) (*models.Student, error)
	ExistsByUID(ctx context.Context, uid string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, uid string) error
	BulkUpdateSemester(ctx context.Context, class string, semester int) (int64, error)
}

// StudentInput is the create/update payload for a student record.
type StudentInput struct {
	UID      string  `json:"uid" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Class    string  `json:"class" validate:"required"`
	Semester *int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
}

// StudentService manages the student roster.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students in the canonical roster order: class ascending, then
// numeric roll serial.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	roster.SortStudents(students)
	return students, nil
}

// Get fetches one student by UID.
func (s *StudentService) Get(ctx context.Context, uid string) (*models.Student, error) {
	student, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, input StudentInput) (*models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.repo.ExistsByUID(ctx, input.UID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student uid")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student uid already registered")
	}

	student := &models.Student{
		UID:      input.UID,
		Name:     input.Name,
		Class:    models.NormalizeClass(input.Class),
		Semester: input.Semester,
		Email:    input.Email,
		Phone:    input.Phone,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student created", zap.String("uid", student.UID), zap.String("class", student.Class))
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, uid string, input StudentInput) (*models.Student, error) {
	input.UID = uid
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	student.Name = input.Name
	student.Class = models.NormalizeClass(input.Class)
	student.Semester = input.Semester
	student.Email = input.Email
	student.Phone = input.Phone
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, uid string) error {
	if _, err := s.Get(ctx, uid); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("uid", uid))
	return nil
}

// PromoteClass moves every student of a class to a new semester in one pass.
func (s *StudentService) PromoteClass(ctx context.Context, class string, semester int) (int64, error) {
	if models.NormalizeClass(class) == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "class is required")
	}
	if semester < 1 || semester > 8 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "semester must be between 1 and 8")
	}

	affected, err := s.repo.BulkUpdateSemester(ctx, class, semester)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class semester")
	}
	s.logger.Info("class promoted", zap.String("class", class), zap.Int("semester", semester), zap.Int64("students", affected))
	return affected, nil
}
