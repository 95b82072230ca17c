package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/models"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/hash"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByCode(ctx context.Context, code string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeCode string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, code string) error
}

// TeacherInput is the create/update payload for a teacher account. Password
// may be empty on update to keep the existing credential.
type TeacherInput struct {
	EmployeeCode string `json:"employee_code" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"omitempty,min=8"`
}

// TeacherService manages teacher accounts.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService instance.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns every teacher account. Stored password hashes never serialize.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Get fetches one teacher by employee code.
func (s *TeacherService) Get(ctx context.Context, code string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
	}
	return teacher, nil
}

// Create registers a new teacher account with a derived password hash.
func (s *TeacherService) Create(ctx context.Context, input TeacherInput) (*models.Teacher, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if input.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password is required")
	}

	taken, err := s.repo.ExistsByEmail(ctx, input.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hashed, err := hash.Password(input.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	teacher := &models.Teacher{
		EmployeeCode: input.EmployeeCode,
		Name:         input.Name,
		Email:        input.Email,
		Password:     hashed,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	s.logger.Info("teacher created", zap.String("employee_code", teacher.EmployeeCode))
	return teacher, nil
}

// Update modifies an existing teacher; a non-empty password is re-hashed.
func (s *TeacherService) Update(ctx context.Context, code string, input TeacherInput) (*models.Teacher, error) {
	input.EmployeeCode = code
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByEmail(ctx, input.Email, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	teacher.Name = input.Name
	teacher.Email = input.Email
	teacher.Password = ""
	if input.Password != "" {
		hashed, err := hash.Password(input.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		teacher.Password = hashed
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher account.
func (s *TeacherService) Delete(ctx context.Context, code string) error {
	if _, err := s.Get(ctx, code); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.logger.Info("teacher deleted", zap.String("employee_code", code))
	return nil
}
