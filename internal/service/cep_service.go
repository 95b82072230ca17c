package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/roster"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/storage"
)

type cepRepository interface {
	ListRequirements(ctx context.Context) ([]models.CEPRequirement, error)
	FindRequirementByClass(ctx context.Context, class string) (*models.CEPRequirement, error)
	CreateRequirement(ctx context.Context, req *models.CEPRequirement) error
	UpdateRequirement(ctx context.Context, req *models.CEPRequirement) error
	DeleteRequirement(ctx context.Context, id string) error
	CreateSubmission(ctx context.Context, sub *models.CEPSubmission) error
	ListSubmissionsByStudent(ctx context.Context, studentUID string) ([]models.CEPSubmission, error)
	ListSubmissionsByClass(ctx context.Context, class string) ([]models.CEPSubmission, error)
	FindSubmission(ctx context.Context, id string) (*models.CEPSubmission, error)
	DeleteSubmission(ctx context.Context, id, studentUID string) (bool, error)
	SumHoursByStudent(ctx context.Context, studentUID string) (float64, error)
	UpsertApproval(ctx context.Context, approval *models.CEPApproval) error
	FindApproval(ctx context.Context, studentUID, class string) (*models.CEPApproval, error)
	ListApprovalsByClass(ctx context.Context, class string) ([]models.CEPApproval, error)
}

type submissionStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
	PublicURL(filename string) string
	Bucket() string
}

// CEPRequirementInput configures one class's Community Engagement Program.
type CEPRequirementInput struct {
	AssignedClass string        `json:"assigned_class" validate:"required"`
	MinimumHours  float64       `json:"minimum_hours" validate:"required,gt=0"`
	Deadline      time.Time     `json:"deadline" validate:"required"`
	CreditsConfig []credit.Tier `json:"credits_config" validate:"required,min=1,dive"`
}

// CEPSubmissionInput is the student's activity log entry. The uploaded
// certificate and picture arrive as separate multipart parts.
type CEPSubmissionInput struct {
	ActivityName string  `json:"activity_name" validate:"required"`
	Hours        float64 `json:"hours" validate:"required,gt=0"`
	ActivityDate string  `json:"activity_date" validate:"required"`
	Location     string  `json:"location"`
	Geolocation  string  `json:"geolocation"`
}

// Upload carries one multipart file into the service layer.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// CEPEvaluationInput is the teacher's decision for one student.
type CEPEvaluationInput struct {
	StudentUID string `json:"student_uid" validate:"required"`
	Class      string `json:"class" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=pending approved rejected"`
	Notes      string `json:"notes"`
}

// CEPStudentOverview is the student's own progress view.
type CEPStudentOverview struct {
	Requirement *models.CEPRequirement `json:"requirement"`
	Submissions []models.CEPSubmission `json:"submissions"`
	TotalHours  float64                `json:"total_hours"`
	Status      string                 `json:"status"`
	Credits     int                    `json:"credits"`
}

// CEPStudentReview is one roster line of the teacher's review table.
type CEPStudentReview struct {
	UID         string                 `json:"uid"`
	Name        string                 `json:"name"`
	Class       string                 `json:"class"`
	TotalHours  float64                `json:"total_hours"`
	Submissions []models.CEPSubmission `json:"submissions"`
	Status      string                 `json:"status"`
	Credits     int                    `json:"credits"`
}

// CEPService manages Community Engagement Program requirements, submissions
// and evaluations.
type CEPService struct {
	repo      cepRepository
	students  studentRepository
	store     submissionStore
	resolver  *storage.PreviewResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCEPService constructs a CEPService instance.
func NewCEPService(repo cepRepository, students studentRepository, store submissionStore, resolver *storage.PreviewResolver, validate *validator.Validate, logger *zap.Logger) *CEPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CEPService{repo: repo, students: students, store: store, resolver: resolver, validator: validate, logger: logger}
}

// ListRequirements returns every configured requirement.
func (s *CEPService) ListRequirements(ctx context.Context) ([]models.CEPRequirement, error) {
	reqs, err := s.repo.ListRequirements(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}
	return reqs, nil
}

// RequirementForClass returns the active requirement for one class.
func (s *CEPService) RequirementForClass(ctx context.Context, class string) (*models.CEPRequirement, error) {
	req, err := s.repo.FindRequirementByClass(ctx, class)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no requirement configured for class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch requirement")
	}
	return req, nil
}

// CreateRequirement publishes a class requirement with its credit ladder.
func (s *CEPService) CreateRequirement(ctx context.Context, teacherCode string, input CEPRequirementInput) (*models.CEPRequirement, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}
	if err := validateTiers(input.CreditsConfig); err != nil {
		return nil, err
	}

	req := &models.CEPRequirement{
		AssignedClass:       models.NormalizeClass(input.AssignedClass),
		MinimumHours:        input.MinimumHours,
		Deadline:            input.Deadline,
		CreditsConfig:       models.CreditTiers(input.CreditsConfig),
		TeacherEmployeeCode: teacherCode,
	}
	if err := s.repo.CreateRequirement(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create requirement")
	}

	s.logger.Info("cep requirement created", zap.String("class", req.AssignedClass), zap.Float64("minimum_hours", req.MinimumHours))
	return req, nil
}

// UpdateRequirement modifies an existing requirement.
func (s *CEPService) UpdateRequirement(ctx context.Context, id string, input CEPRequirementInput) (*models.CEPRequirement, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid requirement payload")
	}
	if err := validateTiers(input.CreditsConfig); err != nil {
		return nil, err
	}

	req := &models.CEPRequirement{
		ID:            id,
		AssignedClass: models.NormalizeClass(input.AssignedClass),
		MinimumHours:  input.MinimumHours,
		Deadline:      input.Deadline,
		CreditsConfig: models.CreditTiers(input.CreditsConfig),
	}
	if err := s.repo.UpdateRequirement(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update requirement")
	}
	return req, nil
}

// DeleteRequirement removes a requirement configuration.
func (s *CEPService) DeleteRequirement(ctx context.Context, id string) error {
	if err := s.repo.DeleteRequirement(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete requirement")
	}
	return nil
}

// Submit logs one activity for the authenticated student. Submissions are
// rejected once the class deadline has passed.
func (s *CEPService) Submit(ctx context.Context, studentUID, class string, input CEPSubmissionInput, certificate, picture *Upload) (*models.CEPSubmission, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if certificate == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "certificate file is required")
	}

	req, err := s.repo.FindRequirementByClass(ctx, class)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch requirement")
	}
	if req != nil && time.Now().UTC().After(req.Deadline.UTC()) {
		return nil, appErrors.Clone(appErrors.ErrDeadlinePassed, "")
	}

	certURL, err := storeUpload(s.store, "cep", studentUID, certificate)
	if err != nil {
		return nil, err
	}
	pictureURL := ""
	if picture != nil {
		pictureURL, err = storeUpload(s.store, "cep", studentUID, picture)
		if err != nil {
			return nil, err
		}
	}

	sub := &models.CEPSubmission{
		StudentUID:     studentUID,
		Class:          models.NormalizeClass(class),
		ActivityName:   input.ActivityName,
		Hours:          input.Hours,
		ActivityDate:   input.ActivityDate,
		Location:       input.Location,
		CertificateURL: certURL,
		PictureURL:     pictureURL,
		Geolocation:    input.Geolocation,
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	s.logger.Info("cep submission recorded", zap.String("uid", studentUID), zap.Float64("hours", input.Hours))
	return sub, nil
}

// Overview assembles the student's own progress: submissions, accumulated
// hours and the current evaluation if any.
func (s *CEPService) Overview(ctx context.Context, studentUID, class string) (*CEPStudentOverview, error) {
	subs, err := s.repo.ListSubmissionsByStudent(ctx, studentUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	overview := &CEPStudentOverview{
		Submissions: s.resolvePreviews(subs),
		Status:      credit.StatusPending,
	}
	for _, sub := range subs {
		overview.TotalHours += sub.Hours
	}

	req, err := s.repo.FindRequirementByClass(ctx, class)
	if err == nil {
		overview.Requirement = req
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch requirement")
	}

	approval, err := s.repo.FindApproval(ctx, studentUID, class)
	if err == nil {
		overview.Status = approval.ApprovalStatus
		overview.Credits = approval.CreditsAllotted
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch approval")
	}

	return overview, nil
}

// DeleteSubmission removes a student's own submission and its stored files.
func (s *CEPService) DeleteSubmission(ctx context.Context, studentUID, submissionID string) error {
	sub, err := s.repo.FindSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch submission")
	}
	if sub.StudentUID != studentUID {
		return appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another student")
	}

	deleted, err := s.repo.DeleteSubmission(ctx, submissionID, studentUID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}

	s.removeStoredFile(sub.CertificateURL)
	s.removeStoredFile(sub.PictureURL)
	return nil
}

// ClassReview builds the teacher's review table: one line per submitting
// student in canonical roster order.
func (s *CEPService) ClassReview(ctx context.Context, class string) ([]CEPStudentReview, error) {
	subs, err := s.repo.ListSubmissionsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class submissions")
	}
	approvals, err := s.repo.ListApprovalsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class approvals")
	}
	statusByUID := make(map[string]models.CEPApproval, len(approvals))
	for _, a := range approvals {
		statusByUID[a.StudentUID] = a
	}

	groups, order := roster.GroupCEPByStudent(subs)
	reviews := make([]CEPStudentReview, 0, len(order))
	for _, uid := range order {
		review := CEPStudentReview{
			UID:         uid,
			Class:       models.NormalizeClass(class),
			Submissions: s.resolvePreviews(groups[uid]),
			Status:      credit.StatusPending,
		}
		for _, sub := range groups[uid] {
			review.TotalHours += sub.Hours
		}
		if student, err := s.students.FindByUID(ctx, uid); err == nil {
			review.Name = student.Name
		}
		if approval, ok := statusByUID[uid]; ok {
			review.Status = approval.ApprovalStatus
			review.Credits = approval.CreditsAllotted
		}
		reviews = append(reviews, review)
	}

	sortReviews(reviews)
	return reviews, nil
}

// Evaluate records the teacher's decision. Credits derive from the class
// tier ladder and the student's accumulated hours; only approvals allot them.
func (s *CEPService) Evaluate(ctx context.Context, teacherCode string, input CEPEvaluationInput) (*models.CEPApproval, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}

	var tiers []credit.Tier
	req, err := s.repo.FindRequirementByClass(ctx, input.Class)
	if err == nil {
		tiers = req.CreditsConfig
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch requirement")
	}

	totalHours, err := s.repo.SumHoursByStudent(ctx, input.StudentUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to total submission hours")
	}

	computed := credit.Compute(totalHours, tiers)
	approval := &models.CEPApproval{
		StudentUID:      input.StudentUID,
		Class:           models.NormalizeClass(input.Class),
		ApprovalStatus:  input.Status,
		CreditsAllotted: credit.Allot(input.Status, computed),
		EvaluatedBy:     teacherCode,
		EvaluationNotes: input.Notes,
	}
	if err := s.repo.UpsertApproval(ctx, approval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}

	s.logger.Info("cep evaluated",
		zap.String("uid", input.StudentUID),
		zap.String("status", input.Status),
		zap.Int("credits", approval.CreditsAllotted))
	return approval, nil
}

func storeUpload(store submissionStore, track, studentUID string, upload *Upload) (string, error) {
	name := fmt.Sprintf("%s/%s/%s%s", track, studentUID, uuid.NewString(), filepath.Ext(upload.Filename))
	stored, err := store.SaveStream(name, upload.Reader)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
	}
	return store.PublicURL(stored), nil
}

func (s *CEPService) removeStoredFile(publicURL string) {
	if publicURL == "" {
		return
	}
	path, ok := storage.ExtractObjectPath(storage.CleanPublicURL(publicURL), s.store.Bucket())
	if !ok {
		return
	}
	if err := s.store.Delete(path); err != nil {
		s.logger.Warn("failed to delete stored file", zap.String("path", path), zap.Error(err))
	}
}

func (s *CEPService) resolvePreviews(subs []models.CEPSubmission) []models.CEPSubmission {
	if s.resolver == nil {
		return subs
	}
	out := make([]models.CEPSubmission, len(subs))
	copy(out, subs)
	for i := range out {
		if out[i].CertificateURL != "" {
			out[i].CertificateURL = s.resolver.Resolve(out[i].CertificateURL)
		}
		if out[i].PictureURL != "" {
			out[i].PictureURL = s.resolver.Resolve(out[i].PictureURL)
		}
	}
	return out
}

func sortReviews(reviews []CEPStudentReview) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return roster.Less(reviews[i].Class, reviews[i].UID, reviews[j].Class, reviews[j].UID)
	})
}

func validateTiers(tiers []credit.Tier) error {
	for _, tier := range tiers {
		if tier.Hours <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, "tier hours must be positive")
		}
		if tier.Credits < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "tier credits cannot be negative")
		}
	}
	return nil
}
