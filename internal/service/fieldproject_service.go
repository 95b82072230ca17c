package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/roster"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/storage"
)

type fieldProjectRepository interface {
	UpsertSubmission(ctx context.Context, sub *models.FieldProjectSubmission) (*models.FieldProjectSubmission, error)
	ListSubmissionsByStudent(ctx context.Context, studentUID string) ([]models.FieldProjectSubmission, error)
	ListSubmissionsByClass(ctx context.Context, class string) ([]models.FieldProjectSubmission, error)
	DeleteSubmission(ctx context.Context, studentUID, class, documentType string) (*models.FieldProjectSubmission, error)
	UpsertApproval(ctx context.Context, approval *models.FieldProjectApproval) error
	FindApproval(ctx context.Context, studentUID, class string) (*models.FieldProjectApproval, error)
	ListApprovalsByClass(ctx context.Context, class string) ([]models.FieldProjectApproval, error)
}

// FieldProjectEvaluationInput is the teacher's decision; marks and credits
// are entered manually rather than derived from a tier ladder.
type FieldProjectEvaluationInput struct {
	StudentUID string `json:"student_uid" validate:"required"`
	Class      string `json:"class" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=pending approved rejected"`
	Marks      int    `json:"marks" validate:"min=0"`
	Credits    int    `json:"credits" validate:"min=0"`
	Notes      string `json:"notes"`
}

// FieldProjectStudentView is the student's own document checklist.
type FieldProjectStudentView struct {
	Submissions []models.FieldProjectSubmission `json:"submissions"`
	Complete    bool                            `json:"complete"`
	Status      string                          `json:"status"`
	Marks       int                             `json:"marks"`
	Credits     int                             `json:"credits"`
}

// FieldProjectStudentReview is one roster line of the teacher review table.
type FieldProjectStudentReview struct {
	UID         string                          `json:"uid"`
	Name        string                          `json:"name"`
	Class       string                          `json:"class"`
	Submissions []models.FieldProjectSubmission `json:"submissions"`
	Complete    bool                            `json:"complete"`
	Status      string                          `json:"status"`
	Marks       int                             `json:"marks"`
	Credits     int                             `json:"credits"`
}

// FieldProjectService manages Field Project document uploads and evaluation.
type FieldProjectService struct {
	repo      fieldProjectRepository
	students  studentRepository
	store     submissionStore
	resolver  *storage.PreviewResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFieldProjectService constructs a FieldProjectService instance.
func NewFieldProjectService(repo fieldProjectRepository, students studentRepository, store submissionStore, resolver *storage.PreviewResolver, validate *validator.Validate, logger *zap.Logger) *FieldProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FieldProjectService{repo: repo, students: students, store: store, resolver: resolver, validator: validate, logger: logger}
}

// Upload stores one document for the authenticated student. Uploading the
// same document type again replaces the previous file.
func (s *FieldProjectService) Upload(ctx context.Context, studentUID, class, documentType string, upload *Upload) (*models.FieldProjectSubmission, error) {
	if !models.ValidDocumentType(documentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document type")
	}
	if upload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document file is required")
	}

	fileURL, err := storeUpload(s.store, "field-project/"+documentType, studentUID, upload)
	if err != nil {
		return nil, err
	}

	sub := &models.FieldProjectSubmission{
		StudentUID:   studentUID,
		Class:        models.NormalizeClass(class),
		DocumentType: documentType,
		FileURL:      fileURL,
	}
	previous, err := s.repo.UpsertSubmission(ctx, sub)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}
	if previous != nil {
		s.removeStoredFile(previous.FileURL)
	}

	s.logger.Info("field project document uploaded",
		zap.String("uid", studentUID),
		zap.String("document_type", documentType),
		zap.Bool("replaced", previous != nil))
	return sub, nil
}

// MySubmissions assembles the student's checklist with completeness and the
// current evaluation if any.
func (s *FieldProjectService) MySubmissions(ctx context.Context, studentUID, class string) (*FieldProjectStudentView, error) {
	subs, err := s.repo.ListSubmissionsByStudent(ctx, studentUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}

	view := &FieldProjectStudentView{
		Submissions: s.resolvePreviews(subs),
		Complete:    roster.Complete(models.RequiredDocumentTypes, submittedTypes(subs)),
		Status:      credit.StatusPending,
	}

	approval, err := s.repo.FindApproval(ctx, studentUID, class)
	if err == nil {
		view.Status = approval.ApprovalStatus
		view.Marks = approval.MarksAllotted
		view.Credits = approval.CreditsAllotted
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch approval")
	}
	return view, nil
}

// DeleteDocument removes one document slot and its stored file.
func (s *FieldProjectService) DeleteDocument(ctx context.Context, studentUID, class, documentType string) error {
	if !models.ValidDocumentType(documentType) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown document type")
	}

	sub, err := s.repo.DeleteSubmission(ctx, studentUID, class, documentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}

	s.removeStoredFile(sub.FileURL)
	return nil
}

// ClassReview builds the teacher's review table in canonical roster order.
// Only students with at least one upload appear.
func (s *FieldProjectService) ClassReview(ctx context.Context, class string) ([]FieldProjectStudentReview, error) {
	subs, err := s.repo.ListSubmissionsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class submissions")
	}
	approvals, err := s.repo.ListApprovalsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class approvals")
	}
	statusByUID := make(map[string]models.FieldProjectApproval, len(approvals))
	for _, a := range approvals {
		statusByUID[a.StudentUID] = a
	}

	groups, order := roster.GroupFieldProjectByStudent(subs)
	reviews := make([]FieldProjectStudentReview, 0, len(order))
	for _, key := range order {
		group := groups[key]
		uid := group[0].StudentUID
		review := FieldProjectStudentReview{
			UID:         uid,
			Class:       models.NormalizeClass(group[0].Class),
			Submissions: s.resolvePreviews(group),
			Complete:    roster.Complete(models.RequiredDocumentTypes, submittedTypes(group)),
			Status:      credit.StatusPending,
		}
		if student, err := s.students.FindByUID(ctx, uid); err == nil {
			review.Name = student.Name
		}
		if approval, ok := statusByUID[uid]; ok {
			review.Status = approval.ApprovalStatus
			review.Marks = approval.MarksAllotted
			review.Credits = approval.CreditsAllotted
		}
		reviews = append(reviews, review)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return roster.Less(reviews[i].Class, reviews[i].UID, reviews[j].Class, reviews[j].UID)
	})
	return reviews, nil
}

// Evaluate records the teacher's decision. Marks and credits are stored as
// entered regardless of status; no formula applies to this track.
func (s *FieldProjectService) Evaluate(ctx context.Context, teacherCode string, input FieldProjectEvaluationInput) (*models.FieldProjectApproval, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}

	approval := &models.FieldProjectApproval{
		StudentUID:      input.StudentUID,
		Class:           models.NormalizeClass(input.Class),
		ApprovalStatus:  input.Status,
		MarksAllotted:   input.Marks,
		CreditsAllotted: input.Credits,
		EvaluatedBy:     teacherCode,
		EvaluationNotes: input.Notes,
	}
	if err := s.repo.UpsertApproval(ctx, approval); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}

	s.logger.Info("field project evaluated",
		zap.String("uid", input.StudentUID),
		zap.String("status", input.Status),
		zap.Int("credits", approval.CreditsAllotted))
	return approval, nil
}

func (s *FieldProjectService) removeStoredFile(publicURL string) {
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

func (s *FieldProjectService) resolvePreviews(subs []models.FieldProjectSubmission) []models.FieldProjectSubmission {
	if s.resolver == nil {
		return subs
	}
	out := make([]models.FieldProjectSubmission, len(subs))
	copy(out, subs)
	for i := range out {
		if out[i].FileURL != "" {
			out[i].FileURL = s.resolver.Resolve(out[i].FileURL)
		}
	}
	return out
}

func submittedTypes(subs []models.FieldProjectSubmission) map[string]bool {
	types := make(map[string]bool, len(subs))
	for _, sub := range subs {
		types[sub.DocumentType] = true
	}
	return types
}
