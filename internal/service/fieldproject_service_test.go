package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
)

type mockFPRepo struct {
	submissions map[string]*models.FieldProjectSubmission
	approvals   map[string]*models.FieldProjectApproval
}

func fpKey(uid, class, docType string) string {
	return uid + "|" + models.NormalizeClass(class) + "|" + docType
}

func (m *mockFPRepo) UpsertSubmission(ctx context.Context, sub *models.FieldProjectSubmission) (*models.FieldProjectSubmission, error) {
	if m.submissions == nil {
		m.submissions = make(map[string]*models.FieldProjectSubmission)
	}
	key := fpKey(sub.StudentUID, sub.Class, sub.DocumentType)
	previous := m.submissions[key]
	stored := *sub
	m.submissions[key] = &stored
	return previous, nil
}

func (m *mockFPRepo) ListSubmissionsByStudent(ctx context.Context, studentUID string) ([]models.FieldProjectSubmission, error) {
	var out []models.FieldProjectSubmission
	for _, sub := range m.submissions {
		if sub.StudentUID == studentUID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (m *mockFPRepo) ListSubmissionsByClass(ctx context.Context, class string) ([]models.FieldProjectSubmission, error) {
	var out []models.FieldProjectSubmission
	for _, sub := range m.submissions {
		out = append(out, *sub)
	}
	return out, nil
}

func (m *mockFPRepo) DeleteSubmission(ctx context.Context, studentUID, class, documentType string) (*models.FieldProjectSubmission, error) {
	key := fpKey(studentUID, class, documentType)
	sub, ok := m.submissions[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(m.submissions, key)
	return sub, nil
}

func (m *mockFPRepo) UpsertApproval(ctx context.Context, approval *models.FieldProjectApproval) error {
	if m.approvals == nil {
		m.approvals = make(map[string]*models.FieldProjectApproval)
	}
	m.approvals[approval.StudentUID] = approval
	return nil
}

func (m *mockFPRepo) FindApproval(ctx context.Context, studentUID, class string) (*models.FieldProjectApproval, error) {
	if a, ok := m.approvals[studentUID]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFPRepo) ListApprovalsByClass(ctx context.Context, class string) ([]models.FieldProjectApproval, error) {
	var out []models.FieldProjectApproval
	for _, a := range m.approvals {
		out = append(out, *a)
	}
	return out, nil
}

func newFPService(repo *mockFPRepo, students *mockStudentRepo, store *mockStore) *FieldProjectService {
	return NewFieldProjectService(repo, students, store, nil, validator.New(), zap.NewNop())
}

func TestFieldProjectUploadReplacesPrevious(t *testing.T) {
	repo := &mockFPRepo{}
	store := &mockStore{}
	svc := newFPService(repo, &mockStudentRepo{}, store)

	first, err := svc.Upload(context.Background(), "24BIT001", "SYIT", models.DocOutcomeForm, &Upload{Filename: "v1.pdf", Reader: strings.NewReader("a")})
	require.NoError(t, err)

	_, err = svc.Upload(context.Background(), "24BIT001", "SYIT", models.DocOutcomeForm, &Upload{Filename: "v2.pdf", Reader: strings.NewReader("b")})
	require.NoError(t, err)

	// One slot remains and the superseded file was removed from storage.
	require.Len(t, repo.submissions, 1)
	require.Len(t, store.deleted, 1)
	assert.Contains(t, first.FileURL, "field-project/outcome_form/24BIT001/")
}

func TestFieldProjectUploadUnknownType(t *testing.T) {
	svc := newFPService(&mockFPRepo{}, &mockStudentRepo{}, &mockStore{})

	_, err := svc.Upload(context.Background(), "24BIT001", "SYIT", "selfie", &Upload{Filename: "x.jpg", Reader: strings.NewReader("a")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFieldProjectCompleteness(t *testing.T) {
	repo := &mockFPRepo{}
	svc := newFPService(repo, &mockStudentRepo{}, &mockStore{})

	for _, docType := range []string{models.DocCompletionLetter, models.DocOutcomeForm, models.DocFeedbackForm} {
		_, err := svc.Upload(context.Background(), "24BIT001", "SYIT", docType, &Upload{Filename: docType + ".pdf", Reader: strings.NewReader("x")})
		require.NoError(t, err)
	}

	view, err := svc.MySubmissions(context.Background(), "24BIT001", "SYIT")
	require.NoError(t, err)
	assert.False(t, view.Complete)

	_, err = svc.Upload(context.Background(), "24BIT001", "SYIT", models.DocVideoPresentation, &Upload{Filename: "video.mp4", Reader: strings.NewReader("x")})
	require.NoError(t, err)

	view, err = svc.MySubmissions(context.Background(), "24BIT001", "SYIT")
	require.NoError(t, err)
	assert.True(t, view.Complete)
	assert.Equal(t, credit.StatusPending, view.Status)
}

func TestFieldProjectEvaluate(t *testing.T) {
	repo := &mockFPRepo{}
	svc := newFPService(repo, &mockStudentRepo{}, &mockStore{})

	approval, err := svc.Evaluate(context.Background(), "T001", FieldProjectEvaluationInput{
		StudentUID: "24BIT001",
		Class:      "SYIT",
		Status:     credit.StatusApproved,
		Marks:      85,
		Credits:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 85, approval.MarksAllotted)
	assert.Equal(t, 2, approval.CreditsAllotted)
}

func TestFieldProjectEvaluateKeepsManualEntriesOnAnyStatus(t *testing.T) {
	repo := &mockFPRepo{}
	svc := newFPService(repo, &mockStudentRepo{}, &mockStore{})

	// Marks and credits are the evaluator's own numbers; a pending or
	// rejected status must not wipe them.
	for _, status := range []string{credit.StatusPending, credit.StatusRejected} {
		approval, err := svc.Evaluate(context.Background(), "T001", FieldProjectEvaluationInput{
			StudentUID: "24BIT001",
			Class:      "SYIT",
			Status:     status,
			Marks:      40,
			Credits:    5,
		})
		require.NoError(t, err)
		assert.Equal(t, status, approval.ApprovalStatus)
		assert.Equal(t, 40, approval.MarksAllotted)
		assert.Equal(t, 5, approval.CreditsAllotted)
	}

	stored, err := repo.FindApproval(context.Background(), "24BIT001", "SYIT")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.CreditsAllotted)
	assert.Equal(t, 40, stored.MarksAllotted)
}

func TestFieldProjectDeleteDocument(t *testing.T) {
	repo := &mockFPRepo{}
	store := &mockStore{}
	svc := newFPService(repo, &mockStudentRepo{}, store)

	_, err := svc.Upload(context.Background(), "24BIT001", "SYIT", models.DocFeedbackForm, &Upload{Filename: "f.pdf", Reader: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDocument(context.Background(), "24BIT001", "SYIT", models.DocFeedbackForm))
	assert.Empty(t, repo.submissions)
	assert.Len(t, store.deleted, 1)

	err = svc.DeleteDocument(context.Background(), "24BIT001", "SYIT", models.DocFeedbackForm)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
