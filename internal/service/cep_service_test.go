package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
)

type mockCEPRepo struct {
	requirement *models.CEPRequirement
	submissions []models.CEPSubmission
	approvals   map[string]*models.CEPApproval
	upserted    *models.CEPApproval
}

func (m *mockCEPRepo) ListRequirements(ctx context.Context) ([]models.CEPRequirement, error) {
	if m.requirement == nil {
		return nil, nil
	}
	return []models.CEPRequirement{*m.requirement}, nil
}

func (m *mockCEPRepo) FindRequirementByClass(ctx context.Context, class string) (*models.CEPRequirement, error) {
	if m.requirement == nil {
		return nil, sql.ErrNoRows
	}
	return m.requirement, nil
}

func (m *mockCEPRepo) CreateRequirement(ctx context.Context, req *models.CEPRequirement) error {
	m.requirement = req
	return nil
}

func (m *mockCEPRepo) UpdateRequirement(ctx context.Context, req *models.CEPRequirement) error {
	m.requirement = req
	return nil
}

func (m *mockCEPRepo) DeleteRequirement(ctx context.Context, id string) error {
	m.requirement = nil
	return nil
}

func (m *mockCEPRepo) CreateSubmission(ctx context.Context, sub *models.CEPSubmission) error {
	sub.ID = "sub-new"
	m.submissions = append(m.submissions, *sub)
	return nil
}

func (m *mockCEPRepo) ListSubmissionsByStudent(ctx context.Context, studentUID string) ([]models.CEPSubmission, error) {
	var out []models.CEPSubmission
	for _, sub := range m.submissions {
		if sub.StudentUID == studentUID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *mockCEPRepo) ListSubmissionsByClass(ctx context.Context, class string) ([]models.CEPSubmission, error) {
	return m.submissions, nil
}

func (m *mockCEPRepo) FindSubmission(ctx context.Context, id string) (*models.CEPSubmission, error) {
	for i := range m.submissions {
		if m.submissions[i].ID == id {
			return &m.submissions[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCEPRepo) SumHoursByStudent(ctx context.Context, studentUID string) (float64, error) {
	total := 0.0
	for _, sub := range m.submissions {
		if sub.StudentUID == studentUID {
			total += sub.Hours
		}
	}
	return total, nil
}

func (m *mockCEPRepo) DeleteSubmission(ctx context.Context, id, studentUID string) (bool, error) {
	for i := range m.submissions {
		if m.submissions[i].ID == id && m.submissions[i].StudentUID == studentUID {
			m.submissions = append(m.submissions[:i], m.submissions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCEPRepo) UpsertApproval(ctx context.Context, approval *models.CEPApproval) error {
	if m.approvals == nil {
		m.approvals = make(map[string]*models.CEPApproval)
	}
	m.approvals[approval.StudentUID] = approval
	m.upserted = approval
	return nil
}

func (m *mockCEPRepo) FindApproval(ctx context.Context, studentUID, class string) (*models.CEPApproval, error) {
	if a, ok := m.approvals[studentUID]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCEPRepo) ListApprovalsByClass(ctx context.Context, class string) ([]models.CEPApproval, error) {
	var out []models.CEPApproval
	for _, a := range m.approvals {
		out = append(out, *a)
	}
	return out, nil
}

type mockStudentRepo struct {
	students map[string]*models.Student
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByUID(ctx context.Context, uid string) (*models.Student, error) {
	if s, ok := m.students[uid]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByUID(ctx context.Context, uid string) (bool, error) {
	_, ok := m.students[uid]
	return ok, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]*models.Student)
	}
	m.students[student.UID] = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.UID] = student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, uid string) error {
	delete(m.students, uid)
	return nil
}

func (m *mockStudentRepo) BulkUpdateSemester(ctx context.Context, class string, semester int) (int64, error) {
	return int64(len(m.students)), nil
}

type mockStore struct {
	saved   []string
	deleted []string
}

func (m *mockStore) SaveStream(filename string, r io.Reader) (string, error) {
	m.saved = append(m.saved, filename)
	return filename, nil
}

func (m *mockStore) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

func (m *mockStore) PublicURL(filename string) string {
	return "http://localhost:8080/storage/v1/object/public/student-submissions/" + filename
}

func (m *mockStore) Bucket() string { return "student-submissions" }

func newCEPService(repo *mockCEPRepo, students *mockStudentRepo, store *mockStore) *CEPService {
	return NewCEPService(repo, students, store, nil, validator.New(), zap.NewNop())
}

func futureRequirement(tiers ...credit.Tier) *models.CEPRequirement {
	return &models.CEPRequirement{
		ID:            "req-1",
		AssignedClass: "SYIT",
		MinimumHours:  20,
		Deadline:      time.Now().Add(30 * 24 * time.Hour),
		CreditsConfig: tiers,
	}
}

func TestCEPSubmitStoresFiles(t *testing.T) {
	repo := &mockCEPRepo{requirement: futureRequirement()}
	store := &mockStore{}
	svc := newCEPService(repo, &mockStudentRepo{}, store)

	sub, err := svc.Submit(context.Background(), "24BIT001", "SYIT", CEPSubmissionInput{
		ActivityName: "Beach cleanup",
		Hours:        4,
		ActivityDate: "2026-08-15",
		Location:     "Juhu",
	}, &Upload{Filename: "cert.pdf", Reader: strings.NewReader("pdf")}, &Upload{Filename: "pic.jpg", Reader: strings.NewReader("jpg")})
	require.NoError(t, err)

	assert.Len(t, store.saved, 2)
	assert.Contains(t, sub.CertificateURL, "/storage/v1/object/public/student-submissions/cep/24BIT001/")
	assert.Contains(t, sub.PictureURL, ".jpg")
	assert.Equal(t, "SYIT", sub.Class)
}

func TestCEPSubmitAfterDeadline(t *testing.T) {
	repo := &mockCEPRepo{requirement: futureRequirement()}
	repo.requirement.Deadline = time.Now().Add(-time.Hour)
	svc := newCEPService(repo, &mockStudentRepo{}, &mockStore{})

	_, err := svc.Submit(context.Background(), "24BIT001", "SYIT", CEPSubmissionInput{
		ActivityName: "Late entry",
		Hours:        2,
		ActivityDate: "2026-08-15",
	}, &Upload{Filename: "cert.pdf", Reader: strings.NewReader("pdf")}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDeadlinePassed.Code, appErrors.FromError(err).Code)
}

func TestCEPSubmitWithoutRequirementAllowed(t *testing.T) {
	svc := newCEPService(&mockCEPRepo{}, &mockStudentRepo{}, &mockStore{})

	_, err := svc.Submit(context.Background(), "24BIT001", "SYIT", CEPSubmissionInput{
		ActivityName: "Tree planting",
		Hours:        3,
		ActivityDate: "2026-08-15",
	}, &Upload{Filename: "cert.pdf", Reader: strings.NewReader("pdf")}, nil)
	require.NoError(t, err)
}

func TestCEPEvaluateComputesCredits(t *testing.T) {
	repo := &mockCEPRepo{requirement: futureRequirement(
		credit.Tier{Hours: 5, Credits: 1},
		credit.Tier{Hours: 10, Credits: 2},
		credit.Tier{Hours: 20, Credits: 4},
	)}
	repo.submissions = []models.CEPSubmission{
		{ID: "a", StudentUID: "24BIT001", Class: "SYIT", Hours: 7},
		{ID: "b", StudentUID: "24BIT001", Class: "SYIT", Hours: 5},
	}
	svc := newCEPService(repo, &mockStudentRepo{}, &mockStore{})

	approval, err := svc.Evaluate(context.Background(), "T001", CEPEvaluationInput{
		StudentUID: "24BIT001",
		Class:      "SYIT",
		Status:     credit.StatusApproved,
	})
	require.NoError(t, err)
	// 12 hours clears the 10-hour tier but not the 20-hour one.
	assert.Equal(t, 2, approval.CreditsAllotted)
	assert.Equal(t, "T001", approval.EvaluatedBy)
}

func TestCEPEvaluateRejectionZeroesCredits(t *testing.T) {
	repo := &mockCEPRepo{requirement: futureRequirement(credit.Tier{Hours: 5, Credits: 1})}
	repo.submissions = []models.CEPSubmission{{ID: "a", StudentUID: "24BIT001", Class: "SYIT", Hours: 40}}
	svc := newCEPService(repo, &mockStudentRepo{}, &mockStore{})

	approval, err := svc.Evaluate(context.Background(), "T001", CEPEvaluationInput{
		StudentUID: "24BIT001",
		Class:      "SYIT",
		Status:     credit.StatusRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, approval.CreditsAllotted)

	// Re-evaluating overwrites the earlier decision in place.
	approval, err = svc.Evaluate(context.Background(), "T002", CEPEvaluationInput{
		StudentUID: "24BIT001",
		Class:      "SYIT",
		Status:     credit.StatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, approval.CreditsAllotted)
	assert.Equal(t, "T002", repo.approvals["24BIT001"].EvaluatedBy)
}

func TestCEPOverviewTotalsHours(t *testing.T) {
	repo := &mockCEPRepo{requirement: futureRequirement()}
	repo.submissions = []models.CEPSubmission{
		{ID: "a", StudentUID: "24BIT001", Hours: 2.5},
		{ID: "b", StudentUID: "24BIT001", Hours: 3},
		{ID: "c", StudentUID: "24BIT002", Hours: 10},
	}
	svc := newCEPService(repo, &mockStudentRepo{}, &mockStore{})

	overview, err := svc.Overview(context.Background(), "24BIT001", "SYIT")
	require.NoError(t, err)
	assert.Equal(t, 5.5, overview.TotalHours)
	assert.Len(t, overview.Submissions, 2)
	assert.Equal(t, credit.StatusPending, overview.Status)
}

func TestCEPClassReviewRosterOrder(t *testing.T) {
	repo := &mockCEPRepo{}
	repo.submissions = []models.CEPSubmission{
		{ID: "a", StudentUID: "24BIT015", Class: "SYIT", Hours: 5},
		{ID: "b", StudentUID: "24BIT003", Class: "SYIT", Hours: 2},
		{ID: "c", StudentUID: "24BIT100", Class: "SYIT", Hours: 1},
	}
	students := &mockStudentRepo{students: map[string]*models.Student{
		"24BIT003": {UID: "24BIT003", Name: "Asha"},
	}}
	svc := newCEPService(repo, students, &mockStore{})

	reviews, err := svc.ClassReview(context.Background(), "SYIT")
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, "24BIT003", reviews[0].UID)
	assert.Equal(t, "Asha", reviews[0].Name)
	assert.Equal(t, "24BIT015", reviews[1].UID)
	assert.Equal(t, "24BIT100", reviews[2].UID)
}

func TestCEPDeleteSubmissionOwnership(t *testing.T) {
	repo := &mockCEPRepo{}
	repo.submissions = []models.CEPSubmission{{
		ID:             "sub-1",
		StudentUID:     "24BIT001",
		CertificateURL: "http://localhost:8080/storage/v1/object/public/student-submissions/cep/24BIT001/cert.pdf",
	}}
	store := &mockStore{}
	svc := newCEPService(repo, &mockStudentRepo{}, store)

	err := svc.DeleteSubmission(context.Background(), "24BIT999", "sub-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.DeleteSubmission(context.Background(), "24BIT001", "sub-1"))
	assert.Equal(t, []string{"cep/24BIT001/cert.pdf"}, store.deleted)
}
