package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/access"
	"github.com/credilocker/credilocker-api/internal/models"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/hash"
)

type mockStudentAuthRepo struct {
	student *models.Student
	err     error
}

func (m *mockStudentAuthRepo) FindByUIDAndEmail(ctx context.Context, uid, email string) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.student, nil
}

type mockTeacherAuthRepo struct {
	teacher *models.Teacher
	err     error
}

func (m *mockTeacherAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.teacher, nil
}

func newAuthService(students authStudentRepository, teachers authTeacherRepository) *AuthService {
	return NewAuthService(students, teachers, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "secret",
		Expiration: time.Hour,
		Issuer:     "credilocker",
	})
}

func TestStudentLoginIssuesClaims(t *testing.T) {
	semester := 3
	repo := &mockStudentAuthRepo{student: &models.Student{
		UID:      "24BIT001",
		Name:     "Asha Verma",
		Class:    "syit",
		Semester: &semester,
		Email:    "asha@college.edu",
	}}
	svc := newAuthService(repo, &mockTeacherAuthRepo{})

	res, err := svc.StudentLogin(context.Background(), models.StudentLoginRequest{UID: "24BIT001", Email: "asha@college.edu"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, res.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "24BIT001", claims.UserID)
	assert.Equal(t, "SYIT", claims.Class)
	require.NotNil(t, claims.Semester)
	assert.Equal(t, 3, *claims.Semester)
}

func TestStudentLoginUnknownAccount(t *testing.T) {
	svc := newAuthService(&mockStudentAuthRepo{err: sql.ErrNoRows}, &mockTeacherAuthRepo{})

	_, err := svc.StudentLogin(context.Background(), models.StudentLoginRequest{UID: "nope", Email: "nope@college.edu"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestTeacherLoginVerifiesDerivedPassword(t *testing.T) {
	hashed, err := hash.Password("s3cret-pass")
	require.NoError(t, err)
	repo := &mockTeacherAuthRepo{teacher: &models.Teacher{
		EmployeeCode: "T001",
		Name:         "Prof. Rao",
		Email:        "rao@college.edu",
		Password:     hashed,
	}}
	svc := newAuthService(&mockStudentAuthRepo{}, repo)

	res, err := svc.TeacherLogin(context.Background(), models.TeacherLoginRequest{Email: "rao@college.edu", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, res.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "T001", claims.UserID)
	assert.Empty(t, claims.Class)
}

func TestTeacherLoginWrongPassword(t *testing.T) {
	hashed, err := hash.Password("correct")
	require.NoError(t, err)
	repo := &mockTeacherAuthRepo{teacher: &models.Teacher{Email: "rao@college.edu", Password: hashed}}
	svc := newAuthService(&mockStudentAuthRepo{}, repo)

	_, err = svc.TeacherLogin(context.Background(), models.TeacherLoginRequest{Email: "rao@college.edu", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	// Wrong password and unknown email must be indistinguishable.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)

	repoMissing := &mockTeacherAuthRepo{err: sql.ErrNoRows}
	svcMissing := newAuthService(&mockStudentAuthRepo{}, repoMissing)
	_, err = svcMissing.TeacherLogin(context.Background(), models.TeacherLoginRequest{Email: "ghost@college.edu", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestTeacherLoginLegacyPlaintext(t *testing.T) {
	repo := &mockTeacherAuthRepo{teacher: &models.Teacher{Email: "old@college.edu", Password: "plaintext-pass"}}
	svc := newAuthService(&mockStudentAuthRepo{}, repo)

	_, err := svc.TeacherLogin(context.Background(), models.TeacherLoginRequest{Email: "old@college.edu", Password: "plaintext-pass"})
	require.NoError(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthService(&mockStudentAuthRepo{student: &models.Student{UID: "24BIT001", Class: "FYIT", Email: "a@b.edu"}}, &mockTeacherAuthRepo{})

	res, err := svc.StudentLogin(context.Background(), models.StudentLoginRequest{UID: "24BIT001", Email: "a@b.edu"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)
}

func TestAccessiblePages(t *testing.T) {
	svc := newAuthService(&mockStudentAuthRepo{}, &mockTeacherAuthRepo{})
	semester := 3

	pages := svc.AccessiblePages(&models.JWTClaims{Role: models.RoleStudent, Class: "SYIT", Semester: &semester})
	assert.Contains(t, pages, access.PageFieldProject)

	pages = svc.AccessiblePages(&models.JWTClaims{Role: models.RoleTeacher})
	assert.Len(t, pages, 6)
}
