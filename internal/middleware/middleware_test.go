package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/access"
	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/service"
)

type stubStudentRepo struct {
	student *models.Student
}

func (s *stubStudentRepo) FindByUIDAndEmail(ctx context.Context, uid, email string) (*models.Student, error) {
	if s.student != nil && s.student.UID == uid {
		return s.student, nil
	}
	return nil, sql.ErrNoRows
}

type stubTeacherRepo struct {
	teacher *models.Teacher
}

func (s *stubTeacherRepo) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	if s.teacher != nil && s.teacher.Email == email {
		return s.teacher, nil
	}
	return nil, sql.ErrNoRows
}

func newTestAuthService() *service.AuthService {
	sem := 3
	students := &stubStudentRepo{student: &models.Student{
		UID:      "24BIT001",
		Name:     "Asha",
		Class:    "FYIT",
		Semester: &sem,
		Email:    "asha@college.edu",
	}}
	// Plaintext row exercises the legacy verify fallback.
	teachers := &stubTeacherRepo{teacher: &models.Teacher{
		EmployeeCode: "T001",
		Name:         "Prof. Rao",
		Email:        "rao@college.edu",
		Password:     "teachers-pass",
	}}
	return service.NewAuthService(students, teachers, nil, zap.NewNop(), service.AuthConfig{
		Secret:     "middleware-test-secret",
		Expiration: time.Hour,
		Issuer:     "credilocker",
	})
}

func studentToken(t *testing.T, svc *service.AuthService) string {
	t.Helper()
	res, err := svc.StudentLogin(context.Background(), models.StudentLoginRequest{UID: "24BIT001", Email: "asha@college.edu"})
	require.NoError(t, err)
	return res.AccessToken
}

func teacherToken(t *testing.T, svc *service.AuthService) string {
	t.Helper()
	res, err := svc.TeacherLogin(context.Background(), models.TeacherLoginRequest{Email: "rao@college.edu", Password: "teachers-pass"})
	require.NoError(t, err)
	return res.AccessToken
}

func buildRouter(svc *service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("", JWT(svc))
	authed.GET("/teacher-only", RequireRoles(models.RoleTeacher), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	authed.GET("/field-project", RequirePage(access.PageFieldProject), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	authed.GET("/co-curricular", RequirePage(access.PageCoCurricular), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func perform(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestJWTRejectsMissingAndMalformedTokens(t *testing.T) {
	svc := newTestAuthService()
	r := buildRouter(svc)

	resp := perform(r, http.MethodGet, "/co-curricular", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = perform(r, http.MethodGet, "/co-curricular", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireRolesBlocksStudents(t *testing.T) {
	svc := newTestAuthService()
	r := buildRouter(svc)

	resp := perform(r, http.MethodGet, "/teacher-only", studentToken(t, svc))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = perform(r, http.MethodGet, "/teacher-only", teacherToken(t, svc))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRequirePagePerClassPolicy(t *testing.T) {
	svc := newTestAuthService()
	r := buildRouter(svc)
	token := studentToken(t, svc)

	// First years only get the co-curricular page.
	resp := perform(r, http.MethodGet, "/field-project", token)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Contains(t, resp.Body.String(), "PAGE_ACCESS_DENIED")

	resp = perform(r, http.MethodGet, "/co-curricular", token)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Teachers pass every page gate.
	resp = perform(r, http.MethodGet, "/field-project", teacherToken(t, svc))
	assert.Equal(t, http.StatusOK, resp.Code)
}
