package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/credilocker/credilocker-api/internal/models"
)

func intPtr(n int) *int { return &n }

func TestTeacherSeesAllPages(t *testing.T) {
	pages := Pages(models.RoleTeacher, "", nil)
	assert.Len(t, pages, 6)
	assert.Contains(t, pages, PageManageClasses)
	assert.Contains(t, pages, PageAttendance)
}

func TestFirstYearStudents(t *testing.T) {
	for _, class := range []string{"FYIT", "FYSD"} {
		pages := Pages(models.RoleStudent, class, intPtr(1))
		assert.Equal(t, []Page{PageLanding, PageCoCurricular}, pages, class)
	}
	// Semester is irrelevant for first years.
	assert.Equal(t, []Page{PageLanding, PageCoCurricular}, Pages(models.RoleStudent, "FYIT", nil))
}

func TestSecondYearSemesterThree(t *testing.T) {
	pages := Pages(models.RoleStudent, "SYIT", intPtr(3))
	assert.Equal(t, []Page{PageLanding, PageFieldProject, PageCoCurricular, PageCommunityEngagement}, pages)
}

func TestSecondYearSemesterFour(t *testing.T) {
	pages := Pages(models.RoleStudent, "SYSD", intPtr(4))
	assert.Equal(t, []Page{PageLanding, PageCommunityEngagement, PageCoCurricular}, pages)
}

func TestFallbackCombinations(t *testing.T) {
	assert.Equal(t, []Page{PageLanding, PageCoCurricular}, Pages(models.RoleStudent, "SYIT", nil))
	assert.Equal(t, []Page{PageLanding, PageCoCurricular}, Pages(models.RoleStudent, "SYIT", intPtr(5)))
	assert.Equal(t, []Page{PageLanding, PageCoCurricular}, Pages(models.RoleStudent, "UNKNOWN", intPtr(3)))
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(models.RoleTeacher, "", nil, PageManageClasses))
	assert.False(t, CanAccess(models.RoleStudent, "FYIT", nil, PageFieldProject))
	assert.True(t, CanAccess(models.RoleStudent, "syit", intPtr(3), PageFieldProject))
}
