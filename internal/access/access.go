// Package access maps an authenticated account to the set of application
// pages it may view. The rules are static: teachers see everything, student
// access depends on class and semester.
package access

import "github.com/credilocker/credilocker-api/internal/models"

// Page identifies a navigable application page.
type Page string

const (
	PageLanding             Page = "landing"
	PageFieldProject        Page = "field-project"
	PageCommunityEngagement Page = "community-engagement"
	PageCoCurricular        Page = "co-curricular"
	PageAttendance          Page = "attendance"
	PageManageClasses       Page = "manage-classes"
)

// Pages returns the accessible page set for a role/class/semester triple.
// Deterministic and side-effect free.
func Pages(role models.UserRole, class string, semester *int) []Page {
	if role == models.RoleTeacher {
		return []Page{
			PageLanding,
			PageFieldProject,
			PageCommunityEngagement,
			PageCoCurricular,
			PageAttendance,
			PageManageClasses,
		}
	}

	switch models.NormalizeClass(class) {
	case models.ClassFYIT, models.ClassFYSD:
		// First years only see co-curricular; attendance is embedded there.
		return []Page{PageLanding, PageCoCurricular}
	case models.ClassSYIT, models.ClassSYSD:
		if semester != nil {
			switch *semester {
			case 3:
				return []Page{PageLanding, PageFieldProject, PageCoCurricular, PageCommunityEngagement}
			case 4:
				return []Page{PageLanding, PageCommunityEngagement, PageCoCurricular}
			}
		}
	}

	// Unknown class or unset semester.
	return []Page{PageLanding, PageCoCurricular}
}

// CanAccess is a membership test against Pages.
func CanAccess(role models.UserRole, class string, semester *int, page Page) bool {
	for _, p := range Pages(role, class, semester) {
		if p == page {
			return true
		}
	}
	return false
}
