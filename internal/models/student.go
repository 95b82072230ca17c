package models

import "time"

// Class codes recognised by the institution.
const (
	ClassFYIT = "FYIT"
	ClassFYSD = "FYSD"
	ClassSYIT = "SYIT"
	ClassSYSD = "SYSD"
)

// KnownClasses lists every class code in canonical order.
var KnownClasses = []string{ClassFYIT, ClassFYSD, ClassSYIT, ClassSYSD}

// Student represents a learner registered in the institution. The UID is the
// institutional roll identifier and doubles as the login handle.
type Student struct {
	UID       string    `db:"uid" json:"uid"`
	Name      string    `db:"name" json:"name"`
	Class     string    `db:"class" json:"class"`
	Semester  *int      `db:"semester" json:"semester,omitempty"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Class  string
	Search string
}
