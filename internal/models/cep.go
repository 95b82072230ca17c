package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/credilocker/credilocker-api/internal/credit"
)

// CreditTiers stores the per-class hours-to-credits ladder as JSONB. Storage
// order is not guaranteed; the evaluator sorts before lookup.
type CreditTiers []credit.Tier

// Scan implements sql.Scanner for JSONB columns.
func (t *CreditTiers) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported credits_config type %T", src)
	}
	return json.Unmarshal(raw, t)
}

// Value implements driver.Valuer for JSONB columns.
func (t CreditTiers) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// CEPRequirement is the per-class Community Engagement Program configuration.
type CEPRequirement struct {
	ID                  string      `db:"id" json:"id"`
	AssignedClass       string      `db:"assigned_class" json:"assigned_class"`
	MinimumHours        float64     `db:"minimum_hours" json:"minimum_hours"`
	Deadline            time.Time   `db:"deadline" json:"deadline"`
	CreditsConfig       CreditTiers `db:"credits_config" json:"credits_config"`
	TeacherEmployeeCode string      `db:"teacher_employee_code" json:"teacher_employee_code"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
}

// CEPSubmission is one logged activity; a student accumulates many.
type CEPSubmission struct {
	ID             string    `db:"id" json:"id"`
	StudentUID     string    `db:"student_uid" json:"student_uid"`
	Class          string    `db:"class" json:"class"`
	ActivityName   string    `db:"activity_name" json:"activity_name"`
	Hours          float64   `db:"hours" json:"hours"`
	ActivityDate   string    `db:"activity_date" json:"activity_date"`
	Location       string    `db:"location" json:"location"`
	CertificateURL string    `db:"certificate_url" json:"certificate_url"`
	PictureURL     string    `db:"picture_url" json:"picture_url"`
	Geolocation    string    `db:"geolocation" json:"geolocation"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
}

// CEPApproval is the evaluator's decision for a student, at most one per
// (student, class). Re-evaluation overwrites in place; no history is kept.
type CEPApproval struct {
	StudentUID      string    `db:"student_uid" json:"student_uid"`
	Class           string    `db:"class" json:"class"`
	ApprovalStatus  string    `db:"approval_status" json:"approval_status"`
	CreditsAllotted int       `db:"credits_allotted" json:"credits_allotted"`
	EvaluatedBy     string    `db:"evaluated_by" json:"evaluated_by"`
	EvaluatedAt     time.Time `db:"evaluated_at" json:"evaluated_at"`
	EvaluationNotes string    `db:"evaluation_notes" json:"evaluation_notes"`
}
