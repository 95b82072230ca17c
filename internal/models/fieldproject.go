package models

import "time"

// Field Project document types. All four are required for completeness.
const (
	DocCompletionLetter  = "completion_letter"
	DocOutcomeForm       = "outcome_form"
	DocFeedbackForm      = "feedback_form"
	DocVideoPresentation = "video_presentation"
)

// RequiredDocumentTypes lists the artifact set in report column order.
var RequiredDocumentTypes = []string{
	DocCompletionLetter,
	DocOutcomeForm,
	DocFeedbackForm,
	DocVideoPresentation,
}

// ValidDocumentType reports whether t names a Field Project artifact.
func ValidDocumentType(t string) bool {
	for _, d := range RequiredDocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// FieldProjectSubmission is one uploaded artifact, at most one per
// (student, class, document type); resubmission replaces the file.
type FieldProjectSubmission struct {
	ID           string    `db:"id" json:"id"`
	StudentUID   string    `db:"student_uid" json:"student_uid"`
	Class        string    `db:"class" json:"class"`
	DocumentType string    `db:"document_type" json:"document_type"`
	FileURL      string    `db:"file_url" json:"file_url"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// FieldProjectApproval mirrors CEPApproval but credits are entered manually
// by the evaluator rather than computed from a tier ladder.
type FieldProjectApproval struct {
	StudentUID      string    `db:"student_uid" json:"student_uid"`
	Class           string    `db:"class" json:"class"`
	ApprovalStatus  string    `db:"approval_status" json:"approval_status"`
	MarksAllotted   int       `db:"marks_allotted" json:"marks_allotted"`
	CreditsAllotted int       `db:"credits_allotted" json:"credits_allotted"`
	EvaluatedBy     string    `db:"evaluated_by" json:"evaluated_by"`
	EvaluatedAt     time.Time `db:"evaluated_at" json:"evaluated_at"`
	EvaluationNotes string    `db:"evaluation_notes" json:"evaluation_notes"`
}
