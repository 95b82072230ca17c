package models

// ReportFormat selects the rendered file type.
type ReportFormat string

const (
	ReportFormatXLSX ReportFormat = "xlsx"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ValidReportFormat reports whether f is renderable.
func ValidReportFormat(f ReportFormat) bool {
	return f == ReportFormatXLSX || f == ReportFormatCSV || f == ReportFormatPDF
}

// FieldProjectReportRow is one exported line of the Field Project report.
type FieldProjectReportRow struct {
	UID                string `json:"uid"`
	Name               string `json:"name"`
	Class              string `json:"class"`
	Status             string `json:"status"`
	Credits            int    `json:"credits"`
	DocumentsSubmitted string `json:"documents_submitted"`
	CompletionLetter   string `json:"completion_letter"`
	OutcomeForm        string `json:"outcome_form"`
	FeedbackForm       string `json:"feedback_form"`
	VideoPresentation  string `json:"video_presentation"`
}

// CEPReportRow is one exported line of the CEP report.
type CEPReportRow struct {
	UID                 string  `json:"uid"`
	Name                string  `json:"name"`
	Class               string  `json:"class"`
	HoursCompleted      float64 `json:"hours_completed"`
	ActivitiesSubmitted int     `json:"activities_submitted"`
	CreditsAllocated    int     `json:"credits_allocated"`
	Status              string  `json:"status"`
	MinimumHours        float64 `json:"minimum_hours"`
	Progress            string  `json:"progress"`
}

// AttendanceMatrix is the attendance report: a header naming each activity in
// date order, then one row per student with 1/0 cells and a CC point total.
type AttendanceMatrix struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ReportFile is the generated artifact handed back to the caller.
type ReportFile struct {
	Filename    string       `json:"filename"`
	Format      ReportFormat `json:"format"`
	DownloadURL string       `json:"download_url"`
	ExpiresAt   string       `json:"expires_at"`
}
