package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/roster"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/export"
	"github.com/credilocker/credilocker-api/pkg/storage"
)

type reportAttendanceRepository interface {
	ListByActivities(ctx context.Context, activityIDs []int64) ([]models.AttendanceRecord, error)
}

// ReportTrack selects which record track a report covers.
type ReportTrack string

const (
	TrackFieldProject ReportTrack = "field-project"
	TrackCEP          ReportTrack = "cep"
	TrackAttendance   ReportTrack = "attendance"
)

var fieldProjectHeaders = []string{
	"UID", "Name", "Class", "Status", "Credits", "Documents Submitted",
	"Completion Letter", "Outcome Form", "Feedback Form", "Video Presentation",
}

var cepHeaders = []string{
	"UID", "Name", "Class", "Hours Completed", "Activities Submitted",
	"Credits Allocated", "Status", "Minimum Hours", "Progress",
}

// ReportService builds class reports and renders them into downloadable
// spreadsheet and PDF files behind signed URLs.
type ReportService struct {
	students   studentRepository
	cep        cepRepository
	fp         fieldProjectRepository
	activities activityRepository
	attendance reportAttendanceRepository

	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	xlsx      *export.XLSXExporter
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	apiPrefix string
	logger    *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(
	students studentRepository,
	cep cepRepository,
	fp fieldProjectRepository,
	activities activityRepository,
	attendance reportAttendanceRepository,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	apiPrefix string,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:   students,
		cep:        cep,
		fp:         fp,
		activities: activities,
		attendance: attendance,
		store:      store,
		signer:     signer,
		xlsx:       export.NewXLSXExporter(),
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		apiPrefix:  apiPrefix,
		logger:     logger,
	}
}

// FieldProjectRows assembles the Field Project report for one class in
// canonical roster order. Only submitting students appear.
func (s *ReportService) FieldProjectRows(ctx context.Context, class string) ([]models.FieldProjectReportRow, error) {
	subs, err := s.fp.ListSubmissionsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class submissions")
	}
	approvals, err := s.fp.ListApprovalsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class approvals")
	}
	statusByUID := make(map[string]models.FieldProjectApproval, len(approvals))
	for _, a := range approvals {
		statusByUID[a.StudentUID] = a
	}

	groups, order := roster.GroupFieldProjectByStudent(subs)
	rows := make([]models.FieldProjectReportRow, 0, len(order))
	for _, key := range order {
		group := groups[key]
		uid := group[0].StudentUID
		types := submittedTypes(group)

		row := models.FieldProjectReportRow{
			UID:                uid,
			Class:              models.NormalizeClass(group[0].Class),
			Status:             credit.StatusPending,
			DocumentsSubmitted: fmt.Sprintf("%d/%d", len(types), len(models.RequiredDocumentTypes)),
			CompletionLetter:   yesNo(types[models.DocCompletionLetter]),
			OutcomeForm:        yesNo(types[models.DocOutcomeForm]),
			FeedbackForm:       yesNo(types[models.DocFeedbackForm]),
			VideoPresentation:  yesNo(types[models.DocVideoPresentation]),
		}
		if student, err := s.students.FindByUID(ctx, uid); err == nil {
			row.Name = student.Name
		}
		if approval, ok := statusByUID[uid]; ok {
			row.Status = approval.ApprovalStatus
			row.Credits = approval.CreditsAllotted
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return roster.Less(rows[i].Class, rows[i].UID, rows[j].Class, rows[j].UID)
	})
	return rows, nil
}

// CEPRows assembles the CEP report for one class in canonical roster order.
func (s *ReportService) CEPRows(ctx context.Context, class string) ([]models.CEPReportRow, error) {
	subs, err := s.cep.ListSubmissionsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class submissions")
	}
	approvals, err := s.cep.ListApprovalsByClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class approvals")
	}
	statusByUID := make(map[string]models.CEPApproval, len(approvals))
	for _, a := range approvals {
		statusByUID[a.StudentUID] = a
	}

	minimumHours := 0.0
	if req, err := s.cep.FindRequirementByClass(ctx, class); err == nil {
		minimumHours = req.MinimumHours
	}

	groups, order := roster.GroupCEPByStudent(subs)
	rows := make([]models.CEPReportRow, 0, len(order))
	for _, uid := range order {
		group := groups[uid]
		row := models.CEPReportRow{
			UID:                 uid,
			Class:               models.NormalizeClass(class),
			ActivitiesSubmitted: len(group),
			Status:              credit.StatusPending,
			MinimumHours:        minimumHours,
		}
		for _, sub := range group {
			row.HoursCompleted += sub.Hours
		}
		row.Progress = progressPercent(row.HoursCompleted, minimumHours)
		if student, err := s.students.FindByUID(ctx, uid); err == nil {
			row.Name = student.Name
		}
		if approval, ok := statusByUID[uid]; ok {
			row.Status = approval.ApprovalStatus
			row.CreditsAllocated = approval.CreditsAllotted
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return roster.Less(rows[i].Class, rows[i].UID, rows[j].Class, rows[j].UID)
	})
	return rows, nil
}

// AttendanceMatrix assembles the attendance report: every student of the
// class against every activity assigned to it, cells 1/0, plus earned CC
// point totals.
func (s *ReportService) AttendanceMatrix(ctx context.Context, class string) (*models.AttendanceMatrix, error) {
	students, err := s.students.List(ctx, models.StudentFilter{Class: class})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	roster.SortStudents(students)

	activities, err := s.activities.ListForClass(ctx, class)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class activities")
	}
	// Columns run oldest to newest.
	sort.SliceStable(activities, func(i, j int) bool { return activities[i].Date < activities[j].Date })

	ids := make([]int64, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}
	records, err := s.attendance.ListByActivities(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	present := make(map[string]bool, len(records))
	for _, record := range records {
		if record.AttendanceStatus == models.AttendancePresent {
			present[fmt.Sprintf("%d|%s", record.ActivityID, record.StudentUID)] = true
		}
	}

	header := []string{"UID", "Name"}
	for _, a := range activities {
		header = append(header, a.ActivityName)
	}
	header = append(header, "Total CC Points")

	rows := make([][]string, 0, len(students))
	for _, student := range students {
		row := []string{student.UID, student.Name}
		total := 0
		for _, a := range activities {
			if present[fmt.Sprintf("%d|%s", a.ID, student.UID)] {
				row = append(row, "1")
				total += a.CCPoints
			} else {
				row = append(row, "0")
			}
		}
		row = append(row, fmt.Sprintf("%d", total))
		rows = append(rows, row)
	}

	return &models.AttendanceMatrix{Header: header, Rows: rows}, nil
}

// Generate renders one report into the requested format, stores the file and
// returns a signed download link.
func (s *ReportService) Generate(ctx context.Context, track ReportTrack, class string, format models.ReportFormat) (*models.ReportFile, error) {
	if !models.ValidReportFormat(format) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	var dataset export.Dataset
	switch track {
	case TrackFieldProject:
		rows, err := s.FieldProjectRows(ctx, class)
		if err != nil {
			return nil, err
		}
		dataset = fieldProjectDataset(rows)
	case TrackCEP:
		rows, err := s.CEPRows(ctx, class)
		if err != nil {
			return nil, err
		}
		dataset = cepDataset(rows)
	case TrackAttendance:
		matrix, err := s.AttendanceMatrix(ctx, class)
		if err != nil {
			return nil, err
		}
		dataset = export.Dataset{Sheet: "Attendance", Headers: matrix.Header, Rows: matrix.Rows}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report track")
	}

	content, err := s.render(dataset, track, class, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("%s-%s-%s.%s", track, models.NormalizeClass(class), time.Now().UTC().Format("20060102-150405"), format)
	if _, err := s.store.Save(filename, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate("report", filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}

	s.logger.Info("report generated",
		zap.String("track", string(track)),
		zap.String("class", class),
		zap.String("format", string(format)),
		zap.String("filename", filename))
	return &models.ReportFile{
		Filename:    filename,
		Format:      format,
		DownloadURL: fmt.Sprintf("%s/reports/download/%s", s.apiPrefix, token),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// ResolveDownload validates a signed download token and returns the stored
// file path.
func (s *ReportService) ResolveDownload(token string) (string, error) {
	resource, filename, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	if resource != "report" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}
	return s.store.Path(filename), nil
}

// Cleanup deletes report files older than the given TTL.
func (s *ReportService) Cleanup(ttl time.Duration) {
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", len(deleted)))
	}
}

func (s *ReportService) render(dataset export.Dataset, track ReportTrack, class string, format models.ReportFormat) ([]byte, error) {
	switch format {
	case models.ReportFormatXLSX:
		return s.xlsx.Render(dataset)
	case models.ReportFormatCSV:
		return s.csv.Render(dataset)
	case models.ReportFormatPDF:
		title := fmt.Sprintf("%s report - %s", track, models.NormalizeClass(class))
		return s.pdf.Render(dataset, title)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func fieldProjectDataset(rows []models.FieldProjectReportRow) export.Dataset {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.UID, r.Name, r.Class, r.Status, fmt.Sprintf("%d", r.Credits), r.DocumentsSubmitted,
			r.CompletionLetter, r.OutcomeForm, r.FeedbackForm, r.VideoPresentation,
		})
	}
	return export.Dataset{Sheet: "Field Project", Headers: fieldProjectHeaders, Rows: out}
}

func cepDataset(rows []models.CEPReportRow) export.Dataset {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.UID, r.Name, r.Class, fmt.Sprintf("%g", r.HoursCompleted), fmt.Sprintf("%d", r.ActivitiesSubmitted),
			fmt.Sprintf("%d", r.CreditsAllocated), r.Status, fmt.Sprintf("%g", r.MinimumHours), r.Progress,
		})
	}
	return export.Dataset{Sheet: "CEP", Headers: cepHeaders, Rows: out}
}

// progressPercent caps at 100% and keeps one decimal place.
func progressPercent(hours, minimum float64) string {
	if minimum <= 0 {
		return "N/A"
	}
	pct := hours / minimum * 100
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%.1f%%", pct)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
