package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// FieldProjectRepository manages Field Project document submissions and
// their approvals.
type FieldProjectRepository struct {
	db *sqlx.DB
}

// NewFieldProjectRepository constructs a FieldProjectRepository.
func NewFieldProjectRepository(db *sqlx.DB) *FieldProjectRepository {
	return &FieldProjectRepository{db: db}
}

const fpSubmissionColumns = "id, student_uid, class, document_type, file_url, uploaded_at"
const fpApprovalColumns = "student_uid, class, approval_status, marks_allotted, credits_allotted, evaluated_by, evaluated_at, evaluation_notes"

// UpsertSubmission stores one document slot. Re-uploading the same document
// type replaces the stored file URL; the previous row is returned so callers
// can delete the superseded file from storage.
func (r *FieldProjectRepository) UpsertSubmission(ctx context.Context, sub *models.FieldProjectSubmission) (previous *models.FieldProjectSubmission, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin field project upsert: %w", err)
	}
	defer tx.Rollback()

	var existing models.FieldProjectSubmission
	findQuery := fmt.Sprintf("SELECT %s FROM field_project_submissions WHERE student_uid = $1 AND UPPER(class) = $2 AND document_type = $3", fpSubmissionColumns)
	if err := tx.GetContext(ctx, &existing, findQuery, sub.StudentUID, models.NormalizeClass(sub.Class), sub.DocumentType); err == nil {
		previous = &existing
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.UploadedAt = time.Now().UTC()
	const query = `INSERT INTO field_project_submissions (id, student_uid, class, document_type, file_url, uploaded_at)
        VALUES (:id, :student_uid, :class, :document_type, :file_url, :uploaded_at)
        ON CONFLICT (student_uid, class, document_type)
        DO UPDATE SET file_url = EXCLUDED.file_url, uploaded_at = EXCLUDED.uploaded_at`
	if _, err := tx.NamedExecContext(ctx, query, sub); err != nil {
		return nil, fmt.Errorf("upsert field project submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit field project upsert: %w", err)
	}
	return previous, nil
}

// ListSubmissionsByStudent returns a student's uploaded documents.
func (r *FieldProjectRepository) ListSubmissionsByStudent(ctx context.Context, studentUID string) ([]models.FieldProjectSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM field_project_submissions WHERE student_uid = $1 ORDER BY uploaded_at ASC", fpSubmissionColumns)
	var subs []models.FieldProjectSubmission
	if err := r.db.SelectContext(ctx, &subs, query, studentUID); err != nil {
		return nil, fmt.Errorf("list field project submissions by student: %w", err)
	}
	return subs, nil
}

// ListSubmissionsByClass returns every document uploaded by a class.
func (r *FieldProjectRepository) ListSubmissionsByClass(ctx context.Context, class string) ([]models.FieldProjectSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM field_project_submissions WHERE UPPER(class) = $1 ORDER BY student_uid ASC, uploaded_at ASC", fpSubmissionColumns)
	var subs []models.FieldProjectSubmission
	if err := r.db.SelectContext(ctx, &subs, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list field project submissions by class: %w", err)
	}
	return subs, nil
}

// DeleteSubmission removes one document slot, scoped to its owner. The
// removed row is returned so the stored file can be cleaned up.
func (r *FieldProjectRepository) DeleteSubmission(ctx context.Context, studentUID, class, documentType string) (*models.FieldProjectSubmission, error) {
	query := fmt.Sprintf("DELETE FROM field_project_submissions WHERE student_uid = $1 AND UPPER(class) = $2 AND document_type = $3 RETURNING %s", fpSubmissionColumns)
	var sub models.FieldProjectSubmission
	if err := r.db.GetContext(ctx, &sub, query, studentUID, models.NormalizeClass(class), documentType); err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpsertApproval records the evaluator's decision atomically.
func (r *FieldProjectRepository) UpsertApproval(ctx context.Context, approval *models.FieldProjectApproval) error {
	approval.EvaluatedAt = time.Now().UTC()
	const query = `INSERT INTO field_project_approvals (student_uid, class, approval_status, marks_allotted, credits_allotted, evaluated_by, evaluated_at, evaluation_notes)
        VALUES (:student_uid, :class, :approval_status, :marks_allotted, :credits_allotted, :evaluated_by, :evaluated_at, :evaluation_notes)
        ON CONFLICT (student_uid, class)
        DO UPDATE SET approval_status = EXCLUDED.approval_status, marks_allotted = EXCLUDED.marks_allotted, credits_allotted = EXCLUDED.credits_allotted, evaluated_by = EXCLUDED.evaluated_by, evaluated_at = EXCLUDED.evaluated_at, evaluation_notes = EXCLUDED.evaluation_notes`
	if _, err := r.db.NamedExecContext(ctx, query, approval); err != nil {
		return fmt.Errorf("upsert field project approval: %w", err)
	}
	return nil
}

// FindApproval fetches the decision for one (student, class), if any.
func (r *FieldProjectRepository) FindApproval(ctx context.Context, studentUID, class string) (*models.FieldProjectApproval, error) {
	query := fmt.Sprintf("SELECT %s FROM field_project_approvals WHERE student_uid = $1 AND UPPER(class) = $2", fpApprovalColumns)
	var approval models.FieldProjectApproval
	if err := r.db.GetContext(ctx, &approval, query, studentUID, models.NormalizeClass(class)); err != nil {
		return nil, err
	}
	return &approval, nil
}

// ListApprovalsByClass returns every decision recorded for a class.
func (r *FieldProjectRepository) ListApprovalsByClass(ctx context.Context, class string) ([]models.FieldProjectApproval, error) {
	query := fmt.Sprintf("SELECT %s FROM field_project_approvals WHERE UPPER(class) = $1", fpApprovalColumns)
	var approvals []models.FieldProjectApproval
	if err := r.db.SelectContext(ctx, &approvals, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list field project approvals by class: %w", err)
	}
	return approvals, nil
}
