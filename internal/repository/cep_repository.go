package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// CEPRepository manages Community Engagement Program requirements,
// submissions and approvals.
type CEPRepository struct {
	db *sqlx.DB
}

// NewCEPRepository constructs a CEPRepository.
func NewCEPRepository(db *sqlx.DB) *CEPRepository {
	return &CEPRepository{db: db}
}

const cepRequirementColumns = "id, assigned_class, minimum_hours, deadline, credits_config, teacher_employee_code, created_at"
const cepSubmissionColumns = "id, student_uid, class, activity_name, hours, activity_date, location, certificate_url, picture_url, geolocation, submitted_at"
const cepApprovalColumns = "student_uid, class, approval_status, credits_allotted, evaluated_by, evaluated_at, evaluation_notes"

// ListRequirements returns every requirement, newest first.
func (r *CEPRepository) ListRequirements(ctx context.Context) ([]models.CEPRequirement, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_requirements ORDER BY created_at DESC", cepRequirementColumns)
	var reqs []models.CEPRequirement
	if err := r.db.SelectContext(ctx, &reqs, query); err != nil {
		return nil, fmt.Errorf("list cep requirements: %w", err)
	}
	return reqs, nil
}

// FindRequirementByClass returns the latest requirement configured for a class.
func (r *CEPRepository) FindRequirementByClass(ctx context.Context, class string) (*models.CEPRequirement, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_requirements WHERE UPPER(assigned_class) = $1 ORDER BY created_at DESC LIMIT 1", cepRequirementColumns)
	var req models.CEPRequirement
	if err := r.db.GetContext(ctx, &req, query, models.NormalizeClass(class)); err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequirement inserts a new per-class requirement.
func (r *CEPRepository) CreateRequirement(ctx context.Context, req *models.CEPRequirement) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO cep_requirements (id, assigned_class, minimum_hours, deadline, credits_config, teacher_employee_code, created_at)
        VALUES (:id, :assigned_class, :minimum_hours, :deadline, :credits_config, :teacher_employee_code, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create cep requirement: %w", err)
	}
	return nil
}

// UpdateRequirement modifies an existing requirement.
func (r *CEPRepository) UpdateRequirement(ctx context.Context, req *models.CEPRequirement) error {
	const query = `UPDATE cep_requirements SET assigned_class = :assigned_class, minimum_hours = :minimum_hours, deadline = :deadline, credits_config = :credits_config WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("update cep requirement: %w", err)
	}
	return nil
}

// DeleteRequirement removes a requirement.
func (r *CEPRepository) DeleteRequirement(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cep_requirements WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete cep requirement: %w", err)
	}
	return nil
}

// CreateSubmission logs one activity for a student.
func (r *CEPRepository) CreateSubmission(ctx context.Context, sub *models.CEPSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.SubmittedAt = time.Now().UTC()
	const query = `INSERT INTO cep_submissions (id, student_uid, class, activity_name, hours, activity_date, location, certificate_url, picture_url, geolocation, submitted_at)
        VALUES (:id, :student_uid, :class, :activity_name, :hours, :activity_date, :location, :certificate_url, :picture_url, :geolocation, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create cep submission: %w", err)
	}
	return nil
}

// ListSubmissionsByStudent returns a student's submissions, oldest first.
func (r *CEPRepository) ListSubmissionsByStudent(ctx context.Context, studentUID string) ([]models.CEPSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_submissions WHERE student_uid = $1 ORDER BY submitted_at ASC", cepSubmissionColumns)
	var subs []models.CEPSubmission
	if err := r.db.SelectContext(ctx, &subs, query, studentUID); err != nil {
		return nil, fmt.Errorf("list cep submissions by student: %w", err)
	}
	return subs, nil
}

// ListSubmissionsByClass returns all submissions for a class ordered for the
// reviewer view: by student then submission time.
func (r *CEPRepository) ListSubmissionsByClass(ctx context.Context, class string) ([]models.CEPSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_submissions WHERE UPPER(class) = $1 ORDER BY student_uid ASC, submitted_at ASC", cepSubmissionColumns)
	var subs []models.CEPSubmission
	if err := r.db.SelectContext(ctx, &subs, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list cep submissions by class: %w", err)
	}
	return subs, nil
}

// FindSubmission fetches one submission.
func (r *CEPRepository) FindSubmission(ctx context.Context, id string) (*models.CEPSubmission, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_submissions WHERE id = $1", cepSubmissionColumns)
	var sub models.CEPSubmission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubmission removes one submission, scoped to its owner.
func (r *CEPRepository) DeleteSubmission(ctx context.Context, id, studentUID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cep_submissions WHERE id = $1 AND student_uid = $2", id, studentUID)
	if err != nil {
		return false, fmt.Errorf("delete cep submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete cep submission: %w", err)
	}
	return affected > 0, nil
}

// SumHoursByStudent totals the logged hours for one student.
func (r *CEPRepository) SumHoursByStudent(ctx context.Context, studentUID string) (float64, error) {
	var total float64
	const query = `SELECT COALESCE(SUM(hours), 0) FROM cep_submissions WHERE student_uid = $1`
	if err := r.db.GetContext(ctx, &total, query, studentUID); err != nil {
		return 0, fmt.Errorf("sum cep hours: %w", err)
	}
	return total, nil
}

// UpsertApproval records the evaluator's decision atomically. Re-evaluating
// replaces the previous row for the same (student, class).
func (r *CEPRepository) UpsertApproval(ctx context.Context, approval *models.CEPApproval) error {
	approval.EvaluatedAt = time.Now().UTC()
	const query = `INSERT INTO cep_approvals (student_uid, class, approval_status, credits_allotted, evaluated_by, evaluated_at, evaluation_notes)
        VALUES (:student_uid, :class, :approval_status, :credits_allotted, :evaluated_by, :evaluated_at, :evaluation_notes)
        ON CONFLICT (student_uid, class)
        DO UPDATE SET approval_status = EXCLUDED.approval_status, credits_allotted = EXCLUDED.credits_allotted, evaluated_by = EXCLUDED.evaluated_by, evaluated_at = EXCLUDED.evaluated_at, evaluation_notes = EXCLUDED.evaluation_notes`
	if _, err := r.db.NamedExecContext(ctx, query, approval); err != nil {
		return fmt.Errorf("upsert cep approval: %w", err)
	}
	return nil
}

// FindApproval fetches the decision for one (student, class), if any.
func (r *CEPRepository) FindApproval(ctx context.Context, studentUID, class string) (*models.CEPApproval, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_approvals WHERE student_uid = $1 AND UPPER(class) = $2", cepApprovalColumns)
	var approval models.CEPApproval
	if err := r.db.GetContext(ctx, &approval, query, studentUID, models.NormalizeClass(class)); err != nil {
		return nil, err
	}
	return &approval, nil
}

// ListApprovalsByClass returns every decision recorded for a class.
func (r *CEPRepository) ListApprovalsByClass(ctx context.Context, class string) ([]models.CEPApproval, error) {
	query := fmt.Sprintf("SELECT %s FROM cep_approvals WHERE UPPER(class) = $1", cepApprovalColumns)
	var approvals []models.CEPApproval
	if err := r.db.SelectContext(ctx, &approvals, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list cep approvals by class: %w", err)
	}
	return approvals, nil
}
