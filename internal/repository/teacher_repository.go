package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// TeacherRepository manages persistence for teacher accounts.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns every teacher ordered by employee code.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT employee_code, name, email, password, created_at, updated_at FROM teachers ORDER BY employee_code ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByEmail fetches a teacher by login email.
func (r *TeacherRepository) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	const query = `SELECT employee_code, name, email, password, created_at, updated_at FROM teachers WHERE LOWER(email) = LOWER($1)`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, email); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByCode fetches a teacher by employee code.
func (r *TeacherRepository) FindByCode(ctx context.Context, code string) (*models.Teacher, error) {
	const query = `SELECT employee_code, name, email, password, created_at, updated_at FROM teachers WHERE employee_code = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, code); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByEmail checks if a teacher with the given email exists, optionally
// excluding an employee code.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email, excludeCode string) (bool, error) {
	query := "SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeCode != "" {
		query += " AND employee_code <> $2"
		args = append(args, excludeCode)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher email: %w", err)
	}
	return true, nil
}

// Create inserts a new teacher account.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (employee_code, name, email, password, created_at, updated_at)
        VALUES (:employee_code, :name, :email, :password, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies an existing teacher. An empty Password leaves the stored
// credential untouched.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	query := `UPDATE teachers SET name = :name, email = :email, updated_at = :updated_at WHERE employee_code = :employee_code`
	if teacher.Password != "" {
		query = `UPDATE teachers SET name = :name, email = :email, password = :password, updated_at = :updated_at WHERE employee_code = :employee_code`
	}
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher account.
func (r *TeacherRepository) Delete(ctx context.Context, code string) error {
	const query = `DELETE FROM teachers WHERE employee_code = $1`
	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
