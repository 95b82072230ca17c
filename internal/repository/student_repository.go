package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters ordered by class and
// UID; callers apply the canonical roster sort on the result.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	query := "SELECT uid, name, class, semester, email, phone, created_at, updated_at FROM students"
	conditions := []string{}
	args := []interface{}{}

	if filter.Class != "" {
		conditions = append(conditions, fmt.Sprintf("UPPER(class) = $%d", len(args)+1))
		args = append(args, models.NormalizeClass(filter.Class))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(uid) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY class ASC, uid ASC"

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByUID fetches a single student.
func (r *StudentRepository) FindByUID(ctx context.Context, uid string) (*models.Student, error) {
	const query = `SELECT uid, name, class, semester, email, phone, created_at, updated_at FROM students WHERE uid = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, uid); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUIDAndEmail fetches a student matching both login fields.
func (r *StudentRepository) FindByUIDAndEmail(ctx context.Context, uid, email string) (*models.Student, error) {
	const query = `SELECT uid, name, class, semester, email, phone, created_at, updated_at FROM students WHERE uid = $1 AND LOWER(email) = LOWER($2)`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, uid, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (uid, name, class, semester, email, phone, created_at, updated_at)
        VALUES (:uid, :name, :class, :semester, :email, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, class = :class, semester = :semester, email = :email, phone = :phone, updated_at = :updated_at WHERE uid = :uid`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student record.
func (r *StudentRepository) Delete(ctx context.Context, uid string) error {
	const query = `DELETE FROM students WHERE uid = $1`
	if _, err := r.db.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// BulkUpdateSemester moves every student of a class to a new semester.
func (r *StudentRepository) BulkUpdateSemester(ctx context.Context, class string, semester int) (int64, error) {
	const query = `UPDATE students SET semester = $2, updated_at = $3 WHERE UPPER(class) = $1`
	res, err := r.db.ExecContext(ctx, query, models.NormalizeClass(class), semester, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("bulk update semester: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// ExistsByUID checks presence without loading the full row.
func (r *StudentRepository) ExistsByUID(ctx context.Context, uid string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE uid = $1 LIMIT 1", uid); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check uid: %w", err)
	}
	return true, nil
}
