package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// AttendanceRepository manages attendance marks for co-curricular activities.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records a single attendance mark. Re-marking the same student for
// the same activity overwrites the previous status in place.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	record.MarkedAt = time.Now().UTC()
	const query = `INSERT INTO co_curricular_attendance (activity_id, student_uid, attendance_status, marked_by, marked_at)
        VALUES (:activity_id, :student_uid, :attendance_status, :marked_by, :marked_at)
        ON CONFLICT (activity_id, student_uid)
        DO UPDATE SET attendance_status = EXCLUDED.attendance_status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// UpsertBatch records a set of attendance marks in one transaction.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance batch: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO co_curricular_attendance (activity_id, student_uid, attendance_status, marked_by, marked_at)
        VALUES (:activity_id, :student_uid, :attendance_status, :marked_by, :marked_at)
        ON CONFLICT (activity_id, student_uid)
        DO UPDATE SET attendance_status = EXCLUDED.attendance_status, marked_by = EXCLUDED.marked_by, marked_at = EXCLUDED.marked_at`
	now := time.Now().UTC()
	for i := range records {
		records[i].MarkedAt = now
		if _, err := tx.NamedExecContext(ctx, query, &records[i]); err != nil {
			return fmt.Errorf("upsert attendance batch: %w", err)
		}
	}
	return tx.Commit()
}

// ListByActivity returns every mark recorded for one activity.
func (r *AttendanceRepository) ListByActivity(ctx context.Context, activityID int64) ([]models.AttendanceRecord, error) {
	const query = `SELECT activity_id, student_uid, attendance_status, marked_by, marked_at FROM co_curricular_attendance WHERE activity_id = $1 ORDER BY student_uid ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, activityID); err != nil {
		return nil, fmt.Errorf("list attendance by activity: %w", err)
	}
	return records, nil
}

// ListByStudent returns a student's marks across all activities.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentUID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT activity_id, student_uid, attendance_status, marked_by, marked_at FROM co_curricular_attendance WHERE student_uid = $1 ORDER BY marked_at ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentUID); err != nil {
		return nil, fmt.Errorf("list attendance by student: %w", err)
	}
	return records, nil
}

// ListByActivities returns all marks for a set of activities, used when
// assembling the attendance matrix report.
func (r *AttendanceRepository) ListByActivities(ctx context.Context, activityIDs []int64) ([]models.AttendanceRecord, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT activity_id, student_uid, attendance_status, marked_by, marked_at FROM co_curricular_attendance WHERE activity_id IN (?)", activityIDs)
	if err != nil {
		return nil, fmt.Errorf("build attendance query: %w", err)
	}
	query = r.db.Rebind(query)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance by activities: %w", err)
	}
	return records, nil
}
