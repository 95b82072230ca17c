package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// ActivityRepository manages co-curricular activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `id, activity_name, date, "time", venue, assigned_class, comments, cc_points, created_at`

// List returns every activity ordered by date descending.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM co_curricular_activities ORDER BY date DESC, id DESC", activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// ListForClass returns activities assigned to the given class, newest first.
func (r *ActivityRepository) ListForClass(ctx context.Context, class string) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM co_curricular_activities WHERE $1 = ANY(assigned_class) ORDER BY date DESC, id DESC", activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list activities for class: %w", err)
	}
	return activities, nil
}

// ListUpcoming returns activities dated on or after the given day, soonest first.
func (r *ActivityRepository) ListUpcoming(ctx context.Context, from string, limit int) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM co_curricular_activities WHERE date >= $1 ORDER BY date ASC LIMIT $2", activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, from, limit); err != nil {
		return nil, fmt.Errorf("list upcoming activities: %w", err)
	}
	return activities, nil
}

// FindByID fetches a single activity.
func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM co_curricular_activities WHERE id = $1", activityColumns)
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts a new activity and fills in the generated ID.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO co_curricular_activities (activity_name, date, "time", venue, assigned_class, comments, cc_points, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		activity.ActivityName, activity.Date, activity.Time, activity.Venue,
		activity.AssignedClass, activity.Comments, activity.CCPoints, activity.CreatedAt,
	).Scan(&activity.ID); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update modifies an existing activity.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	const query = `UPDATE co_curricular_activities SET activity_name = :activity_name, date = :date, "time" = :time, venue = :venue, assigned_class = :assigned_class, comments = :comments, cc_points = :cc_points WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes an activity and its attendance rows.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete activity: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM co_curricular_attendance WHERE activity_id = $1", id); err != nil {
		return fmt.Errorf("delete activity attendance: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM co_curricular_activities WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return tx.Commit()
}
