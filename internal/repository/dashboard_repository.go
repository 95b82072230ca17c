package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/credilocker/credilocker-api/internal/models"
)

// DashboardRepository serves the aggregate queries behind the teacher
// landing page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// FieldProjectSubmitters returns the distinct UIDs with at least one Field
// Project upload for the class.
func (r *DashboardRepository) FieldProjectSubmitters(ctx context.Context, class string) ([]string, error) {
	const query = `SELECT DISTINCT student_uid FROM field_project_submissions WHERE UPPER(class) = $1`
	var uids []string
	if err := r.db.SelectContext(ctx, &uids, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list field project submitters: %w", err)
	}
	return uids, nil
}

// CEPSubmitters returns the distinct UIDs with at least one CEP submission
// for the class.
func (r *DashboardRepository) CEPSubmitters(ctx context.Context, class string) ([]string, error) {
	const query = `SELECT DISTINCT student_uid FROM cep_submissions WHERE UPPER(class) = $1`
	var uids []string
	if err := r.db.SelectContext(ctx, &uids, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("list cep submitters: %w", err)
	}
	return uids, nil
}

// DocumentCounts tallies uploaded Field Project documents per type.
func (r *DashboardRepository) DocumentCounts(ctx context.Context, class string) (map[string]int, error) {
	const query = `SELECT document_type, COUNT(*) AS count FROM field_project_submissions WHERE UPPER(class) = $1 GROUP BY document_type`
	rows := []struct {
		DocumentType string `db:"document_type"`
		Count        int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, models.NormalizeClass(class)); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.DocumentType] = row.Count
	}
	return counts, nil
}

// CEPDailyCounts returns per-day CEP submission volume over the trailing
// window, oldest day first.
func (r *DashboardRepository) CEPDailyCounts(ctx context.Context, class string, days int) ([]models.DailyCount, error) {
	const query = `SELECT TO_CHAR(submitted_at::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
        FROM cep_submissions
        WHERE UPPER(class) = $1 AND submitted_at >= NOW() - ($2 || ' days')::interval
        GROUP BY submitted_at::date
        ORDER BY submitted_at::date ASC`
	var counts []models.DailyCount
	if err := r.db.SelectContext(ctx, &counts, query, models.NormalizeClass(class), days); err != nil {
		return nil, fmt.Errorf("count daily cep submissions: %w", err)
	}
	return counts, nil
}

// UpcomingActivityCount counts activities for the class dated today or later.
func (r *DashboardRepository) UpcomingActivityCount(ctx context.Context, class, from string) (int, error) {
	const query = `SELECT COUNT(*) FROM co_curricular_activities WHERE $1 = ANY(assigned_class) AND date >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.NormalizeClass(class), from); err != nil {
		return 0, fmt.Errorf("count upcoming activities: %w", err)
	}
	return count, nil
}
