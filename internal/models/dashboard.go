package models

import "time"

// StatusTally buckets evaluated students for one track and class. Students
// without any submission are excluded entirely.
type StatusTally struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// DailyCount is one day of submission volume.
type DailyCount struct {
	Date  string `db:"date" json:"date"`
	Count int    `db:"count" json:"count"`
}

// DashboardSummary aggregates the teacher landing-page widgets.
type DashboardSummary struct {
	Class              string         `json:"class"`
	FieldProject       StatusTally    `json:"field_project"`
	CEP                StatusTally    `json:"cep"`
	DocumentCounts     map[string]int `json:"document_counts"`
	UpcomingActivities int            `json:"upcoming_activities"`
	CEPDailySubmits    []DailyCount   `json:"cep_daily_submissions"`
}

// SystemMetrics is a lightweight runtime snapshot surfaced alongside the
// dashboard for operators.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
