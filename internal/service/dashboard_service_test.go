package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/credit"
	"github.com/credilocker/credilocker-api/internal/models"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
)

type mockDashboardRepo struct {
	fpSubmitters  []string
	cepSubmitters []string
	docCounts     map[string]int
	daily         []models.DailyCount
	upcoming      int
}

func (m *mockDashboardRepo) FieldProjectSubmitters(ctx context.Context, class string) ([]string, error) {
	return m.fpSubmitters, nil
}

func (m *mockDashboardRepo) CEPSubmitters(ctx context.Context, class string) ([]string, error) {
	return m.cepSubmitters, nil
}

func (m *mockDashboardRepo) DocumentCounts(ctx context.Context, class string) (map[string]int, error) {
	return m.docCounts, nil
}

func (m *mockDashboardRepo) CEPDailyCounts(ctx context.Context, class string, days int) ([]models.DailyCount, error) {
	return m.daily, nil
}

func (m *mockDashboardRepo) UpcomingActivityCount(ctx context.Context, class, from string) (int, error) {
	return m.upcoming, nil
}

type memoryCacheRepo struct {
	values map[string][]byte
	sets   int
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func TestDashboardSummaryTalliesAndCaches(t *testing.T) {
	repo := &mockDashboardRepo{
		fpSubmitters:  []string{"u1", "u2", "u3"},
		cepSubmitters: []string{"u1", "u4"},
		docCounts:     map[string]int{models.DocOutcomeForm: 3},
		daily:         []models.DailyCount{{Date: "2026-08-29", Count: 2}},
		upcoming:      1,
	}
	cepApp := &mockCEPRepo{approvals: map[string]*models.CEPApproval{
		"u1": {StudentUID: "u1", ApprovalStatus: credit.StatusApproved},
	}}
	fpApp := &mockFPRepo{approvals: map[string]*models.FieldProjectApproval{
		"u2": {StudentUID: "u2", ApprovalStatus: credit.StatusRejected},
		"u9": {StudentUID: "u9", ApprovalStatus: credit.StatusApproved},
	}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(repo, cepApp, fpApp, cache, zap.NewNop(), DashboardServiceConfig{})

	summary, fromCache, err := svc.Summary(context.Background(), "syit")
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "SYIT", summary.Class)
	// u9 never submitted, so the approval alone does not count.
	assert.Equal(t, models.StatusTally{Pending: 2, Rejected: 1}, summary.FieldProject)
	assert.Equal(t, models.StatusTally{Pending: 1, Approved: 1}, summary.CEP)
	assert.Equal(t, 1, summary.UpcomingActivities)
	assert.Equal(t, 3, summary.DocumentCounts[models.DocOutcomeForm])

	cached, fromCache, err := svc.Summary(context.Background(), "SYIT")
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, summary.FieldProject, cached.FieldProject)
	assert.Equal(t, 1, cacheRepo.sets)
}

func TestDashboardRequiresClass(t *testing.T) {
	cache := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewDashboardService(&mockDashboardRepo{}, &mockCEPRepo{}, &mockFPRepo{}, cache, zap.NewNop(), DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background(), "  ")
	require.Error(t, err)
}
