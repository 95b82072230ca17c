package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/credilocker/credilocker-api/internal/models"
	"github.com/credilocker/credilocker-api/internal/roster"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
)

type dashboardRepository interface {
	FieldProjectSubmitters(ctx context.Context, class string) ([]string, error)
	CEPSubmitters(ctx context.Context, class string) ([]string, error)
	DocumentCounts(ctx context.Context, class string) (map[string]int, error)
	CEPDailyCounts(ctx context.Context, class string, days int) ([]models.DailyCount, error)
	UpcomingActivityCount(ctx context.Context, class, from string) (int, error)
}

type dashboardCEPApprovals interface {
	ListApprovalsByClass(ctx context.Context, class string) ([]models.CEPApproval, error)
}

type dashboardFPApprovals interface {
	ListApprovalsByClass(ctx context.Context, class string) ([]models.FieldProjectApproval, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL        time.Duration
	DailyWindowDays int
}

// DashboardService composes the teacher landing-page aggregates, with a
// short-lived cache in front of the underlying queries.
type DashboardService struct {
	repo   dashboardRepository
	cepApp dashboardCEPApprovals
	fpApp  dashboardFPApprovals
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cepApp dashboardCEPApprovals, fpApp dashboardFPApprovals, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.DailyWindowDays <= 0 {
		cfg.DailyWindowDays = 7
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:   repo,
		cepApp: cepApp,
		fpApp:  fpApp,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
	}
}

// Summary assembles the per-class dashboard. The second return value reports
// whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context, class string) (*models.DashboardSummary, bool, error) {
	class = models.NormalizeClass(class)
	if class == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "class is required")
	}

	cacheKey := fmt.Sprintf("dashboard:%s", class)
	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	summary := &models.DashboardSummary{Class: class}

	fpTally, err := s.fieldProjectTally(ctx, class)
	if err != nil {
		return nil, false, err
	}
	summary.FieldProject = fpTally

	cepTally, err := s.cepTally(ctx, class)
	if err != nil {
		return nil, false, err
	}
	summary.CEP = cepTally

	counts, err := s.repo.DocumentCounts(ctx, class)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count documents")
	}
	summary.DocumentCounts = counts

	today := s.now().UTC().Format("2006-01-02")
	upcoming, err := s.repo.UpcomingActivityCount(ctx, class, today)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming activities")
	}
	summary.UpcomingActivities = upcoming

	daily, err := s.repo.CEPDailyCounts(ctx, class, s.cfg.DailyWindowDays)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count daily submissions")
	}
	summary.CEPDailySubmits = daily

	if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("class", class), zap.Error(err))
	}
	return summary, false, nil
}

// Invalidate drops the cached dashboard for one class, or all classes when
// class is empty.
func (s *DashboardService) Invalidate(ctx context.Context, class string) {
	pattern := "dashboard:*"
	if class != "" {
		pattern = fmt.Sprintf("dashboard:%s", models.NormalizeClass(class))
	}
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

func (s *DashboardService) fieldProjectTally(ctx context.Context, class string) (models.StatusTally, error) {
	submitters, err := s.repo.FieldProjectSubmitters(ctx, class)
	if err != nil {
		return models.StatusTally{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submitters")
	}
	approvals, err := s.fpApp.ListApprovalsByClass(ctx, class)
	if err != nil {
		return models.StatusTally{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approvals")
	}
	statusByUID := make(map[string]string, len(approvals))
	for _, a := range approvals {
		statusByUID[a.StudentUID] = a.ApprovalStatus
	}
	return roster.TallyStatus(submitters, statusByUID), nil
}

func (s *DashboardService) cepTally(ctx context.Context, class string) (models.StatusTally, error) {
	submitters, err := s.repo.CEPSubmitters(ctx, class)
	if err != nil {
		return models.StatusTally{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submitters")
	}
	approvals, err := s.cepApp.ListApprovalsByClass(ctx, class)
	if err != nil {
		return models.StatusTally{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approvals")
	}
	statusByUID := make(map[string]string, len(approvals))
	for _, a := range approvals {
		statusByUID[a.StudentUID] = a.ApprovalStatus
	}
	return roster.TallyStatus(submitters, statusByUID), nil
}
