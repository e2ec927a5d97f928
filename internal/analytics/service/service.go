package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mehdirazajaffri/leads-management-system/internal/analytics/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/analytics/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
)

const (
	RangeWeek    = "7d"
	RangeMonth   = "30d"
	RangeQuarter = "90d"
	RangeAll     = "all"

	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type Repository interface {
	Totals(ctx context.Context, s repository.Scope) (repository.Totals, error)
	CountAgents(ctx context.Context) (int, error)
	Campaigns(ctx context.Context) ([]string, error)
	AgentStats(ctx context.Context, s repository.Scope) ([]repository.AgentStats, error)
	ProcessedSince(ctx context.Context, since time.Time, campaign string) (map[uuid.UUID]int, error)
	LeadsBySource(ctx context.Context, s repository.Scope) ([]repository.SourceCount, error)
	Trend(ctx context.Context, unit string, since time.Time) ([]repository.TrendPoint, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Dashboard assembles the admin dashboard. The independent aggregates run
// concurrently; the first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context, rangeName, campaign string) (transport.DashboardResponse, error) {
	rangeName = strings.ToLower(strings.TrimSpace(rangeName))
	if rangeName == "" {
		rangeName = RangeMonth
	}
	since, err := s.rangeStart(rangeName)
	if err != nil {
		return transport.DashboardResponse{}, err
	}
	campaign = strings.TrimSpace(campaign)
	scope := repository.Scope{Since: since, Campaign: campaign}

	var (
		totals    repository.Totals
		agents    int
		campaigns []string
		stats     []repository.AgentStats
		processed map[uuid.UUID]int
		sources   []repository.SourceCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.repo.Totals(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		agents, err = s.repo.CountAgents(gctx)
		return err
	})
	g.Go(func() (err error) {
		campaigns, err = s.repo.Campaigns(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.repo.AgentStats(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		processed, err = s.repo.ProcessedSince(gctx, s.startOfToday(), campaign)
		return err
	})
	g.Go(func() (err error) {
		sources, err = s.repo.LeadsBySource(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, err
	}

	res := transport.DashboardResponse{
		Range:    rangeName,
		Campaign: campaign,
		KPIs: transport.KPIs{
			TotalLeadsUploaded:    totals.Leads,
			TotalConvertedLeads:   totals.Converted,
			OverallConversionRate: rate(totals.Converted, totals.Leads),
			TotalActiveAgents:     agents,
		},
		ConversionByAgent: make([]transport.AgentConversion, 0, len(stats)),
		LeadsBySource:     make([]transport.SourceCount, 0, len(sources)),
		Campaigns:         campaigns,
	}
	for _, a := range stats {
		res.ConversionByAgent = append(res.ConversionByAgent, transport.AgentConversion{
			AgentID:             a.AgentID,
			AgentName:           a.AgentName,
			LeadsAssigned:       a.Assigned,
			LeadsProcessedToday: processed[a.AgentID],
			ConvertedLeads:      a.Converted,
			ConversionRate:      rate(a.Converted, a.Assigned),
		})
	}
	for _, src := range sources {
		res.LeadsBySource = append(res.LeadsBySource, transport.SourceCount{SourcePlatform: src.SourcePlatform, TotalLeads: src.Total})
	}
	return res, nil
}

// Trends buckets lead intake: the last 30 days, 12 weeks or 12 months.
func (s *Service) Trends(ctx context.Context, period string) (transport.TrendsResponse, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = PeriodDaily
	}

	today := s.startOfToday()
	var (
		unit   string
		since  time.Time
		layout string
	)
	switch period {
	case PeriodDaily:
		unit, since, layout = "day", today.AddDate(0, 0, -29), "2006-01-02"
	case PeriodWeekly:
		unit, since, layout = "week", today.AddDate(0, 0, -7*11), "2006-01-02"
	case PeriodMonthly:
		unit, since, layout = "month", time.Date(today.Year(), today.Month()-11, 1, 0, 0, 0, 0, today.Location()), "2006-01"
	default:
		return transport.TrendsResponse{}, apperr.BadRequest("invalid period, expected daily, weekly or monthly")
	}

	points, err := s.repo.Trend(ctx, unit, since)
	if err != nil {
		return transport.TrendsResponse{}, err
	}

	res := transport.TrendsResponse{Period: period, Points: make([]transport.TrendPoint, 0, len(points))}
	for _, p := range points {
		res.Points = append(res.Points, transport.TrendPoint{
			Period:         p.Bucket.Format(layout),
			TotalLeads:     p.Total,
			ConvertedLeads: p.Converted,
			ConversionRate: rate(p.Converted, p.Total),
		})
	}
	return res, nil
}

func (s *Service) rangeStart(name string) (*time.Time, error) {
	var days int
	switch name {
	case RangeWeek:
		days = 7
	case RangeMonth:
		days = 30
	case RangeQuarter:
		days = 90
	case RangeAll:
		return nil, nil
	default:
		return nil, apperr.BadRequest("invalid range, expected 7d, 30d, 90d or all")
	}
	since := s.now().AddDate(0, 0, -days)
	return &since, nil
}

func (s *Service) startOfToday() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// rate is a percentage; zero when there is nothing to divide by.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
