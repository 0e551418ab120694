package api

import (
	"context"
	"net/url"
	"strconv"
)

// DashboardService groups the overview/analytics operations.
type DashboardService struct {
	c *Client
}

// Summary returns the landing-page counters, optionally scoped to one
// department.
func (s *DashboardService) Summary(ctx context.Context, department string) (*DashboardSummary, error) {
	q := url.Values{}
	if department != "" {
		q.Set("department", department)
	}
	env, err := get[DashboardSummary](ctx, s.c, "/api/v1/dashboard/summary", q)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// RiskDistribution buckets the population for one risk model.
func (s *DashboardService) RiskDistribution(ctx context.Context, riskType RiskType, department string) (*RiskDistribution, error) {
	q := url.Values{}
	q.Set("risk_type", string(riskType))
	if department != "" {
		q.Set("department", department)
	}
	env, err := get[RiskDistribution](ctx, s.c, "/api/v1/dashboard/risk-distribution", q)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// RecentAlerts returns the newest alerts for the dashboard feed.
func (s *DashboardService) RecentAlerts(ctx context.Context, limit int) ([]Alert, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	env, err := get[[]Alert](ctx, s.c, "/api/v1/dashboard/recent-alerts", q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Trends returns a metric series over a period ("24h", "7d", "30d").
func (s *DashboardService) Trends(ctx context.Context, metric, period string) (*TrendSeries, error) {
	q := url.Values{}
	q.Set("metric", metric)
	if period != "" {
		q.Set("period", period)
	}
	env, err := get[TrendSeries](ctx, s.c, "/api/v1/dashboard/trends", q)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Performance returns per-department operational rollups.
func (s *DashboardService) Performance(ctx context.Context, department string) ([]DepartmentPerformance, error) {
	q := url.Values{}
	if department != "" {
		q.Set("department", department)
	}
	env, err := get[[]DepartmentPerformance](ctx, s.c, "/api/v1/dashboard/performance", q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
