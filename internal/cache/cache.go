package cache

import (
	"context"
	"time"

	"frontoffice/internal/domain"
)

type DashboardCache interface {
	Get(ctx context.Context, branchID string) (*domain.DashboardStats, bool, error)
	Set(ctx context.Context, branchID string, value *domain.DashboardStats, ttl time.Duration) error
	Invalidate(ctx context.Context, branchID string) error
}

type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(_ context.Context, _ string) (*domain.DashboardStats, bool, error) {
	return nil, false, nil
}

func (NoopDashboardCache) Set(_ context.Context, _ string, _ *domain.DashboardStats, _ time.Duration) error {
	return nil
}

func (NoopDashboardCache) Invalidate(_ context.Context, _ string) error {
	return nil
}

func dashboardKey(branchID string) string {
	return "frontoffice:dashboard:" + branchID
}
