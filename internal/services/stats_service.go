package services

import (
	"context"
	"math"
	"time"

	"vectora/internal/models"
	"vectora/internal/repositories"
)

const weekDays = 7

type StatsService interface {
	Overview(ctx context.Context, userID int64) (*models.StatsOverview, error)
	Weekly(ctx context.Context, userID int64) (*models.WeeklyStats, error)
}

type statsService struct {
	repo repositories.StatsRepository
	now  func() time.Time
}

func NewStatsService(repo repositories.StatsRepository, now func() time.Time) StatsService {
	if now == nil {
		now = time.Now
	}
	return &statsService{repo: repo, now: now}
}

func (s *statsService) Overview(ctx context.Context, userID int64) (*models.StatsOverview, error) {
	o, err := s.repo.Overview(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	o.Pending = o.Total - o.Completed
	if o.Total > 0 {
		o.CompletionRate = math.Round(float64(o.Completed)/float64(o.Total)*1000) / 10
	}
	return o, nil
}

// Weekly covers the last seven calendar days, today included.
func (s *statsService) Weekly(ctx context.Context, userID int64) (*models.WeeklyStats, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(weekDays - 1))
	daily, err := s.repo.Daily(ctx, userID, from, today)
	if err != nil {
		return nil, err
	}
	return &models.WeeklyStats{Daily: daily}, nil
}
