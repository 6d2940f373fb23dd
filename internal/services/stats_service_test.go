package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectora/internal/models"
)

type fakeStatsRepo struct {
	overview  models.StatsOverview
	from, to  time.Time
	gotUserID int64
}

func (f *fakeStatsRepo) Overview(_ context.Context, userID int64, _ time.Time) (*models.StatsOverview, error) {
	f.gotUserID = userID
	o := f.overview
	return &o, nil
}

func (f *fakeStatsRepo) Daily(_ context.Context, userID int64, from, to time.Time) ([]models.DailyStat, error) {
	f.gotUserID, f.from, f.to = userID, from, to
	return []models.DailyStat{{Date: from.Format("2006-01-02")}}, nil
}

func TestStatsService_Overview(t *testing.T) {
	repo := &fakeStatsRepo{overview: models.StatsOverview{Total: 3, Completed: 1}}
	svc := NewStatsService(repo, func() time.Time { return testNow })

	o, err := svc.Overview(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), repo.gotUserID)
	assert.Equal(t, 2, o.Pending)
	assert.Equal(t, 33.3, o.CompletionRate)

	repo.overview = models.StatsOverview{}
	o, err = svc.Overview(context.Background(), 4)
	require.NoError(t, err)
	assert.Zero(t, o.CompletionRate)
}

func TestStatsService_WeeklyIncludesToday(t *testing.T) {
	repo := &fakeStatsRepo{}
	svc := NewStatsService(repo, func() time.Time { return testNow })

	w, err := svc.Weekly(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), repo.to)
	assert.Equal(t, time.Date(2025, 2, 23, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Len(t, w.Daily, 1)
}
