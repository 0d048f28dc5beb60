package services

import (
	"context"
	"testing"
	"time"

	"github.com/fieldline/stage-system/cache"
	"github.com/fieldline/stage-system/models"
	"github.com/fieldline/stage-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRankingRepo struct {
	entries      []*models.RankingEntry
	calls        int
	replaceCalls int
}

func (s *stubRankingRepo) ReplaceForStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, entries []*models.RankingEntry) error {
	s.entries = entries
	s.replaceCalls++
	return nil
}

func (s *stubRankingRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.RankingEntry, error) {
	s.calls++
	return s.entries, nil
}

func TestGetLeaderboardCachesUntilInvalidated(t *testing.T) {
	repo := &stubRankingRepo{entries: []*models.RankingEntry{
		{TeamID: "t1", TeamName: "Alpha", Rank: 1},
		{TeamID: "t2", TeamName: "Beta", Rank: 2},
	}}
	store := cache.NewStore(time.Minute)
	svc := NewLeaderboardService(repo, store)

	first, err := svc.GetLeaderboard(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, repo.calls)

	second, err := svc.GetLeaderboard(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls, "second read should come from the cache")

	store.Delete(leaderboardCacheKey(7))

	_, err = svc.GetLeaderboard(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls, "invalidation should force a reload")
}

func TestGetLeaderboardKeysAreStageScoped(t *testing.T) {
	repo := &stubRankingRepo{}
	store := cache.NewStore(time.Minute)
	svc := NewLeaderboardService(repo, store)

	_, err := svc.GetLeaderboard(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.GetLeaderboard(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}
