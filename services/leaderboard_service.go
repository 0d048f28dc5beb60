package services

import (
	"context"
	"fmt"

	"github.com/fieldline/stage-system/cache"
	"github.com/fieldline/stage-system/models"
	"github.com/fieldline/stage-system/repositories"
)

func leaderboardCacheKey(stageID int) string {
	return fmt.Sprintf("leaderboard:%d", stageID)
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, stageID int) ([]*models.RankingEntry, error)
}

type leaderboardService struct {
	rankingRepo repositories.RankingRepository
	cache       *cache.Store
}

func NewLeaderboardService(rankingRepo repositories.RankingRepository, cacheStore *cache.Store) LeaderboardService {
	return &leaderboardService{
		rankingRepo: rankingRepo,
		cache:       cacheStore,
	}
}

// GetLeaderboard serves the stored rankings, cached until the next
// recompute invalidates them.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, stageID int) ([]*models.RankingEntry, error) {
	key := leaderboardCacheKey(stageID)
	if cached, ok := s.cache.Get(key); ok {
		if entries, ok := cached.([]*models.RankingEntry); ok {
			return entries, nil
		}
	}

	entries, err := s.rankingRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard for stage %d: %w", stageID, err)
	}

	s.cache.Set(key, entries)
	return entries, nil
}
