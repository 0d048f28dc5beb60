package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fieldline/stage-system/brackets"
	"github.com/fieldline/stage-system/cache"
	"github.com/fieldline/stage-system/live"
	"github.com/fieldline/stage-system/models"
	"github.com/fieldline/stage-system/rankings"
	"github.com/fieldline/stage-system/repositories"
)

var ErrMatchNotFound = errors.New("match not found")

type SubmitResultInput struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int) ([]*models.Match, error)

	// SubmitResult records a score, advances dependent matches and
	// recomputes the stage leaderboard, all in one transaction.
	SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error)
}

type matchService struct {
	db          *sql.DB
	stageRepo   repositories.StageRepository
	teamRepo    repositories.TeamRepository
	matchRepo   repositories.MatchRepository
	rankingRepo repositories.RankingRepository
	cache       *cache.Store
	notifier    live.Notifier
	logger      *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	rankingRepo repositories.RankingRepository,
	cacheStore *cache.Store,
	notifier live.Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:          db,
		stageRepo:   stageRepo,
		teamRepo:    teamRepo,
		matchRepo:   matchRepo,
		rankingRepo: rankingRepo,
		cache:       cacheStore,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByStage(ctx context.Context, stageID int) ([]*models.Match, error) {
	return s.matchRepo.ListByStage(ctx, nil, stageID)
}

func (s *matchService) SubmitResult(ctx context.Context, matchID int, input SubmitResultInput) (*models.Match, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusScheduled {
		return nil, fmt.Errorf("%w: status is %s", ErrMatchNotEditable, match.Status)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, ErrScoreNegative
	}
	if match.HomeTeamID == nil || match.AwayTeamID == nil {
		return nil, ErrParticipantsUnsettled
	}

	stage, err := s.stageRepo.GetByID(ctx, nil, match.StageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage %d: %w", match.StageID, err)
	}

	// Draws only make sense where nothing advances on the result.
	if input.HomeScore == input.AwayScore && stage.Format == models.StageFormatDoubleElimination {
		return nil, brackets.ErrDrawNotAllowed
	}

	var winnerTeamID *string
	switch {
	case input.HomeScore > input.AwayScore:
		winnerTeamID = match.HomeTeamID
	case input.AwayScore > input.HomeScore:
		winnerTeamID = match.AwayTeamID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = s.matchRepo.UpdateScore(ctx, tx, matchID, input.HomeScore, input.AwayScore, winnerTeamID, models.MatchStatusCompleted)
	if err != nil {
		// A concurrent submitter may have completed the match after our read.
		if errors.Is(err, repositories.ErrMatchNotScheduled) {
			return nil, fmt.Errorf("%w: result was already recorded", ErrMatchNotEditable)
		}
		return nil, fmt.Errorf("failed to record result for match %d: %w", matchID, err)
	}
	match.HomeScore = &input.HomeScore
	match.AwayScore = &input.AwayScore
	match.WinnerTeamID = winnerTeamID
	match.Status = models.MatchStatusCompleted

	matches, err := s.matchRepo.ListByStage(ctx, tx, match.StageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for stage %d: %w", match.StageID, err)
	}
	byID := make(map[int]*models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	byID[match.ID] = match
	for i, m := range matches {
		if m.ID == match.ID {
			matches[i] = match
		}
	}

	if stage.Format == models.StageFormatDoubleElimination {
		deps, err := s.matchRepo.ListDependencies(ctx, tx, match.StageID)
		if err != nil {
			return nil, fmt.Errorf("failed to load dependencies for stage %d: %w", match.StageID, err)
		}
		changed, err := brackets.BuildGraph(deps).Propagate(match, byID)
		if err != nil {
			return nil, fmt.Errorf("failed to advance bracket after match %d: %w", matchID, err)
		}
		for _, target := range changed {
			if err := s.matchRepo.UpdateParticipants(ctx, tx, target); err != nil {
				return nil, fmt.Errorf("failed to persist advancement into match %s: %w", target.UID, err)
			}
		}
	}

	teams, err := s.teamRepo.ListByStage(ctx, tx, match.StageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for stage %d: %w", match.StageID, err)
	}
	entries := rankings.Compute(teams, matches)
	for _, entry := range entries {
		entry.StageID = match.StageID
	}
	if err := s.rankingRepo.ReplaceForStage(ctx, tx, match.StageID, entries); err != nil {
		return nil, fmt.Errorf("failed to update rankings for stage %d: %w", match.StageID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result for match %d: %w", matchID, err)
	}

	s.cache.Delete(leaderboardCacheKey(match.StageID))
	s.notifier.Publish(live.Event{Kind: live.EventMatchesUpdated, StageID: match.StageID, Payload: match})
	s.notifier.Publish(live.Event{Kind: live.EventLeaderboardUpdated, StageID: match.StageID})

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("stage_id", match.StageID),
		slog.String("uid", match.UID))

	return match, nil
}
