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
	"github.com/fieldline/stage-system/schedule"
	"golang.org/x/sync/errgroup"
)

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrTeamNotFound  = errors.New("team not found")
)

type CreateStageInput struct {
	Name             string             `json:"name"`
	Format           models.StageFormat `json:"format"`
	Rounds           int                `json:"rounds"`
	TeamsPerAlliance int                `json:"teams_per_alliance"`
	MinMatchGap      *int               `json:"min_match_gap"`
	AllowSurrogates  *bool              `json:"allow_surrogates"`
	Fields           int                `json:"fields"`
}

// StageDetail bundles everything a stage page needs in one response.
type StageDetail struct {
	Stage    *models.Stage          `json:"stage"`
	Teams    []*models.Team         `json:"teams"`
	Matches  []*models.Match        `json:"matches"`
	Rankings []*models.RankingEntry `json:"rankings"`
}

// GeneratedSchedule is the result of (re)generating a stage's matches.
type GeneratedSchedule struct {
	Matches  []*models.Match `json:"matches"`
	Warnings []string        `json:"warnings"`
}

type StageService interface {
	CreateStage(ctx context.Context, input CreateStageInput) (*models.Stage, error)
	GetStage(ctx context.Context, id int) (*models.Stage, error)
	GetStageDetail(ctx context.Context, id int) (*StageDetail, error)
	ListStages(ctx context.Context) ([]*models.Stage, error)
	DeleteStage(ctx context.Context, id int) error

	AssignTeams(ctx context.Context, stageID int, teamIDs []string) error
	GenerateMatches(ctx context.Context, stageID int) (*GeneratedSchedule, error)
}

type stageService struct {
	db          *sql.DB
	stageRepo   repositories.StageRepository
	teamRepo    repositories.TeamRepository
	matchRepo   repositories.MatchRepository
	rankingRepo repositories.RankingRepository
	cache       *cache.Store
	notifier    live.Notifier
	logger      *slog.Logger
}

func NewStageService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	rankingRepo repositories.RankingRepository,
	cacheStore *cache.Store,
	notifier live.Notifier,
	logger *slog.Logger,
) StageService {
	return &stageService{
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

func (s *stageService) CreateStage(ctx context.Context, input CreateStageInput) (*models.Stage, error) {
	if input.Name == "" {
		return nil, ErrStageNameRequired
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStageFormat, input.Format)
	}

	stage := &models.Stage{
		Name:             input.Name,
		Format:           input.Format,
		Rounds:           input.Rounds,
		TeamsPerAlliance: input.TeamsPerAlliance,
		MinMatchGap:      schedule.DefaultMinMatchGap,
		AllowSurrogates:  true,
		Fields:           input.Fields,
	}
	if stage.Rounds <= 0 {
		stage.Rounds = 1
	}
	if stage.TeamsPerAlliance <= 0 {
		stage.TeamsPerAlliance = 1
	}
	if stage.Fields <= 0 {
		stage.Fields = 1
	}
	if input.MinMatchGap != nil {
		if *input.MinMatchGap < 0 {
			return nil, fmt.Errorf("%w: min match gap must not be negative", ErrValidationFailed)
		}
		stage.MinMatchGap = *input.MinMatchGap
	}
	if input.AllowSurrogates != nil {
		stage.AllowSurrogates = *input.AllowSurrogates
	}

	if err := s.stageRepo.Create(ctx, nil, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}
	return stage, nil
}

func (s *stageService) GetStage(ctx context.Context, id int) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return stage, nil
}

// GetStageDetail loads the stage and its teams, matches and rankings in
// parallel.
func (s *stageService) GetStageDetail(ctx context.Context, id int) (*StageDetail, error) {
	stage, err := s.GetStage(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &StageDetail{Stage: stage}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.ListByStage(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load stage teams: %w", err)
		}
		detail.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByStage(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load stage matches: %w", err)
		}
		detail.Matches = matches
		return nil
	})
	g.Go(func() error {
		entries, err := s.rankingRepo.ListByStage(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to load stage rankings: %w", err)
		}
		detail.Rankings = entries
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *stageService) ListStages(ctx context.Context) ([]*models.Stage, error) {
	return s.stageRepo.List(ctx, nil)
}

func (s *stageService) DeleteStage(ctx context.Context, id int) error {
	if err := s.stageRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return err
	}
	s.cache.Delete(leaderboardCacheKey(id))
	s.notifier.Publish(live.Event{Kind: live.EventStageUpdated, StageID: id})
	return nil
}

// AssignTeams replaces the stage roster and recomputes the leaderboard over
// the new roster in the same transaction, so rankings of removed teams never
// outlive their assignment. An emptied roster yields an empty leaderboard.
func (s *stageService) AssignTeams(ctx context.Context, stageID int, teamIDs []string) error {
	if _, err := s.GetStage(ctx, stageID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.stageRepo.AssignTeams(ctx, tx, stageID, teamIDs); err != nil {
		if errors.Is(err, repositories.ErrStageTeamNotExists) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to assign teams to stage %d: %w", stageID, err)
	}

	teams, err := s.teamRepo.ListByStage(ctx, tx, stageID)
	if err != nil {
		return fmt.Errorf("failed to load teams for stage %d: %w", stageID, err)
	}
	matches, err := s.matchRepo.ListByStage(ctx, tx, stageID)
	if err != nil {
		return fmt.Errorf("failed to load matches for stage %d: %w", stageID, err)
	}

	entries := rankings.Compute(teams, matches)
	for _, entry := range entries {
		entry.StageID = stageID
	}
	if err := s.rankingRepo.ReplaceForStage(ctx, tx, stageID, entries); err != nil {
		return fmt.Errorf("failed to recompute rankings for stage %d: %w", stageID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster for stage %d: %w", stageID, err)
	}

	s.cache.Delete(leaderboardCacheKey(stageID))
	s.notifier.Publish(live.Event{Kind: live.EventStageUpdated, StageID: stageID})
	s.notifier.Publish(live.Event{Kind: live.EventLeaderboardUpdated, StageID: stageID})
	return nil
}

// GenerateMatches replaces the stage's schedule wholesale: generate a fresh
// bracket, persist it with its dependencies, and reset the leaderboard. The
// whole swap runs in one transaction.
func (s *stageService) GenerateMatches(ctx context.Context, stageID int) (*GeneratedSchedule, error) {
	stage, err := s.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByStage(ctx, nil, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for stage %d: %w", stageID, err)
	}
	if len(teams) == 0 {
		return nil, ErrStageHasNoTeams
	}

	generator, err := brackets.ForFormat(stage.Format)
	if err != nil {
		return nil, err
	}
	bracket, err := generator.Generate(brackets.GenerateParams{Stage: stage, Teams: teams})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s bracket: %w", generator.Name(), err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.ReplaceForStage(ctx, tx, stageID, bracket.Matches); err != nil {
		return nil, fmt.Errorf("failed to persist matches for stage %d: %w", stageID, err)
	}

	// Generators link matches by UID; resolve those links to the row ids
	// assigned above.
	idByUID := make(map[string]int, len(bracket.Matches))
	for _, m := range bracket.Matches {
		idByUID[m.UID] = m.ID
	}
	deps := make([]models.MatchDependency, 0, len(bracket.Dependencies))
	for _, dep := range bracket.Dependencies {
		targetID, ok := idByUID[dep.TargetUID]
		if !ok {
			return nil, fmt.Errorf("dependency targets unknown match uid %s", dep.TargetUID)
		}
		sourceID, ok := idByUID[dep.SourceUID]
		if !ok {
			return nil, fmt.Errorf("dependency references unknown match uid %s", dep.SourceUID)
		}
		deps = append(deps, models.MatchDependency{
			StageID:       stageID,
			TargetMatchID: targetID,
			TargetSide:    dep.TargetSide,
			SourceMatchID: sourceID,
			Outcome:       dep.Outcome,
		})
	}
	if err := s.matchRepo.ReplaceDependencies(ctx, tx, stageID, deps); err != nil {
		return nil, fmt.Errorf("failed to persist dependencies for stage %d: %w", stageID, err)
	}

	entries := rankings.Compute(teams, bracket.Matches)
	for _, entry := range entries {
		entry.StageID = stageID
	}
	if err := s.rankingRepo.ReplaceForStage(ctx, tx, stageID, entries); err != nil {
		return nil, fmt.Errorf("failed to reset rankings for stage %d: %w", stageID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit schedule for stage %d: %w", stageID, err)
	}

	s.cache.Delete(leaderboardCacheKey(stageID))
	s.notifier.Publish(live.Event{Kind: live.EventMatchesUpdated, StageID: stageID, Payload: jsonWarnings(bracket.Warnings)})
	s.notifier.Publish(live.Event{Kind: live.EventLeaderboardUpdated, StageID: stageID})

	for _, warning := range bracket.Warnings {
		s.logger.WarnContext(ctx, "schedule warning",
			slog.Int("stage_id", stageID),
			slog.String("warning", warning))
	}

	return &GeneratedSchedule{Matches: bracket.Matches, Warnings: bracket.Warnings}, nil
}

func jsonWarnings(warnings []string) map[string][]string {
	if len(warnings) == 0 {
		return nil
	}
	return map[string][]string{"warnings": warnings}
}
