package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fieldline/stage-system/cache"
	"github.com/fieldline/stage-system/live"
	"github.com/fieldline/stage-system/models"
	"github.com/fieldline/stage-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	events []live.Event
}

func (s *stubNotifier) Publish(event live.Event) {
	s.events = append(s.events, event)
}

func (s *stubNotifier) kinds() []live.EventKind {
	kinds := make([]live.EventKind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type stubStageRepo struct {
	stage    *models.Stage
	assigned []string
}

func (s *stubStageRepo) Create(ctx context.Context, exec repositories.SQLExecutor, stage *models.Stage) error {
	return nil
}

func (s *stubStageRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Stage, error) {
	if s.stage == nil || s.stage.ID != id {
		return nil, repositories.ErrStageNotFound
	}
	return s.stage, nil
}

func (s *stubStageRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Stage, error) {
	return []*models.Stage{s.stage}, nil
}

func (s *stubStageRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	return nil
}

func (s *stubStageRepo) AssignTeams(ctx context.Context, exec repositories.SQLExecutor, stageID int, teamIDs []string) error {
	s.assigned = teamIDs
	return nil
}

type stubTeamRepo struct {
	stageTeams []*models.Team
}

func (s *stubTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	return nil
}

func (s *stubTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Team, error) {
	return nil, repositories.ErrTeamNotFound
}

func (s *stubTeamRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.Team, error) {
	return s.stageTeams, nil
}

func (s *stubTeamRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, id string, logoKey *string) error {
	return nil
}

func (s *stubTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	return nil
}

func (s *stubTeamRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.Team, error) {
	return s.stageTeams, nil
}

type stubMatchRepo struct {
	matches        []*models.Match
	updateScoreErr error
	scoreUpdates   int
}

func (s *stubMatchRepo) ReplaceForStage(ctx context.Context, exec repositories.SQLExecutor, stageID int, matches []*models.Match) error {
	s.matches = matches
	return nil
}

func (s *stubMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	for _, m := range s.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (s *stubMatchRepo) ListByStage(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]*models.Match, error) {
	return s.matches, nil
}

func (s *stubMatchRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, id int, homeScore, awayScore int, winnerTeamID *string, status models.MatchStatus) error {
	s.scoreUpdates++
	return s.updateScoreErr
}

func (s *stubMatchRepo) UpdateParticipants(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	return nil
}

func (s *stubMatchRepo) ReplaceDependencies(ctx context.Context, exec repositories.SQLExecutor, stageID int, deps []models.MatchDependency) error {
	return nil
}

func (s *stubMatchRepo) ListDependencies(ctx context.Context, exec repositories.SQLExecutor, stageID int) ([]models.MatchDependency, error) {
	return nil, nil
}

func completedMatch(id int, home, away string, homeScore, awayScore int) *models.Match {
	winner := home
	if awayScore > homeScore {
		winner = away
	}
	return &models.Match{
		ID:           id,
		UID:          "R1M1",
		Round:        1,
		MatchNumber:  id,
		Status:       models.MatchStatusCompleted,
		HomeTeamID:   &home,
		AwayTeamID:   &away,
		HomeScore:    &homeScore,
		AwayScore:    &awayScore,
		WinnerTeamID: &winner,
	}
}

func TestAssignTeamsRecomputesLeaderboardForNewRoster(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	stageRepo := &stubStageRepo{stage: &models.Stage{ID: 7, Format: models.StageFormatRoundRobin}}
	teamRepo := &stubTeamRepo{stageTeams: []*models.Team{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
	}}
	matchRepo := &stubMatchRepo{matches: []*models.Match{
		completedMatch(1, "a", "b", 30, 20),
		completedMatch(2, "a", "c", 10, 40),
	}}
	rankingRepo := &stubRankingRepo{}
	notifier := &stubNotifier{}
	store := cache.NewStore(time.Minute)
	store.Set(leaderboardCacheKey(7), "stale")

	svc := NewStageService(db, stageRepo, teamRepo, matchRepo, rankingRepo, store, notifier, slog.Default())

	err = svc.AssignTeams(context.Background(), 7, []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, stageRepo.assigned)
	require.Equal(t, 1, rankingRepo.replaceCalls)
	require.Len(t, rankingRepo.entries, 2, "removed team must not keep a ranking row")
	for _, entry := range rankingRepo.entries {
		assert.NotEqual(t, "c", entry.TeamID)
		assert.Equal(t, 7, entry.StageID)
	}

	_, cached := store.Get(leaderboardCacheKey(7))
	assert.False(t, cached, "stale leaderboard must be invalidated")
	assert.Equal(t, []live.EventKind{live.EventStageUpdated, live.EventLeaderboardUpdated}, notifier.kinds())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignTeamsEmptiedRosterYieldsEmptyLeaderboard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	stageRepo := &stubStageRepo{stage: &models.Stage{ID: 7, Format: models.StageFormatRoundRobin}}
	rankingRepo := &stubRankingRepo{entries: []*models.RankingEntry{{TeamID: "a", Rank: 1}}}
	notifier := &stubNotifier{}
	store := cache.NewStore(time.Minute)
	store.Set(leaderboardCacheKey(7), "stale")

	svc := NewStageService(db, stageRepo, &stubTeamRepo{}, &stubMatchRepo{}, rankingRepo, store, notifier, slog.Default())

	err = svc.AssignTeams(context.Background(), 7, nil)
	require.NoError(t, err)

	require.Equal(t, 1, rankingRepo.replaceCalls)
	assert.Empty(t, rankingRepo.entries)

	_, cached := store.Get(leaderboardCacheKey(7))
	assert.False(t, cached)
	assert.Contains(t, notifier.kinds(), live.EventLeaderboardUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
