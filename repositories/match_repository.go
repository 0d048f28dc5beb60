package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldline/stage-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchUIDConflict  = errors.New("match uid already exists for the stage")
	ErrMatchNotScheduled = errors.New("match is no longer in a scheduled state")
)

type MatchRepository interface {
	// ReplaceForStage drops every match of the stage and inserts the given
	// ones. Row ids are written back into the slice, so callers can wire
	// dependencies afterwards.
	ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int, winnerTeamID *string, status models.MatchStatus) error
	UpdateParticipants(ctx context.Context, exec SQLExecutor, match *models.Match) error

	ReplaceDependencies(ctx context.Context, exec SQLExecutor, stageID int, deps []models.MatchDependency) error
	ListDependencies(ctx context.Context, exec SQLExecutor, stageID int) ([]models.MatchDependency, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, matches []*models.Match) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE stage_id = $1`, stageID); err != nil {
		return fmt.Errorf("failed to clear matches for stage %d: %w", stageID, err)
	}

	insertQuery := `
		INSERT INTO matches (stage_id, uid, round, match_number, field_number, status,
			home_team_id, away_team_id, home_placeholder, away_placeholder)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, insertQuery,
			stageID, m.UID, m.Round, m.MatchNumber, m.FieldNumber, m.Status,
			m.HomeTeamID, m.AwayTeamID, m.HomePlaceholder, m.AwayPlaceholder,
		).Scan(&m.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Constraint == "matches_stage_id_uid_key" {
				return ErrMatchUIDConflict
			}
			return fmt.Errorf("failed to insert match %s for stage %d: %w", m.UID, stageID, err)
		}
		m.StageID = stageID

		if err := r.insertSlots(ctx, executor, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) insertSlots(ctx context.Context, executor SQLExecutor, m *models.Match) error {
	if len(m.Slots) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO match_slots (match_id, team_id, station, color, is_surrogate) VALUES `)
	args := make([]interface{}, 0, len(m.Slots)*5)
	for i := range m.Slots {
		slot := &m.Slots[i]
		slot.MatchID = m.ID
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))
		args = append(args, slot.MatchID, slot.TeamID, slot.Station, slot.Color, slot.Surrogate)
	}

	if _, err := executor.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("failed to insert slots for match %s: %w", m.UID, err)
	}
	return nil
}

const matchColumns = `id, stage_id, uid, round, match_number, field_number, status,
	home_team_id, away_team_id, home_placeholder, away_placeholder,
	home_score, away_score, winner_team_id, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.StageID, &m.UID, &m.Round, &m.MatchNumber, &m.FieldNumber, &m.Status,
		&m.HomeTeamID, &m.AwayTeamID, &m.HomePlaceholder, &m.AwayPlaceholder,
		&m.HomeScore, &m.AwayScore, &m.WinnerTeamID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE id = $1`, matchColumns)

	m, err := scanMatch(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	query := fmt.Sprintf(`SELECT %s FROM matches WHERE stage_id = $1 ORDER BY match_number ASC`, matchColumns)

	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	byID := make(map[int]*models.Match)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachSlots(ctx, executor, stageID, byID); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) attachSlots(ctx context.Context, executor SQLExecutor, stageID int, byID map[int]*models.Match) error {
	if len(byID) == 0 {
		return nil
	}
	query := `
		SELECT s.match_id, s.team_id, s.station, s.color, s.is_surrogate
		FROM match_slots s
		JOIN matches m ON m.id = s.match_id
		WHERE m.stage_id = $1
		ORDER BY s.match_id ASC, s.station ASC`

	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return fmt.Errorf("failed to query slots for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot models.ScheduledSlot
		if err := rows.Scan(&slot.MatchID, &slot.TeamID, &slot.Station, &slot.Color, &slot.Surrogate); err != nil {
			return fmt.Errorf("failed to scan slot row: %w", err)
		}
		if m, ok := byID[slot.MatchID]; ok {
			m.Slots = append(m.Slots, slot)
		}
	}
	return rows.Err()
}

// UpdateScore writes a result onto a still-scheduled match. The status
// predicate makes the write race-safe: a concurrent submitter that loses the
// race matches zero rows and gets ErrMatchNotScheduled instead of silently
// overwriting a completed result.
func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore int, winnerTeamID *string, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET home_score = $1, away_score = $2, winner_team_id = $3, status = $4
		WHERE id = $5 AND status = $6`
	result, err := executor.ExecContext(ctx, query, homeScore, awayScore, winnerTeamID, status, id, models.MatchStatusScheduled)
	if err != nil {
		return fmt.Errorf("failed to update score for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotScheduled)
}

func (r *postgresMatchRepository) UpdateParticipants(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET home_team_id = $1, away_team_id = $2, home_placeholder = $3, away_placeholder = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query,
		match.HomeTeamID, match.AwayTeamID, match.HomePlaceholder, match.AwayPlaceholder, match.ID)
	if err != nil {
		return fmt.Errorf("failed to update participants for match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ReplaceDependencies(ctx context.Context, exec SQLExecutor, stageID int, deps []models.MatchDependency) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM match_dependencies WHERE stage_id = $1`, stageID); err != nil {
		return fmt.Errorf("failed to clear dependencies for stage %d: %w", stageID, err)
	}
	if len(deps) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO match_dependencies (stage_id, target_match_id, target_side, source_match_id, outcome) VALUES `)
	args := make([]interface{}, 0, len(deps)*5)
	for i, dep := range deps {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))
		args = append(args, stageID, dep.TargetMatchID, dep.TargetSide, dep.SourceMatchID, dep.Outcome)
	}

	if _, err := executor.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("failed to insert dependencies for stage %d: %w", stageID, err)
	}
	return nil
}

func (r *postgresMatchRepository) ListDependencies(ctx context.Context, exec SQLExecutor, stageID int) ([]models.MatchDependency, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, stage_id, target_match_id, target_side, source_match_id, outcome
		FROM match_dependencies
		WHERE stage_id = $1
		ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	deps := make([]models.MatchDependency, 0)
	for rows.Next() {
		var dep models.MatchDependency
		err := rows.Scan(&dep.ID, &dep.StageID, &dep.TargetMatchID, &dep.TargetSide, &dep.SourceMatchID, &dep.Outcome)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dependency row: %w", err)
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}
