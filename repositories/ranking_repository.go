package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldline/stage-system/models"
)

var ErrRankingsNotFound = errors.New("rankings not found for stage")

type RankingRepository interface {
	// ReplaceForStage swaps the stored leaderboard for the given stage in
	// one pass: delete everything, then batch insert the new entries.
	ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, entries []*models.RankingEntry) error
	ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.RankingEntry, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) ReplaceForStage(ctx context.Context, exec SQLExecutor, stageID int, entries []*models.RankingEntry) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM stage_rankings WHERE stage_id = $1`, stageID); err != nil {
		return fmt.Errorf("failed to clear rankings for stage %d: %w", stageID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`
		INSERT INTO stage_rankings (stage_id, team_id, rank, games_played, wins, losses, ties,
			ranking_points, total_score, total_against, lose_rate, match_history) VALUES `)
	args := make([]interface{}, 0, len(entries)*12)
	for i, entry := range entries {
		history, err := json.Marshal(entry.History)
		if err != nil {
			return fmt.Errorf("failed to marshal match history for team %s: %w", entry.TeamID, err)
		}
		if i > 0 {
			query.WriteString(", ")
		}
		base := i * 12
		placeholders := make([]string, 12)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		query.WriteString("(" + strings.Join(placeholders, ", ") + ")")
		args = append(args,
			stageID, entry.TeamID, entry.Rank, entry.GamesPlayed, entry.Wins, entry.Losses, entry.Ties,
			entry.RankingPoints, entry.TotalScore, entry.TotalAgainst, entry.LoseRate, history,
		)
	}

	if _, err := executor.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("failed to insert rankings for stage %d: %w", stageID, err)
	}
	return nil
}

func (r *postgresRankingRepository) ListByStage(ctx context.Context, exec SQLExecutor, stageID int) ([]*models.RankingEntry, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT sr.id, sr.stage_id, sr.team_id, t.name, sr.rank, sr.games_played,
			sr.wins, sr.losses, sr.ties, sr.ranking_points, sr.total_score,
			sr.total_against, sr.lose_rate, sr.match_history, sr.updated_at
		FROM stage_rankings sr
		JOIN teams t ON t.id = sr.team_id
		WHERE sr.stage_id = $1
		ORDER BY sr.rank ASC`

	rows, err := executor.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	entries := make([]*models.RankingEntry, 0)
	for rows.Next() {
		entry := &models.RankingEntry{}
		var history []byte
		err := rows.Scan(
			&entry.ID, &entry.StageID, &entry.TeamID, &entry.TeamName, &entry.Rank, &entry.GamesPlayed,
			&entry.Wins, &entry.Losses, &entry.Ties, &entry.RankingPoints, &entry.TotalScore,
			&entry.TotalAgainst, &entry.LoseRate, &history, &entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &entry.History); err != nil {
				return nil, fmt.Errorf("failed to unmarshal match history for team %s: %w", entry.TeamID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
