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
	ErrStageNotFound      = errors.New("stage not found")
	ErrStageTeamConflict  = errors.New("team is already assigned to the stage")
	ErrStageTeamNotExists = errors.New("assigned team does not exist")
)

type StageRepository interface {
	Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Stage, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Stage, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	// AssignTeams replaces the stage roster. Seeds follow the order of
	// teamIDs: the first entry gets seed 1.
	AssignTeams(ctx context.Context, exec SQLExecutor, stageID int, teamIDs []string) error
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageRepository) Create(ctx context.Context, exec SQLExecutor, stage *models.Stage) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stages (name, format, rounds, teams_per_alliance, min_match_gap, allow_surrogates, fields)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		stage.Name, stage.Format, stage.Rounds, stage.TeamsPerAlliance,
		stage.MinMatchGap, stage.AllowSurrogates, stage.Fields,
	).Scan(&stage.ID, &stage.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create stage %s: %w", stage.Name, err)
	}
	return nil
}

func (r *postgresStageRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, format, rounds, teams_per_alliance, min_match_gap, allow_surrogates, fields, created_at
		FROM stages WHERE id = $1`

	stage := &models.Stage{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&stage.ID, &stage.Name, &stage.Format, &stage.Rounds, &stage.TeamsPerAlliance,
		&stage.MinMatchGap, &stage.AllowSurrogates, &stage.Fields, &stage.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage %d: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Stage, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, format, rounds, teams_per_alliance, min_match_gap, allow_surrogates, fields, created_at
		FROM stages ORDER BY created_at DESC`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages: %w", err)
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		stage := &models.Stage{}
		err := rows.Scan(
			&stage.ID, &stage.Name, &stage.Format, &stage.Rounds, &stage.TeamsPerAlliance,
			&stage.MinMatchGap, &stage.AllowSurrogates, &stage.Fields, &stage.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) AssignTeams(ctx context.Context, exec SQLExecutor, stageID int, teamIDs []string) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM stage_teams WHERE stage_id = $1`, stageID); err != nil {
		return fmt.Errorf("failed to clear roster for stage %d: %w", stageID, err)
	}
	if len(teamIDs) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO stage_teams (stage_id, team_id, seed) VALUES `)
	args := make([]interface{}, 0, len(teamIDs)*3)
	for i, teamID := range teamIDs {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString(fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		args = append(args, stageID, teamID, i+1)
	}

	if _, err := executor.ExecContext(ctx, query.String(), args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "stage_teams_pkey":
				return ErrStageTeamConflict
			case "stage_teams_team_id_fkey":
				return ErrStageTeamNotExists
			case "stage_teams_stage_id_fkey":
				return ErrStageNotFound
			}
		}
		return fmt.Errorf("failed to assign teams to stage %d: %w", stageID, err)
	}
	return nil
}
