package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fieldline/stage-system/models"
	"github.com/fieldline/stage-system/repositories"
	"github.com/fieldline/stage-system/storage"
	"github.com/google/uuid"
)

var ErrTeamNameConflict = errors.New("team name is already in use")

type TeamService interface {
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	DeleteTeam(ctx context.Context, id string) error

	UploadLogo(ctx context.Context, teamID string, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		uploader: uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		s.populateLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id string) error {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return err
	}

	if err := s.teamRepo.Delete(ctx, nil, id); err != nil {
		return err
	}

	if team.LogoKey != nil && *team.LogoKey != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *team.LogoKey); err != nil {
			return fmt.Errorf("team deleted but logo cleanup failed: %w", err)
		}
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID string, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	oldKey := team.LogoKey
	key := fmt.Sprintf("teams/%s/logo%s", teamID, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %s: %w", teamID, err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, nil, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for team %s: %w", teamID, err)
	}
	team.LogoKey = &result.Key

	if oldKey != nil && *oldKey != "" && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			return nil, fmt.Errorf("logo uploaded but previous file cleanup failed: %w", err)
		}
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team == nil || s.uploader == nil || team.LogoKey == nil || *team.LogoKey == "" {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}

func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", fmt.Errorf("unsupported logo content type %q", contentType)
	}
}
