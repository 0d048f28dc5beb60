package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrStageNameRequired     = errors.New("stage name is required")
	ErrInvalidStageFormat    = errors.New("invalid stage format")
	ErrStageHasNoTeams       = errors.New("stage has no assigned teams")
	ErrMatchNotEditable      = errors.New("match is not editable in its current status")
	ErrScoreNegative         = errors.New("scores must not be negative")
	ErrParticipantsUnsettled = errors.New("match participants are not settled yet")

	ErrTeamNameRequired = errors.New("team name is required")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
)
