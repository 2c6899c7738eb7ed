package user

import (
	"errors"
	"fmt"

	"relief-portal-go/internal/remote"
)

var (
	ErrProfileNotFound    = fmt.Errorf("profile %w", remote.ErrNotFound)
	ErrUserIDRequired     = errors.New("user id is required")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrDisasterRequired   = errors.New("disaster id is required")
	ErrKindRequired       = errors.New("aid request kind is required")
	ErrContributionTarget = errors.New("contribution needs exactly one of donation or volunteer")
	ErrInvalidAmount      = errors.New("invalid contribution amount")
)
