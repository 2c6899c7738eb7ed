package relief

import (
	"fmt"

	"relief-portal-go/internal/remote"
)

var (
	ErrDisasterNotFound     = fmt.Errorf("disaster %w", remote.ErrNotFound)
	ErrDonationNotFound     = fmt.Errorf("donation %w", remote.ErrNotFound)
	ErrVolunteerNotFound    = fmt.Errorf("volunteer %w", remote.ErrNotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization %w", remote.ErrNotFound)
	ErrSponsorNotFound      = fmt.Errorf("sponsor %w", remote.ErrNotFound)
)
