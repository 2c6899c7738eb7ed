package user

import (
	"time"

	"relief-portal-go/internal/remote"
)

const (
	TableProfiles      = "profiles"
	TableAidRequests   = "aid_requests"
	TableContributions = "contributions"
)

const (
	AidStatusOpen = "open"
)

type Profile struct {
	ID              remote.ID  `json:"id" gorm:"column:id;primaryKey"`
	FirstName       string     `json:"first_name" gorm:"column:first_name"`
	LastName        string     `json:"last_name" gorm:"column:last_name"`
	Email           string     `json:"email" gorm:"column:email"`
	Phone           string     `json:"phone" gorm:"column:phone"`
	Address         string     `json:"address" gorm:"column:address"`
	Latitude        *float64   `json:"latitude" gorm:"column:latitude"`
	Longitude       *float64   `json:"longitude" gorm:"column:longitude"`
	ProfileComplete bool       `json:"profile_complete" gorm:"column:profile_complete"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" gorm:"column:updated_at"`
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Latitude  *float64
	Longitude *float64
}

type AidRequest struct {
	ID          remote.ID `json:"id" gorm:"column:id;primaryKey"`
	UserID      remote.ID `json:"user_id" gorm:"column:user_id"`
	DisasterID  remote.ID `json:"disaster_id" gorm:"column:disaster_id"`
	Kind        string    `json:"kind" gorm:"column:kind"`
	Description string    `json:"description" gorm:"column:description"`
	Status      string    `json:"status" gorm:"column:status"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

type AidRequestInput struct {
	DisasterID  string
	Kind        string
	Description string
}

type Contribution struct {
	ID          remote.ID `json:"id" gorm:"column:id;primaryKey"`
	UserID      remote.ID `json:"user_id" gorm:"column:user_id"`
	DonationID  remote.ID `json:"donation_id,omitempty" gorm:"column:donation_id"`
	VolunteerID remote.ID `json:"volunteer_id,omitempty" gorm:"column:volunteer_id"`
	Amount      float64   `json:"amount" gorm:"column:amount"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

type ContributionInput struct {
	DonationID  string
	VolunteerID string
	Amount      float64
}
