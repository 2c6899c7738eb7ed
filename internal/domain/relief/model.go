package relief

import "relief-portal-go/internal/remote"

const (
	TableDisasters     = "disasters"
	TableDonations     = "donations"
	TableVolunteers    = "volunteers"
	TableOrganizations = "organizations"
	TableSponsors      = "sponsors"
)

type Disaster struct {
	ID          remote.ID `json:"id" gorm:"column:id;primaryKey"`
	Name        string    `json:"name" gorm:"column:name"`
	Type        string    `json:"type" gorm:"column:type"`
	Location    string    `json:"location" gorm:"column:location"`
	Latitude    float64   `json:"latitude" gorm:"column:latitude"`
	Longitude   float64   `json:"longitude" gorm:"column:longitude"`
	Severity    string    `json:"severity" gorm:"column:severity"`
	Description string    `json:"description" gorm:"column:description"`
	Date        string    `json:"date" gorm:"column:date"`
}

type Donation struct {
	ID               remote.ID          `json:"id" gorm:"column:id;primaryKey"`
	Name             string             `json:"name" gorm:"column:name"`
	Description      string             `json:"description" gorm:"column:description"`
	Goal             float64            `json:"goal" gorm:"column:goal"`
	Raised           float64            `json:"raised" gorm:"column:raised"`
	BudgetAllocation map[string]float64 `json:"budget_allocation" gorm:"column:budget_allocation;serializer:json"`
	OrganizationID   remote.ID          `json:"org_id" gorm:"column:org_id"`
	DisasterID       remote.ID          `json:"disaster_id" gorm:"column:disaster_id"`
	Image            string             `json:"image" gorm:"column:image"`
	ImageURL         string             `json:"image_url,omitempty" gorm:"-"`
}

type VolunteerImpact struct {
	SignedUp int `json:"signed_up"`
	Needed   int `json:"needed"`
}

type Volunteer struct {
	ID             remote.ID       `json:"id" gorm:"column:id;primaryKey"`
	Name           string          `json:"name" gorm:"column:name"`
	Description    string          `json:"description" gorm:"column:description"`
	Location       string          `json:"location" gorm:"column:location"`
	Impact         VolunteerImpact `json:"impact" gorm:"column:impact;serializer:json"`
	OrganizationID remote.ID       `json:"org_id" gorm:"column:org_id"`
	DisasterID     remote.ID       `json:"disaster_id" gorm:"column:disaster_id"`
}

type Ratings struct {
	Public float64 `json:"public"`
	AI     float64 `json:"ai"`
}

type Organization struct {
	ID          remote.ID `json:"id" gorm:"column:id;primaryKey"`
	Name        string    `json:"name" gorm:"column:name"`
	Description string    `json:"description" gorm:"column:description"`
	Website     string    `json:"website" gorm:"column:website"`
	Logo        string    `json:"logo" gorm:"column:logo"`
	LogoURL     string    `json:"logo_url,omitempty" gorm:"-"`
	Tags        []string  `json:"tags" gorm:"column:tags;serializer:json"`
	Ratings     Ratings   `json:"ratings" gorm:"column:ratings;serializer:json"`
}

type Sponsor struct {
	ID      remote.ID      `json:"id" gorm:"column:id;primaryKey"`
	Name    string         `json:"name" gorm:"column:name"`
	Logo    string         `json:"logo" gorm:"column:logo"`
	LogoURL string         `json:"logo_url,omitempty" gorm:"-"`
	Memo    string         `json:"memo" gorm:"column:memo"`
	Stats   map[string]any `json:"stats" gorm:"column:stats;serializer:json"`
}

// DonationDetail is a donation with its derived budget and progress figures.
type DonationDetail struct {
	Donation Donation        `json:"donation"`
	Budget   BudgetBreakdown `json:"budget"`
	Progress Ratio           `json:"progress"`
}

type DisasterOverview struct {
	Disaster   Disaster    `json:"disaster"`
	Donations  []Donation  `json:"donations"`
	Volunteers []Volunteer `json:"volunteers"`
}

type OrganizationOverview struct {
	Organization Organization `json:"organization"`
	Donations    []Donation   `json:"donations"`
	Volunteers   []Volunteer  `json:"volunteers"`
}

type SponsorOverview struct {
	Sponsor       Sponsor        `json:"sponsor"`
	Donations     []Donation     `json:"donations"`
	Volunteers    []Volunteer    `json:"volunteers"`
	Organizations []Organization `json:"organizations"`
}

func donationID(d Donation) string         { return d.ID.String() }
func volunteerID(v Volunteer) string       { return v.ID.String() }
func organizationID(o Organization) string { return o.ID.String() }
func sponsorID(s Sponsor) string           { return s.ID.String() }
