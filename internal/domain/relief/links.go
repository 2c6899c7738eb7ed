package relief

import "relief-portal-go/internal/join"

var (
	DisasterDonations  = join.Link{Table: "disaster_donations", ParentColumn: "disaster_id", ChildColumn: "donation_id"}
	DisasterVolunteers = join.Link{Table: "disaster_volunteers", ParentColumn: "disaster_id", ChildColumn: "volunteer_id"}

	SponsorDonations  = join.Link{Table: "sponsor_donations", ParentColumn: "sponsor_id", ChildColumn: "donation_id"}
	SponsorVolunteers = join.Link{Table: "sponsor_volunteers", ParentColumn: "sponsor_id", ChildColumn: "volunteer_id"}

	OrganizationDonations  = join.Link{Table: "organization_donations", ParentColumn: "organization_id", ChildColumn: "donation_id"}
	OrganizationVolunteers = join.Link{Table: "organization_volunteers", ParentColumn: "organization_id", ChildColumn: "volunteer_id"}

	DonationSponsors  = join.Link{Table: "sponsor_donations", ParentColumn: "donation_id", ChildColumn: "sponsor_id"}
	VolunteerSponsors = join.Link{Table: "sponsor_volunteers", ParentColumn: "volunteer_id", ChildColumn: "sponsor_id"}
)
