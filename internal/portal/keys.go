package portal

import "relief-portal-go/internal/cache"

const (
	entityDisaster     = "disaster"
	entityDonation     = "donation"
	entityVolunteer    = "volunteer"
	entityOrganization = "organization"
	entitySponsor      = "sponsor"

	entityProfile       = "profile"
	entityAidRequests   = "aid-requests"
	entityContributions = "contributions"
)

func listKey(entity string) cache.Key {
	return cache.NewKey(entity + "s")
}

// entityKey is the prefix shared by an entity and everything derived
// from it, so invalidating it refreshes its relations too.
func entityKey(entity, id string, parts ...string) cache.Key {
	return cache.NewKey(entity, append([]string{id}, parts...)...)
}
