package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"relief-portal-go/internal/app"
	"relief-portal-go/internal/portal"
	"relief-portal-go/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	fetchTimeout  time.Duration
	fetchRelation string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <resource> [id]",
	Short: "Print a resource as JSON",
	Long: `Fetch a list, a single record or one of its relations and print it as JSON.

Examples:
  relief-portal fetch disasters
  relief-portal fetch donations 5
  relief-portal fetch sponsors 3 --relation organizations
  relief-portal fetch profile                # needs SESSION_TOKEN`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		return runFetch(cmd.OutOrStdout(), args[0], id)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "Overall deadline")
	fetchCmd.Flags().StringVarP(&fetchRelation, "relation", "r", "", "Relation of the record to fetch (donations, volunteers, sponsors, organizations, overview)")
}

func runFetch(out io.Writer, resource, id string) error {
	log := logger.NewFromEnvTo(os.Stderr)

	application, err := app.New(log)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	application.Start(ctx)
	if err := application.Portal().Session().Wait(ctx); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	result, err := lookup(ctx, application.Portal(), resource, id, fetchRelation)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

type resource struct {
	list      func(context.Context) (any, error)
	get       func(context.Context, string) (any, error)
	relations map[string]func(context.Context, string) (any, error)
}

func list[T any](fn func(context.Context) (T, error)) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func byID[T any](fn func(context.Context, string) (T, error)) func(context.Context, string) (any, error) {
	return func(ctx context.Context, id string) (any, error) {
		return fn(ctx, id)
	}
}

func resources(p *portal.Portal) map[string]resource {
	return map[string]resource{
		"disasters": {
			list: list(p.Disasters),
			get:  byID(p.Disaster),
			relations: map[string]func(context.Context, string) (any, error){
				"donations":  byID(p.DisasterDonations),
				"volunteers": byID(p.DisasterVolunteers),
				"overview":   byID(p.DisasterOverview),
			},
		},
		"donations": {
			list: list(p.Donations),
			get:  byID(p.Donation),
			relations: map[string]func(context.Context, string) (any, error){
				"sponsors": byID(p.DonationSponsors),
			},
		},
		"volunteers": {
			list: list(p.Volunteers),
			get:  byID(p.Volunteer),
			relations: map[string]func(context.Context, string) (any, error){
				"sponsors": byID(p.VolunteerSponsors),
			},
		},
		"organizations": {
			list: list(p.Organizations),
			get:  byID(p.Organization),
			relations: map[string]func(context.Context, string) (any, error){
				"donations":  byID(p.OrganizationDonations),
				"volunteers": byID(p.OrganizationVolunteers),
				"overview":   byID(p.OrganizationOverview),
			},
		},
		"sponsors": {
			list: list(p.Sponsors),
			get:  byID(p.Sponsor),
			relations: map[string]func(context.Context, string) (any, error){
				"donations":     byID(p.SponsorDonations),
				"volunteers":    byID(p.SponsorVolunteers),
				"organizations": byID(p.SponsorOrganizations),
				"overview":      byID(p.SponsorOverview),
			},
		},
		"profile":       {list: list(p.Profile)},
		"aid-requests":  {list: list(p.AidRequests)},
		"contributions": {list: list(p.Contributions)},
	}
}

func lookup(ctx context.Context, p *portal.Portal, name, id, relation string) (any, error) {
	all := resources(p)
	res, ok := all[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(sortedKeys(all), ", "))
	}

	switch {
	case id == "" && relation != "":
		return nil, fmt.Errorf("--relation needs an id")
	case id == "":
		return res.list(ctx)
	case res.get == nil:
		return nil, fmt.Errorf("%s does not take an id", name)
	case relation == "":
		return res.get(ctx, id)
	}

	fetch, ok := res.relations[relation]
	if !ok {
		return nil, fmt.Errorf("%s has no relation %q (known: %s)", name, relation, strings.Join(sortedKeys(res.relations), ", "))
	}
	return fetch(ctx, id)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
