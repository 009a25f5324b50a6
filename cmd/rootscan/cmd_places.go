package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prentissw/charted-roots/pkg/geo"
	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/hierarchy"
	"github.com/prentissw/charted-roots/pkg/records"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Validate and maintain the place hierarchy",
}

var placesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the place hierarchy for structural problems",
	Long: `Validate walks every place and reports circular parent chains, rank
inversions (a city containing a country), and coordinate problems: real
places without geographic coordinates, fictional places carrying them, and
places that mix geographic and custom map coordinates.`,
	RunE: runPlacesValidate,
}

var placesTreeCmd = &cobra.Command{
	Use:   "tree PLACE_ID",
	Short: "Print a place's ancestor chain and descendants",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlacesTree,
}

var placesStandardizeCmd = &cobra.Command{
	Use:   "standardize VARIANT CANONICAL",
	Short: "Rewrite a place name variant to its canonical form",
	Long: `Standardize rewrites one comma-separated component of place strings on
person records. Matching is case-insensitive on whole components only, so
standardizing "USA" to "United States" touches "Springfield, USA" but
leaves "USAlaska" alone.

Examples:
  rootscan places standardize "USA" "United States"`,
	Args: cobra.ExactArgs(2),
	RunE: runPlacesStandardize,
}

var nearbyK int

var placesNearbyCmd = &cobra.Command{
	Use:   "nearby LAT LON",
	Short: "Find the places nearest a coordinate",
	Long: `Nearby builds a spatial index over every place with geographic
coordinates and returns the closest ones to the given point.

Examples:
  rootscan places nearby 55.95 -3.19 -k 5`,
	Args: cobra.ExactArgs(2),
	RunE: runPlacesNearby,
}

func init() {
	placesNearbyCmd.Flags().IntVarP(&nearbyK, "count", "k", 10, "number of results")
	placesCmd.AddCommand(placesValidateCmd)
	placesCmd.AddCommand(placesTreeCmd)
	placesCmd.AddCommand(placesStandardizeCmd)
	placesCmd.AddCommand(placesNearbyCmd)
}

func runPlacesValidate(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	g, err := loadGraph(log)
	if err != nil {
		return err
	}

	issues := hierarchy.NewResolver(g).Validate()
	if len(issues) == 0 {
		fmt.Println("Place hierarchy is consistent.")
		return nil
	}
	fmt.Printf("Issues (%d):\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  [%s] %s: %s\n", issue.Kind, issue.Place, issue.Message)
	}
	return nil
}

func runPlacesTree(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	g, err := loadGraph(log)
	if err != nil {
		return err
	}
	id := records.PlaceID(args[0])
	node := g.Place(id)
	if node == nil {
		return fmt.Errorf("place %q not found", args[0])
	}

	resolver := hierarchy.NewResolver(g)
	ancestors, issues := resolver.Ancestors(id)
	for i := len(ancestors) - 1; i >= 0; i-- {
		fmt.Printf("%s (%s)\n", ancestors[i].Record.Name, ancestors[i].Record.Type)
	}
	fmt.Printf("* %s (%s)\n", node.Record.Name, node.Record.Type)
	for _, d := range resolver.Descendants(id) {
		fmt.Printf("  - %s (%s)\n", d.Record.Name, d.Record.Type)
	}
	for _, issue := range issues {
		fmt.Printf("issue: [%s] %s\n", issue.Kind, issue.Message)
	}
	return nil
}

func runPlacesStandardize(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	v, err := openVault(log)
	if err != nil {
		return err
	}
	g, err := graph.NewStore(v)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	result := hierarchy.NewResolver(g).StandardizeVariant(args[0], args[1], nil, v)
	log.Info("standardize complete",
		zap.String("variant", args[0]),
		zap.String("canonical", args[1]),
		zap.Int("modified", result.Modified))
	fmt.Printf("Updated %d of %d records.\n", result.Modified, result.Processed)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	return nil
}

func runPlacesNearby(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}

	v, err := openVault(log)
	if err != nil {
		return err
	}
	g, err := graph.NewStore(v)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	idx, err := geo.NewIndex(v.FS(), "geo/places.idx")
	if err != nil {
		return fmt.Errorf("open spatial index: %w", err)
	}
	n, err := idx.BuildFromStore(g)
	if err != nil {
		return fmt.Errorf("build spatial index: %w", err)
	}
	log.Debug("spatial index built", zap.Int("places", n))

	ids, err := idx.Nearest(lat, lon, nearbyK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	for _, id := range ids {
		if node := g.Place(id); node != nil {
			c := node.Record.Coords
			fmt.Printf("%-30s %9.4f %9.4f\n", node.Record.Name, c.Lat, c.Lon)
		}
	}
	return nil
}
