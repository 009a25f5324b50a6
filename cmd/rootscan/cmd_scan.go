package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prentissw/charted-roots/internal/store"
	"github.com/prentissw/charted-roots/pkg/graph"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Load vault records into the store and report graph diagnostics",
	Long: `Scan reads every person and place document from the vault, syncs them
into the record store and builds the relationship graph. Unresolvable
references (a father id with no matching record, a place parent that does
not exist) are reported as diagnostics without being modified.

Examples:
  rootscan scan --vault ~/genealogy
  rootscan scan --vault ~/genealogy --db roots.db`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	v, err := openVault(log)
	if err != nil {
		return err
	}
	set, err := v.Records()
	if err != nil {
		return fmt.Errorf("read vault: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	result := store.Sync(st, set)
	log.Info("vault synced",
		zap.Int("processed", result.Processed),
		zap.Int("modified", result.Modified),
		zap.Int("errors", len(result.Errors)))
	for _, e := range result.Errors {
		log.Warn("sync error", zap.String("detail", e))
	}

	g, err := graph.NewStore(st)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	fmt.Printf("Persons: %d\n", g.PersonCount())
	fmt.Printf("Places:  %d\n", g.PlaceCount())

	diags := g.Diagnostics()
	if len(diags) == 0 {
		fmt.Println("No dangling references.")
		return nil
	}
	fmt.Printf("Diagnostics (%d):\n", len(diags))
	for _, d := range diags {
		fmt.Printf("  %s\n", d.String())
	}
	return nil
}
