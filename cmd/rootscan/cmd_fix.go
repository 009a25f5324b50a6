package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prentissw/charted-roots/pkg/consistency"
	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

var checkScope []string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Detect relationship inconsistencies without modifying anything",
	Long: `Check walks every parent/child and spouse link in the graph and reports
missing reverse links, conflicting reverse links and dangling references.
Nothing is written.

Examples:
  rootscan check --vault ~/genealogy
  rootscan check --vault ~/genealogy --person p-1234 --person p-5678`,
	RunE: runCheck,
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Detect and repair relationship inconsistencies",
	Long: `Fix detects inconsistencies and repairs the unambiguous ones: missing
reverse links are filled in, and a generic parent designation that conflicts
with a specific one (step, adoptive, foster) is rewritten to the specific
kind. Ambiguous conflicts and repairs that would create an ancestry cycle
are reported and left untouched.

Repaired records are written back to the vault.`,
	RunE: runFix,
}

func init() {
	checkCmd.Flags().StringArrayVar(&checkScope, "person", nil, "limit the check to specific person ids")
	fixCmd.Flags().StringArrayVar(&checkScope, "person", nil, "limit the fix to specific person ids")
}

func scopeIDs() []records.PersonID {
	if len(checkScope) == 0 {
		return nil
	}
	ids := make([]records.PersonID, len(checkScope))
	for i, s := range checkScope {
		ids[i] = records.PersonID(s)
	}
	return ids
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	g, err := loadGraph(log)
	if err != nil {
		return err
	}

	engine := consistency.NewEngine(g, nil)
	incs := engine.Detect(scopeIDs())
	if len(incs) == 0 {
		fmt.Println("No inconsistencies found.")
		return nil
	}
	fmt.Printf("Inconsistencies (%d):\n", len(incs))
	for _, inc := range incs {
		fmt.Printf("  %s\n", inc.String())
	}

	if cycles := engine.AncestryCycles(); len(cycles) > 0 {
		fmt.Printf("Ancestry cycles (%d):\n", len(cycles))
		for _, cycle := range cycles {
			fmt.Printf("  %v\n", cycle)
		}
	}
	return nil
}

func runFix(cmd *cobra.Command, args []string) error {
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

	engine := consistency.NewEngine(g, v)
	incs := engine.Detect(scopeIDs())
	if len(incs) == 0 {
		fmt.Println("No inconsistencies found.")
		return nil
	}

	result, err := engine.Fix(incs)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	log.Info("fix complete",
		zap.Int("detected", len(incs)),
		zap.Int("repaired", result.Modified),
		zap.Int("unresolved", len(result.Errors)))

	fmt.Printf("Detected %d, repaired %d.\n", len(incs), result.Modified)
	for _, e := range result.Errors {
		fmt.Printf("  unresolved: %s\n", e)
	}
	return nil
}
