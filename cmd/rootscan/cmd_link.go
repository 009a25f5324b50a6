package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/mentions"
	"github.com/prentissw/charted-roots/pkg/records"
)

var linkApply bool

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Resolve free-text place mentions to place records",
	Long: `Link compiles every place name and alias into a match dictionary and
scans person records for place mentions in event fields. A mention that
matches exactly one place gets its place id filled in; ambiguous mentions
are left unlinked and reported.

Without --apply the resolved links are only printed.

Examples:
  rootscan link --vault ~/genealogy
  rootscan link --vault ~/genealogy --apply`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().BoolVar(&linkApply, "apply", false, "write resolved links back to the vault")
}

func runLink(cmd *cobra.Command, args []string) error {
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

	placeRecs := make([]records.PlaceRecord, 0, g.PlaceCount())
	for _, node := range g.Places() {
		placeRecs = append(placeRecs, node.Record)
	}
	dict := mentions.Compile(placeRecs)

	linked, ambiguous := 0, 0
	for _, node := range g.Persons() {
		rec := node.Record.Clone()
		n := dict.LinkPerson(&rec)
		for _, ref := range dict.References(&rec) {
			if !ref.IsLinked {
				ambiguous++
				continue
			}
			fmt.Printf("%s %s %q -> %s\n", rec.ID, ref.Type, ref.RawValue, ref.PlaceID)
		}
		if n == 0 {
			continue
		}
		linked += n
		if linkApply {
			if err := v.WritePerson(rec); err != nil {
				log.Warn("write failed", zap.String("person", string(rec.ID)), zap.Error(err))
			}
		}
	}

	log.Info("linking complete", zap.Int("linked", linked), zap.Int("unresolved", ambiguous))
	fmt.Printf("Linked %d mentions.\n", linked)
	if !linkApply {
		fmt.Println("Run with --apply to persist.")
	}
	return nil
}
