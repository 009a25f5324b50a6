// Command rootscan inspects and repairs a genealogical document vault: it
// syncs records into a store, checks relationship consistency, validates the
// place hierarchy, assigns reference numbers and reports data quality.
package main

import (
	"fmt"
	"os"

	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prentissw/charted-roots/internal/store"
	"github.com/prentissw/charted-roots/internal/vault"
	"github.com/prentissw/charted-roots/pkg/graph"
)

var (
	vaultPath string
	dbPath    string
	verbose   bool

	rootCmd = &cobra.Command{
		Use:   "rootscan",
		Short: "Inspect and repair a genealogical document vault",
		Long: `Rootscan loads person and place records from a document vault,
builds the relationship graph and runs consistency, hierarchy, numbering
and quality operations against it.

Records live as markdown documents with YAML frontmatter under
<vault>/people and <vault>/places.`,
		SilenceUsage: true,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", ".", "path to the document vault")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database path (default: in-memory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(numberCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(linkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// openVault mounts the configured vault directory as a hackpadfs filesystem.
func openVault(log *zap.Logger) (*vault.Vault, error) {
	root := osfs.NewFS()
	fsPath, err := root.FromOSPath(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}
	sub, err := hackpadfs.Sub(root, fsPath)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	return vault.Open(sub, log), nil
}

func openStore() (store.Storer, error) {
	if dbPath == "" {
		return store.NewMemStore(), nil
	}
	return store.NewSQLiteStoreWithDSN(dbPath)
}

// loadGraph opens the vault and builds the graph directly from its records.
func loadGraph(log *zap.Logger) (*graph.Store, error) {
	v, err := openVault(log)
	if err != nil {
		return nil, err
	}
	g, err := graph.NewStore(v)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}
