package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/helios-data/helios/internal/cli/config"
	"github.com/helios-data/helios/internal/schema"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command group.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Resolve and inspect table schemas",
		Long: `Resolve ordered column lists for tables and manage the schema cache.

UPDATE rewrites bind assignments to columns by position, so conversion
needs the declared column order of every UPDATE target. Resolved schemas
are cached in a JSON file and reused across runs.`,
	}

	cmd.AddCommand(newSchemaResolveCommand())
	cmd.AddCommand(newSchemaCacheCommand())

	return cmd
}

// SchemaResolveOptions holds options for the schema resolve command.
type SchemaResolveOptions struct {
	SchemaMode  string
	SchemaCache string
}

func newSchemaResolveCommand() *cobra.Command {
	opts := &SchemaResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <table>...",
		Short: "Resolve ordered column lists for tables",
		Example: `  # Resolve through the cache, metastore, then spark-sql
  helios schema resolve analytics.orders

  # Force a live DESCRIBE
  helios schema resolve --schema-mode spark-sql analytics.orders`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchemaResolve(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SchemaMode, "schema-mode", "", "Schema resolution mode: auto, cache, metastore, spark-sql")
	cmd.Flags().StringVar(&opts.SchemaCache, "schema-cache", "", "Path to the schema cache file")

	return cmd
}

func runSchemaResolve(cmd *cobra.Command, args []string, opts *SchemaResolveOptions) error {
	cfg := getConfig()
	if opts.SchemaMode != "" {
		cfg.SchemaMode = opts.SchemaMode
	}
	if opts.SchemaCache != "" {
		cfg.SchemaCache = opts.SchemaCache
	}

	mode, err := schema.ParseMode(cfg.SchemaMode)
	if err != nil {
		return err
	}

	logger := config.GetLogger(cmd.Context())
	resolver := newResolver(&cfg, logger)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Ordinal", "Column"})

	for _, name := range args {
		cols, err := resolver.Resolve(cmd.Context(), name, mode)
		if err != nil {
			return err
		}
		for i, col := range cols {
			t.AppendRow(table.Row{name, i + 1, col})
		}
	}
	t.Render()

	return nil
}

func newSchemaCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the schema cache file",
	}

	cmd.AddCommand(newSchemaCacheListCommand())
	cmd.AddCommand(newSchemaCacheClearCommand())

	return cmd
}

func newSchemaCacheListCommand() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached table schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchemaCacheList(cmd, cachePath)
		},
	}

	cmd.Flags().StringVar(&cachePath, "schema-cache", "", "Path to the schema cache file")

	return cmd
}

func runSchemaCacheList(cmd *cobra.Command, cachePath string) error {
	cfg := getConfig()
	if cachePath != "" {
		cfg.SchemaCache = cachePath
	}

	cache, err := schema.NewFileStore(cfg.SchemaCache).Load()
	if err != nil {
		return err
	}
	if len(cache) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema cache is empty")
		return nil
	}

	names := make([]string, 0, len(cache))
	for name := range cache {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Columns"})
	for _, name := range names {
		t.AppendRow(table.Row{name, strings.Join(cache[name], ", ")})
	}
	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "(%d tables)\n", len(names))

	return nil
}

func newSchemaCacheClearCommand() *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the schema cache file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchemaCacheClear(cmd, cachePath)
		},
	}

	cmd.Flags().StringVar(&cachePath, "schema-cache", "", "Path to the schema cache file")

	return cmd
}

func runSchemaCacheClear(cmd *cobra.Command, cachePath string) error {
	cfg := getConfig()
	if cachePath != "" {
		cfg.SchemaCache = cachePath
	}

	cache, err := schema.NewFileStore(cfg.SchemaCache).Load()
	if err != nil {
		return err
	}
	if err := os.Remove(cfg.SchemaCache); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear schema cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached table schemas\n", len(cache))
	return nil
}
