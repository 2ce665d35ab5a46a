package commands

import (
	"fmt"
	"log/slog"

	"github.com/helios-data/helios/internal/cli/config"
	"github.com/helios-data/helios/internal/convert"
	"github.com/spf13/cobra"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Manifest    string
	UseLLM      bool
	NoLLM       bool
	Provider    string
	SchemaMode  string
	SchemaCache string
	Out         string
	Watch       bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [path...]",
		Short: "Convert Oracle SQL scripts to Spark SQL",
		Long: `Convert one or more Oracle SQL scripts to Spark SQL.

Each input must be a .sql file; the converted script is written next to
it as <name>_helios.sql unless --out is given. Statements that cannot be
rewritten mechanically are escalated to the LLM when enabled, otherwise
they carry an explicit failure marker so nothing is silently dropped.

The command exits non-zero only when the pipeline itself fails (for
example an unreadable input); per-statement failures are reported in the
summary line and inside the output file.`,
		Example: `  # Convert a single script
  helios convert etl/load_orders.sql

  # Convert several scripts without LLM escalation
  helios convert --no-llm etl/daily.sql etl/monthly.sql

  # Convert every job listed in a manifest
  helios convert --manifest jobs.yaml

  # Reconvert on every save
  helios convert --watch etl/load_orders.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "YAML manifest listing conversion jobs")
	cmd.Flags().BoolVar(&opts.UseLLM, "use-llm", false, "Escalate unsupported statements to the LLM")
	cmd.Flags().BoolVar(&opts.NoLLM, "no-llm", false, "Never call the LLM, emit failure markers instead")
	cmd.Flags().StringVarP(&opts.Provider, "provider", "p", "", "Target provider: hive, delta, iceberg")
	cmd.Flags().StringVar(&opts.SchemaMode, "schema-mode", "", "Schema resolution mode: auto, cache, metastore, spark-sql")
	cmd.Flags().StringVar(&opts.SchemaCache, "schema-cache", "", "Path to the schema cache file")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "Output path (single input only)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch inputs and reconvert on change")
	cmd.MarkFlagsMutuallyExclusive("use-llm", "no-llm")
	cmd.MarkFlagsMutuallyExclusive("manifest", "watch")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	if opts.Manifest == "" && len(args) == 0 {
		return fmt.Errorf("nothing to convert: pass at least one .sql file or --manifest")
	}
	if opts.Out != "" && len(args) > 1 {
		return fmt.Errorf("--out supports a single input file")
	}

	cfg := getConfig()
	applyConvertOverrides(&cfg, opts)
	logger := config.GetLogger(cmd.Context())

	cvOpts, err := converterOptions(&cfg)
	if err != nil {
		return err
	}
	resolver := newResolver(&cfg, logger)
	translator := newTranslator(&cfg, logger)

	// History is best effort: a broken store must never block conversion.
	var history convert.History
	if st, err := openHistory(&cfg); err != nil {
		logger.Warn("run history unavailable", slog.String("error", err.Error()))
	} else {
		history = st
		defer func() { _ = st.Close() }()
	}

	ctx := cmd.Context()

	if opts.Manifest != "" {
		jobs, err := convert.LoadManifest(opts.Manifest)
		if err != nil {
			return err
		}
		results, err := convert.RunManifest(ctx, jobs, cvOpts, resolver, translator, history, logger)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		for _, res := range results {
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
		}
		return nil
	}

	cv := convert.New(cvOpts, resolver, translator, logger)
	for _, path := range args {
		res, err := cv.ConvertPath(ctx, path, opts.Out, history)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
	}

	if opts.Watch {
		return cv.Watch(ctx, args, history)
	}
	return nil
}

// applyConvertOverrides folds command-local flags into the loaded
// configuration.
func applyConvertOverrides(cfg *config.Config, opts *ConvertOptions) {
	if opts.Provider != "" {
		cfg.Provider = opts.Provider
	}
	if opts.SchemaMode != "" {
		cfg.SchemaMode = opts.SchemaMode
	}
	if opts.SchemaCache != "" {
		cfg.SchemaCache = opts.SchemaCache
	}
	if opts.UseLLM {
		cfg.UseLLM = true
	}
	if opts.NoLLM {
		cfg.UseLLM = false
	}
}
