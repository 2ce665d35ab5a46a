package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/helios-data/helios/internal/state"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded conversion runs",
		Long: `Inspect the conversion run history.

Every file conversion records its source, output path, provider and
per-statement counters in a local SQLite database.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

// HistoryListOptions holds options for the history list command.
type HistoryListOptions struct {
	Limit int
}

func newHistoryListCommand() *cobra.Command {
	opts := &HistoryListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversion runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, opts *HistoryListOptions) error {
	st, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runs, err := st.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversion runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Source", "Provider", "Stmts", "Rewritten", "Skeletons", "Failures", "Created"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.SourcePath,
			run.Provider,
			run.Statements,
			run.Rewritten,
			run.Skeletons,
			run.Failures,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()

	return nil
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one conversion run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0])
		},
	}
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	st, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	run, err := findRun(st, id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Source:     %s\n", run.SourcePath)
	fmt.Fprintf(w, "Output:     %s\n", run.OutputPath)
	fmt.Fprintf(w, "Provider:   %s\n", run.Provider)
	fmt.Fprintf(w, "Statements: %d (%d rewritten, %d skeletons, %d failures)\n",
		run.Statements, run.Rewritten, run.Skeletons, run.Failures)
	fmt.Fprintf(w, "Duration:   %dms\n", run.DurationMS)
	fmt.Fprintf(w, "Created:    %s\n", run.CreatedAt.Local().Format(time.RFC3339))

	return nil
}

func newHistoryClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded conversion runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryClear(cmd)
		},
	}
}

func runHistoryClear(cmd *cobra.Command) error {
	st, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	n, err := st.ClearRuns()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d recorded runs\n", n)
	return nil
}

func openHistoryStore() (*state.Store, error) {
	cfg := getConfig()
	st, err := openHistory(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return st, nil
}

// findRun looks a run up by exact id first, then by unique id prefix so
// ids from history list can be abbreviated.
func findRun(st *state.Store, id string) (*state.Run, error) {
	if run, err := st.GetRun(id); err == nil {
		return run, nil
	}

	runs, err := st.ListRuns(0)
	if err != nil {
		return nil, err
	}
	var match *state.Run
	for _, run := range runs {
		if strings.HasPrefix(run.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
			}
			match = run
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return match, nil
}
