package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/helios-data/helios/internal/cli/config"
	"github.com/helios-data/helios/internal/schema"
	"github.com/spf13/cobra"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the conversion environment",
		Long: `Check that everything Helios depends on is in place.

The report covers the spark-sql binary used for DESCRIBE fallbacks, the
metastore connection, the schema cache file, the LLM API key and the run
history store, grouped by concern. Warnings mark optional pieces that
are missing; errors mark configured pieces that do not work.`,
		Example: `  # Run the environment check
  helios doctor

  # Output as JSON
  helios doctor --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

// CheckResult represents a single environment check result.
type CheckResult struct {
	Name    string `json:"name"`
	Group   string `json:"group"`
	Status  string `json:"status"` // "pass", "warn", "error"
	Message string `json:"message"`
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks []CheckResult `json:"checks"`
	Passed int           `json:"passed"`
	Warned int           `json:"warned"`
	Failed int           `json:"failed"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cfg := getConfig()
	out := buildDoctorOutput(runEnvironmentChecks(cmd.Context(), &cfg))

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return renderDoctorText(cmd.OutOrStdout(), out)
}

func runEnvironmentChecks(ctx context.Context, cfg *config.Config) []CheckResult {
	return []CheckResult{
		checkLLMKey(cfg),
		checkSparkSQLBin(cfg),
		checkMetastore(ctx, cfg),
		checkSchemaCache(cfg),
		checkHistoryStore(cfg),
	}
}

func checkLLMKey(cfg *config.Config) CheckResult {
	check := CheckResult{Name: "LLM API key", Group: "conversion"}
	if !cfg.UseLLM {
		check.Status = "pass"
		check.Message = "LLM escalation disabled"
		return check
	}
	if os.Getenv(cfg.LLMAPIKeyEnv) == "" {
		check.Status = "warn"
		check.Message = fmt.Sprintf("%s not set, unsupported statements get failure markers", cfg.LLMAPIKeyEnv)
		return check
	}
	check.Status = "pass"
	check.Message = fmt.Sprintf("%s is set", cfg.LLMAPIKeyEnv)
	return check
}

func checkSparkSQLBin(cfg *config.Config) CheckResult {
	check := CheckResult{Name: "spark-sql binary", Group: "schema resolution"}
	bin := schema.NewSparkSQL(cfg.SparkSQLBin, nil).Bin
	path, err := exec.LookPath(bin)
	if err != nil {
		check.Status = "warn"
		check.Message = fmt.Sprintf("%s not found, DESCRIBE fallback unavailable", bin)
		return check
	}
	check.Status = "pass"
	check.Message = path
	return check
}

func checkMetastore(ctx context.Context, cfg *config.Config) CheckResult {
	check := CheckResult{Name: "metastore DSN", Group: "schema resolution"}
	if cfg.MetastoreDSN == "" {
		check.Status = "warn"
		check.Message = "not configured, catalog lookups skipped"
		return check
	}

	db, err := sql.Open("pgx", cfg.MetastoreDSN)
	if err != nil {
		check.Status = "error"
		check.Message = err.Error()
		return check
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		check.Status = "error"
		check.Message = fmt.Sprintf("unreachable: %v", err)
		return check
	}
	check.Status = "pass"
	check.Message = "reachable"
	return check
}

func checkSchemaCache(cfg *config.Config) CheckResult {
	check := CheckResult{Name: "schema cache", Group: "schema resolution"}

	_, statErr := os.Stat(cfg.SchemaCache)
	f, err := os.OpenFile(cfg.SchemaCache, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		check.Status = "error"
		check.Message = fmt.Sprintf("not writable: %v", err)
		return check
	}
	_ = f.Close()
	// Leave no empty cache file behind when the check created it.
	if os.IsNotExist(statErr) {
		_ = os.Remove(cfg.SchemaCache)
	}

	check.Status = "pass"
	check.Message = cfg.SchemaCache
	return check
}

func checkHistoryStore(cfg *config.Config) CheckResult {
	check := CheckResult{Name: "history store", Group: "storage"}
	st, err := openHistory(cfg)
	if err != nil {
		check.Status = "error"
		check.Message = err.Error()
		return check
	}
	_ = st.Close()
	check.Status = "pass"
	check.Message = fmt.Sprintf("%s, schema up to date", cfg.HistoryPath)
	return check
}

func buildDoctorOutput(checks []CheckResult) *DoctorOutput {
	out := &DoctorOutput{Checks: checks}
	for _, check := range checks {
		switch check.Status {
		case "pass":
			out.Passed++
		case "warn":
			out.Warned++
		default:
			out.Failed++
		}
	}
	return out
}

func renderDoctorText(w io.Writer, out *DoctorOutput) error {
	fmt.Fprintln(w, "Helios Environment Report")
	fmt.Fprintln(w, strings.Repeat("=", 44))

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			fmt.Fprintln(w)
			fmt.Fprintln(w, titleCaser.String(currentGroup))
			fmt.Fprintln(w, strings.Repeat("-", 44))
		}

		marker := "ok"
		switch check.Status {
		case "warn":
			marker = "warn"
		case "error":
			marker = "fail"
		}
		fmt.Fprintf(w, "  [%-4s] %-18s %s\n", marker, check.Name, check.Message)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d passed, %d warnings, %d errors\n", out.Passed, out.Warned, out.Failed)
	return nil
}
