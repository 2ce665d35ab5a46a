package schema

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a command and returns its stdout. Injectable so tests
// never spawn a real process.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// SparkSQL resolves columns by invoking the spark-sql binary with a
// DESCRIBE statement and parsing its column listing.
type SparkSQL struct {
	Bin    string
	Run    Runner
	Logger *slog.Logger
}

// NewSparkSQL returns the describe strategy. An empty bin falls back to
// the SPARK_SQL_BIN environment variable, then to the literal spark-sql.
// If logger is nil, a discard logger is used.
func NewSparkSQL(bin string, logger *slog.Logger) *SparkSQL {
	if bin == "" {
		bin = os.Getenv("SPARK_SQL_BIN")
	}
	if bin == "" {
		bin = "spark-sql"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SparkSQL{Bin: bin, Run: defaultRunner, Logger: logger}
}

func (s *SparkSQL) Name() string {
	return "spark-sql"
}

// Columns runs DESCRIBE <table> and returns the parsed column names in
// listing order.
func (s *SparkSQL) Columns(ctx context.Context, table string) ([]string, error) {
	s.Logger.Debug("describing table", slog.String("bin", s.Bin), slog.String("table", table))
	out, err := s.Run(ctx, s.Bin, "-S", "-e", "DESCRIBE "+table)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", s.Bin, err)
	}
	cols := ParseDescribe(string(out))
	if len(cols) == 0 {
		return nil, fmt.Errorf("DESCRIBE %s returned no columns", table)
	}
	return cols, nil
}

// ParseDescribe extracts column names from DESCRIBE output. The first
// whitespace-delimited field of each row is the column name. Parsing
// stops at the first blank line or # section header; header and
// partition marker rows are skipped.
func ParseDescribe(out string) []string {
	var cols []string
	for _, line := range strings.Split(out, "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			break
		}
		fields := strings.Fields(s)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "#col_name", "col_name", "partition":
			continue
		}
		cols = append(cols, fields[0])
	}
	return cols
}
