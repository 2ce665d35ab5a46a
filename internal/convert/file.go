package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/helios-data/helios/internal/state"
)

// History receives run records. Satisfied by *state.Store.
type History interface {
	RecordRun(run *state.Run) error
}

// PathResult couples a script Result with the file locations involved.
type PathResult struct {
	Result
	SourcePath string
	OutputPath string
	Duration   time.Duration
}

// Summary is the one-line report printed per converted file.
func (r PathResult) Summary() string {
	return fmt.Sprintf("%s -> %s: %d statements, %d rewritten, %d skeletons, %d failures (%s)",
		r.SourcePath, r.OutputPath, r.Statements, r.Rewritten, r.Skeletons, r.Failures,
		r.Duration.Round(time.Millisecond))
}

// ConvertPath converts one .sql file and writes the result next to it as
// <stem>_helios.sql unless outPath overrides the location. History
// recording is best-effort: a history error is logged, never returned.
func (c *Converter) ConvertPath(ctx context.Context, path, outPath string, history History) (PathResult, error) {
	start := time.Now()

	if !strings.EqualFold(filepath.Ext(path), ".sql") {
		return PathResult{}, fmt.Errorf("input must be an existing .sql file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PathResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	if outPath == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outPath = filepath.Join(filepath.Dir(path), stem+"_helios.sql")
	}

	res := c.ConvertScript(ctx, string(data))
	if err := os.WriteFile(outPath, []byte(res.Output), 0o644); err != nil {
		return PathResult{}, fmt.Errorf("write %s: %w", outPath, err)
	}

	pr := PathResult{
		Result:     res,
		SourcePath: path,
		OutputPath: outPath,
		Duration:   time.Since(start),
	}
	c.logger.Info("converted file",
		slog.String("source", path),
		slog.String("output", outPath),
		slog.Int("statements", res.Statements),
		slog.Int("rewritten", res.Rewritten),
		slog.Int("skeletons", res.Skeletons),
		slog.Int("failures", res.Failures))

	if history != nil {
		run := &state.Run{
			SourcePath: path,
			OutputPath: outPath,
			Provider:   c.opts.Provider,
			Statements: res.Statements,
			Rewritten:  res.Rewritten,
			Skeletons:  res.Skeletons,
			Failures:   res.Failures,
			DurationMS: pr.Duration.Milliseconds(),
		}
		if err := history.RecordRun(run); err != nil {
			c.logger.Warn("failed to record run history", slog.String("error", err.Error()))
		}
	}
	return pr, nil
}
