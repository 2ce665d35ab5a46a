// Package convert orchestrates Oracle-to-Spark statement conversion.
//
// Each statement is classified by its leading keyword and pushed through
// an escalation ladder: structural rules first, then a commented
// skeleton, then the LLM translator when enabled, and finally a stable
// failure marker. No statement's failure aborts the rest of the script.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/helios-data/helios/internal/llm"
	"github.com/helios-data/helios/internal/schema"
	"github.com/helios-data/helios/pkg/merge"
	"github.com/helios-data/helios/pkg/rewrite"
	"github.com/helios-data/helios/pkg/scan"
	"github.com/helios-data/helios/pkg/script"
)

// Failure reason codes embedded in failure markers.
const (
	ReasonMergeRewrite     = "MERGE_REWRITE_NEEDED"
	ReasonSchemaResolution = "SCHEMA_RESOLUTION_FAILED"
	ReasonUpdateRewrite    = "UPDATE_REWRITE_NEEDED"
	ReasonDeleteRewrite    = "DELETE_REWRITE_NEEDED"
	ReasonUnsupported      = "UNSUPPORTED_CONSTRUCT"
)

// FailureMarker renders the stable failure comment for one statement.
func FailureMarker(reason string, chunkID int) string {
	return fmt.Sprintf("-- HELIOS_FAILURE: %s | chunk_id=%d", reason, chunkID)
}

// Status is the outcome class of a single statement conversion.
type Status int

const (
	StatusRewritten Status = iota
	StatusSkeleton
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkeleton:
		return "skeleton"
	case StatusFailed:
		return "failed"
	default:
		return "rewritten"
	}
}

// Outcome is the result of converting one statement.
type Outcome struct {
	ChunkID int
	Kind    Kind
	Status  Status
	Reason  string
	SQL     string
}

// Options configure a Converter.
type Options struct {
	Provider   string
	UseLLM     bool
	SchemaMode schema.Mode
}

// Converter turns Oracle statements into Spark SQL.
type Converter struct {
	opts       Options
	resolver   *schema.Resolver
	translator llm.Translator
	logger     *slog.Logger
}

// New builds a Converter. The resolver is consulted only for UPDATE
// rewrites; the translator may be nil to disable LLM escalation. If
// logger is nil, a discard logger is used.
func New(opts Options, resolver *schema.Resolver, translator llm.Translator, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{opts: opts, resolver: resolver, translator: translator, logger: logger}
}

// Statement converts a single statement identified by its 1-based chunk
// id. Leading comment lines are carried over to the output unchanged.
func (c *Converter) Statement(ctx context.Context, stmt string, chunkID int) Outcome {
	prefix, body := splitLeadingComments(stmt)

	var out Outcome
	switch Classify(body) {
	case KindMerge:
		out = c.convertMerge(ctx, prefix, body, chunkID)
	case KindUpdate:
		out = c.convertUpdate(ctx, prefix, body, chunkID)
	case KindDelete:
		out = c.convertDelete(ctx, prefix, body, chunkID)
	case KindUnsupported:
		out = c.escalate(ctx, prefix, body, chunkID, KindUnsupported, ReasonUnsupported)
	default:
		out = c.convertPlain(prefix, body, chunkID)
	}

	c.logger.Debug("converted statement",
		slog.Int("chunk_id", out.ChunkID),
		slog.String("kind", out.Kind.String()),
		slog.String("status", out.Status.String()))
	return out
}

// convertPlain normalizes a statement that needs no structural change:
// hints dropped, functions rewritten, legacy outer-join markers stripped.
// Plain statements never consult the LLM and never fail.
func (c *Converter) convertPlain(prefix, body string, chunkID int) Outcome {
	out := scan.StripHints(body)
	out = rewrite.Apply(out)
	out, markers := rewrite.StripOuterJoinMarkers(out)
	if markers > 0 {
		note := fmt.Sprintf("-- HELIOS_NOTE: removed %d legacy (+) outer-join marker(s); verify join semantics", markers)
		out = note + "\n" + out
	}
	return Outcome{ChunkID: chunkID, Kind: KindPlain, Status: StatusRewritten, SQL: prefix + out}
}

// convertMerge tries the full INSERT OVERWRITE recomposition, then the
// commented skeleton, then the LLM.
func (c *Converter) convertMerge(ctx context.Context, prefix, body string, chunkID int) Outcome {
	stripped := scan.StripHints(body)
	if out, ok := merge.Transform(stripped); ok {
		return Outcome{ChunkID: chunkID, Kind: KindMerge, Status: StatusRewritten, SQL: prefix + out}
	}
	if skel, ok := merge.Skeleton(stripped); ok {
		return Outcome{ChunkID: chunkID, Kind: KindMerge, Status: StatusSkeleton, SQL: prefix + skel}
	}
	return c.escalate(ctx, prefix, stripped, chunkID, KindMerge, ReasonMergeRewrite)
}

// convertUpdate resolves the target table's columns first, then rewrites
// the statement positionally over the resolved column order.
func (c *Converter) convertUpdate(ctx context.Context, prefix, body string, chunkID int) Outcome {
	stripped := scan.StripHints(body)

	table, ok := updateTargetTable(stripped)
	if !ok {
		return c.escalate(ctx, prefix, stripped, chunkID, KindUpdate, ReasonUpdateRewrite)
	}
	var cols []string
	if c.resolver != nil {
		var err error
		cols, err = c.resolver.Resolve(ctx, table, c.opts.SchemaMode)
		if err != nil {
			c.logger.Debug("schema resolution failed",
				slog.Int("chunk_id", chunkID),
				slog.String("table", table),
				slog.String("error", err.Error()))
		}
	}
	if len(cols) == 0 {
		return c.escalate(ctx, prefix, stripped, chunkID, KindUpdate, ReasonSchemaResolution)
	}

	parts, ok := parseUpdate(stripped)
	if !ok {
		return c.escalate(ctx, prefix, stripped, chunkID, KindUpdate, ReasonUpdateRewrite)
	}
	return Outcome{ChunkID: chunkID, Kind: KindUpdate, Status: StatusRewritten, SQL: prefix + parts.overwrite(cols)}
}

// convertDelete rewrites a simple single-table DELETE as an overwrite
// keeping the complement of the deleted rows.
func (c *Converter) convertDelete(ctx context.Context, prefix, body string, chunkID int) Outcome {
	stripped := scan.StripHints(body)
	parts, ok := parseDelete(stripped)
	if !ok {
		return c.escalate(ctx, prefix, stripped, chunkID, KindDelete, ReasonDeleteRewrite)
	}
	return Outcome{ChunkID: chunkID, Kind: KindDelete, Status: StatusRewritten, SQL: prefix + parts.overwrite()}
}

// escalate hands the statement to the LLM when enabled; otherwise, or on
// any translator error, it emits the failure marker for reason.
func (c *Converter) escalate(ctx context.Context, prefix, body string, chunkID int, kind Kind, reason string) Outcome {
	if c.opts.UseLLM && c.translator != nil {
		out, err := c.translator.Translate(ctx, body, c.opts.Provider)
		if err != nil {
			c.logger.Debug("llm translation unavailable",
				slog.Int("chunk_id", chunkID),
				slog.String("error", err.Error()))
		} else if strings.TrimSpace(out) != "" {
			return Outcome{ChunkID: chunkID, Kind: kind, Status: StatusRewritten, SQL: prefix + out}
		}
	}
	return Outcome{
		ChunkID: chunkID,
		Kind:    kind,
		Status:  StatusFailed,
		Reason:  reason,
		SQL:     prefix + FailureMarker(reason, chunkID),
	}
}

// Result summarizes a converted script.
type Result struct {
	Output     string
	Statements int
	Rewritten  int
	Skeletons  int
	Failures   int
	Outcomes   []Outcome
}

// ConvertScript runs the full pipeline over raw input text: here-doc
// extraction for shell wrappers, diagnostics dropping, bind
// pass-through, splitting and per-statement conversion. Rewritten
// statements are terminated with a semicolon; skeleton and failure
// blocks are comments and get none.
func (c *Converter) ConvertScript(ctx context.Context, text string) Result {
	sqlText := text
	if heredoc, ok := script.ExtractHereDoc(text); ok {
		sqlText = heredoc
	}
	sqlText = script.DropDiagnostics(sqlText)
	sqlText = script.ApplyBindings(sqlText, nil)
	stmts := script.Split(sqlText)

	res := Result{Statements: len(stmts)}
	var b strings.Builder
	for i, stmt := range stmts {
		out := c.Statement(ctx, stmt, i+1)
		res.Outcomes = append(res.Outcomes, out)

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(out.SQL)
		switch out.Status {
		case StatusRewritten:
			res.Rewritten++
			b.WriteString(";\n")
		case StatusSkeleton:
			res.Skeletons++
		case StatusFailed:
			res.Failures++
			b.WriteString("\n")
		}
	}
	res.Output = b.String()
	return res
}
