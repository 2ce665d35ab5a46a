package convert

import (
	"fmt"
	"strings"

	"github.com/helios-data/helios/pkg/merge"
	"github.com/helios-data/helios/pkg/scan"
)

// updateParts is the parsed shape of a simple single-table UPDATE:
//
//	UPDATE <table> [<alias>] SET <assignments> [WHERE <condition>]
//
// Assignment keys are lowercased so lookups against externally resolved
// column names are case-insensitive.
type updateParts struct {
	Table       string
	Alias       string
	Assignments map[string]string
	Where       string
}

// updateSpans locates the UPDATE and SET keywords. It returns the bounds
// of the target region between them and the index just past SET.
func updateSpans(stmt string) (int, int, int, bool) {
	at, kwEnd := scan.IndexKeywords(stmt, 0, "UPDATE")
	if at == -1 || at != scan.SkipSpace(stmt, 0) {
		return 0, 0, 0, false
	}
	setAt, setEnd := scan.IndexKeywordsTopLevel(stmt, kwEnd, "SET")
	if setAt == -1 {
		return 0, 0, 0, false
	}
	return kwEnd, setAt, setEnd, true
}

// updateTargetTable extracts just the target table name so its columns
// can be resolved before any rewrite is attempted.
func updateTargetTable(stmt string) (string, bool) {
	from, to, _, ok := updateSpans(stmt)
	if !ok {
		return "", false
	}
	fields := strings.Fields(stmt[from:to])
	if len(fields) == 0 || len(fields) > 2 {
		return "", false
	}
	return fields[0], true
}

// parseUpdate parses the supported UPDATE shape. ok is false for
// anything more elaborate.
func parseUpdate(stmt string) (updateParts, bool) {
	from, to, setEnd, ok := updateSpans(stmt)
	if !ok {
		return updateParts{}, false
	}

	p := updateParts{}
	fields := strings.Fields(stmt[from:to])
	switch len(fields) {
	case 1:
		p.Table = fields[0]
	case 2:
		p.Table, p.Alias = fields[0], fields[1]
	default:
		return updateParts{}, false
	}

	assignRegion := stmt[setEnd:]
	if whereAt, whereEnd := scan.IndexKeywordsTopLevel(stmt, setEnd, "WHERE"); whereAt != -1 {
		assignRegion = stmt[setEnd:whereAt]
		p.Where = strings.TrimSpace(stmt[whereEnd:])
		if p.Where == "" {
			return updateParts{}, false
		}
	}

	p.Assignments = map[string]string{}
	for _, item := range scan.SplitArgs(assignRegion) {
		col, expr, found := strings.Cut(item, "=")
		if !found {
			return updateParts{}, false
		}
		key := merge.StripAlias(col)
		value := strings.TrimSpace(expr)
		if key == "" || value == "" {
			return updateParts{}, false
		}
		p.Assignments[strings.ToLower(key)] = value
	}
	if len(p.Assignments) == 0 {
		return updateParts{}, false
	}
	return p, true
}

// overwrite renders the positional INSERT OVERWRITE over the resolved
// column order. With a WHERE condition, assigned columns switch between
// the new expression and the existing value row by row; without one,
// assigned columns take the new expression unconditionally.
func (p updateParts) overwrite(cols []string) string {
	exprs := make([]string, 0, len(cols))
	for _, col := range cols {
		expr, assigned := p.Assignments[strings.ToLower(col)]
		switch {
		case assigned && p.Where != "":
			exprs = append(exprs, fmt.Sprintf("CASE WHEN %s THEN %s ELSE %s END AS %s", p.Where, expr, col, col))
		case assigned:
			exprs = append(exprs, fmt.Sprintf("%s AS %s", expr, col))
		default:
			exprs = append(exprs, col)
		}
	}

	from := p.Table
	if p.Alias != "" {
		from += " " + p.Alias
	}
	return fmt.Sprintf("INSERT OVERWRITE TABLE %s\nSELECT %s FROM %s", p.Table, strings.Join(exprs, ", "), from)
}
