package merge

import (
	"strings"

	"github.com/helios-data/helios/pkg/rewrite"
	"github.com/helios-data/helios/pkg/scan"
)

// Parse extracts the components of a supported MERGE statement. ok is
// false when a keyword is missing, a paren is unmatched, the source alias
// is absent, or the insert column and value lists disagree in length.
// The target alias defaults to A when the statement has none.
func Parse(stmt string) (Components, bool) {
	var c Components

	start, afterInto := scan.IndexKeywords(stmt, 0, "MERGE", "INTO")
	if start == -1 || start != scan.SkipSpace(stmt, 0) {
		return Components{}, false
	}

	usingStart, afterUsing := scan.IndexKeywords(stmt, afterInto, "USING")
	if usingStart == -1 {
		return Components{}, false
	}
	tokens := strings.Fields(stmt[afterInto:usingStart])
	if len(tokens) == 0 {
		return Components{}, false
	}
	c.TargetTable = tokens[0]
	c.TargetAlias = "A"
	if len(tokens) > 1 {
		c.TargetAlias = tokens[1]
	}

	open := scan.SkipSpace(stmt, afterUsing)
	if open >= len(stmt) || stmt[open] != '(' {
		return Components{}, false
	}
	closeSrc := scan.FindBalanced(stmt, open)
	if closeSrc == -1 {
		return Components{}, false
	}
	c.SourceQuery = strings.TrimSpace(stmt[open+1 : closeSrc])

	i := scan.SkipSpace(stmt, closeSrc+1)
	j := i
	for j < len(stmt) && scan.IsIdentByte(stmt[j]) {
		j++
	}
	if j == i {
		return Components{}, false
	}
	c.SourceAlias = stmt[i:j]

	onStart, afterOn := scan.IndexKeywords(stmt, j, "ON")
	if onStart == -1 {
		return Components{}, false
	}
	openOn := scan.SkipSpace(stmt, afterOn)
	if openOn >= len(stmt) || stmt[openOn] != '(' {
		return Components{}, false
	}
	closeOn := scan.FindBalanced(stmt, openOn)
	if closeOn == -1 {
		return Components{}, false
	}
	rawOn := strings.TrimSpace(stmt[openOn+1 : closeOn])
	stripped, markers := rewrite.StripOuterJoinMarkers(rawOn)
	c.OnCondition = stripped
	c.LeftJoin = markers > 0 &&
		strings.Contains(strings.ToUpper(rawOn), strings.ToUpper(c.SourceAlias)+".")

	wmStart, afterWM := scan.IndexKeywords(stmt, closeOn+1, "WHEN", "MATCHED", "THEN")
	if wmStart == -1 {
		return Components{}, false
	}
	usStart, afterUS := scan.IndexKeywords(stmt, afterWM, "UPDATE", "SET")
	if usStart == -1 {
		return Components{}, false
	}

	wnmStart, afterWNM := scan.IndexKeywords(stmt, afterUS, "WHEN", "NOT", "MATCHED")
	assignEnd := len(stmt)
	if wnmStart != -1 {
		assignEnd = wnmStart
	}
	c.Assignments = parseAssignments(stmt[afterUS:assignEnd])

	if wnmStart != -1 && !parseInsertClause(stmt, afterWNM, &c) {
		return Components{}, false
	}
	if len(c.InsertColumns) > 0 && len(c.InsertValues) > 0 &&
		len(c.InsertColumns) != len(c.InsertValues) {
		return Components{}, false
	}
	return c, true
}

// parseAssignments splits the UPDATE SET blob on depth-0 commas and maps
// alias-stripped column names to their expressions. Segments without an
// equals sign are skipped.
func parseAssignments(blob string) map[string]string {
	out := make(map[string]string)
	for _, pair := range scan.SplitArgs(blob) {
		lhs, rhs, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		col := strings.TrimSpace(StripAlias(lhs))
		if col == "" {
			continue
		}
		out[col] = strings.TrimSpace(rhs)
	}
	return out
}

// parseInsertClause fills the insert column and value lists from the WHEN
// NOT MATCHED branch. A missing INSERT keyword or VALUES list leaves the
// components as they are; an unmatched paren reports false.
func parseInsertClause(stmt string, from int, c *Components) bool {
	insStart, afterIns := scan.IndexKeywords(stmt, from, "INSERT")
	if insStart == -1 {
		return true
	}
	next := scan.SkipSpace(stmt, afterIns)
	if next < len(stmt) && stmt[next] == '(' {
		closeCols := scan.FindBalanced(stmt, next)
		if closeCols == -1 {
			return false
		}
		for _, col := range scan.SplitArgs(stmt[next+1 : closeCols]) {
			c.InsertColumns = append(c.InsertColumns, strings.TrimSpace(StripAlias(col)))
		}
		next = closeCols + 1
	}
	valsStart, afterVals := scan.IndexKeywords(stmt, next, "VALUES")
	if valsStart == -1 {
		return true
	}
	openVals := scan.SkipSpace(stmt, afterVals)
	if openVals >= len(stmt) || stmt[openVals] != '(' {
		return true
	}
	closeVals := scan.FindBalanced(stmt, openVals)
	if closeVals == -1 {
		return false
	}
	c.InsertValues = scan.SplitArgs(stmt[openVals+1 : closeVals])
	return true
}
