// Package merge decomposes a constrained Oracle MERGE shape into an
// equivalent Spark INSERT OVERWRITE statement.
//
// The supported shape is
//
//	MERGE INTO <table> [<alias>] USING ( <subquery> ) <alias>
//	ON ( <condition> )
//	WHEN MATCHED THEN UPDATE SET <assignments>
//	[WHEN NOT MATCHED THEN INSERT ( <cols> ) VALUES ( <vals> )]
//
// Keywords are located case-insensitively with any whitespace between
// them, and every parenthesized region is consumed quote-aware. Anything
// outside the shape makes Parse report no result; it never panics on
// malformed input.
package merge

import "strings"

// Components is the parsed shape of a supported MERGE statement.
// InsertColumns fixes the column order for every synthesized branch.
type Components struct {
	TargetTable   string
	TargetAlias   string
	SourceQuery   string
	SourceAlias   string
	OnCondition   string
	LeftJoin      bool
	Assignments   map[string]string
	InsertColumns []string
	InsertValues  []string
}

// Usable reports whether the components carry the complete insert clause
// the full rewrite needs.
func (c Components) Usable() bool {
	return len(c.InsertColumns) > 0 && len(c.InsertColumns) == len(c.InsertValues)
}

// StripAlias removes a leading alias qualifier from a column reference:
// a.col becomes col. Unqualified references pass through trimmed.
func StripAlias(col string) string {
	c := strings.TrimSpace(col)
	if _, after, found := strings.Cut(c, "."); found {
		return after
	}
	return c
}
