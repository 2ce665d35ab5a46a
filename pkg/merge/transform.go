package merge

import (
	"fmt"
	"strings"
)

// Transform rewrites a MERGE statement into its INSERT OVERWRITE
// reconstruction. ok is false when the shape cannot be parsed or the
// insert clause is unusable; callers then fall back to Skeleton.
func Transform(stmt string) (string, bool) {
	comp, ok := Parse(stmt)
	if !ok || !comp.Usable() {
		return "", false
	}
	return comp.Synthesize(), true
}

// Synthesize builds the INSERT OVERWRITE statement. Three branches are
// unioned: updated rows (target joined to source, UPDATE SET expressions
// applied), inserted rows (source rows absent from the target) and
// preserved rows (target rows absent from the source). Column order in
// every branch follows InsertColumns so the SELECT * stays positionally
// aligned with the target table.
func (c Components) Synthesize() string {
	join := "JOIN"
	if c.LeftJoin {
		join = "LEFT JOIN"
	}

	updated := make([]string, 0, len(c.InsertColumns))
	inserted := make([]string, 0, len(c.InsertColumns))
	preserved := make([]string, 0, len(c.InsertColumns))
	for i, col := range c.InsertColumns {
		expr, assigned := c.Assignments[col]
		if !assigned {
			expr = c.TargetAlias + "." + col
		}
		updated = append(updated, expr+" AS "+col)
		inserted = append(inserted, c.InsertValues[i]+" AS "+col)
		preserved = append(preserved, c.TargetAlias+"."+col+" AS "+col)
	}

	updatedSQL := fmt.Sprintf("SELECT %s FROM %s %s %s (\n%s\n) %s ON (%s)",
		strings.Join(updated, ", "), c.TargetTable, c.TargetAlias, join,
		c.SourceQuery, c.SourceAlias, c.OnCondition)
	insertedSQL := fmt.Sprintf("SELECT %s FROM (\n%s\n) %s LEFT ANTI JOIN %s %s ON (%s)",
		strings.Join(inserted, ", "), c.SourceQuery, c.SourceAlias,
		c.TargetTable, c.TargetAlias, c.OnCondition)
	preservedSQL := fmt.Sprintf("SELECT %s FROM %s %s LEFT ANTI JOIN (\n%s\n) %s ON (%s)",
		strings.Join(preserved, ", "), c.TargetTable, c.TargetAlias,
		c.SourceQuery, c.SourceAlias, c.OnCondition)

	return fmt.Sprintf("INSERT OVERWRITE TABLE %s\nSELECT * FROM (\n%s\nUNION ALL\n%s\nUNION ALL\n%s\n) u",
		c.TargetTable, updatedSQL, insertedSQL, preservedSQL)
}

const skeletonText = `-- HELIOS_NOTE: Converted MERGE into INSERT OVERWRITE skeleton for Hive-Spark
-- Review required: ensure target columns and key semantics are preserved.
-- Example pattern:
-- INSERT OVERWRITE TABLE <target>
-- SELECT * FROM (
--   /* when matched: compose updated rows */
--   SELECT <updated_columns...> FROM <source> s JOIN <target> t ON <keys>
--   UNION ALL
--   /* when not matched: insert new rows */
--   SELECT <insert_columns...> FROM <source> s LEFT ANTI JOIN <target> t ON <keys>
--   UNION ALL
--   /* preserved rows not updated */
--   SELECT <existing_columns...> FROM <target> t LEFT ANTI JOIN <source> s ON <keys>
-- ) u;
`

// Skeleton returns the commented reconstruction template emitted when a
// MERGE cannot be fully rewritten. Every line is a -- comment so the
// block is syntactically inert in the output. Non-MERGE statements report
// false.
func Skeleton(stmt string) (string, bool) {
	up := strings.ToUpper(strings.TrimSpace(stmt))
	if !strings.HasPrefix(up, "MERGE ") {
		return "", false
	}
	return skeletonText, true
}
