package convert

import (
	"fmt"
	"strings"

	"github.com/helios-data/helios/pkg/scan"
)

// deleteParts is the parsed shape of a simple single-table DELETE:
//
//	DELETE FROM <table> [<alias>] [WHERE <condition>]
type deleteParts struct {
	Table string
	Alias string
	Where string
}

// parseDelete parses the supported DELETE shape. ok is false for
// anything more elaborate.
func parseDelete(stmt string) (deleteParts, bool) {
	at, kwEnd := scan.IndexKeywords(stmt, 0, "DELETE", "FROM")
	if at == -1 || at != scan.SkipSpace(stmt, 0) {
		return deleteParts{}, false
	}

	p := deleteParts{}
	region := stmt[kwEnd:]
	if whereAt, whereEnd := scan.IndexKeywordsTopLevel(stmt, kwEnd, "WHERE"); whereAt != -1 {
		region = stmt[kwEnd:whereAt]
		p.Where = strings.TrimSpace(stmt[whereEnd:])
		if p.Where == "" {
			return deleteParts{}, false
		}
	}

	fields := strings.Fields(region)
	switch len(fields) {
	case 1:
		p.Table = fields[0]
	case 2:
		p.Table, p.Alias = fields[0], fields[1]
	default:
		return deleteParts{}, false
	}
	return p, true
}

// overwrite keeps the complement of the deleted rows. A DELETE without a
// condition empties the table.
func (p deleteParts) overwrite() string {
	from := p.Table
	if p.Alias != "" {
		from += " " + p.Alias
	}
	where := "1 = 0"
	if p.Where != "" {
		where = fmt.Sprintf("NOT (%s)", p.Where)
	}
	return fmt.Sprintf("INSERT OVERWRITE TABLE %s\nSELECT * FROM %s WHERE %s", p.Table, from, where)
}
