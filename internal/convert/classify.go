package convert

import (
	"strings"

	"github.com/helios-data/helios/pkg/scan"
)

// Kind classifies a statement by its leading keyword.
type Kind int

const (
	KindPlain Kind = iota
	KindMerge
	KindUpdate
	KindDelete
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindMerge:
		return "merge"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindUnsupported:
		return "unsupported"
	default:
		return "plain"
	}
}

// unsupportedKeywords lead statements that have no Spark SQL rendering:
// PL/SQL blocks, procedural calls and Oracle-only DCL.
var unsupportedKeywords = map[string]bool{
	"BEGIN":   true,
	"DECLARE": true,
	"EXEC":    true,
	"EXECUTE": true,
	"CALL":    true,
	"GRANT":   true,
	"REVOKE":  true,
	"LOCK":    true,
}

// Classify reports the statement kind from its leading keyword, skipping
// whitespace and -- comment lines.
func Classify(stmt string) Kind {
	switch word := leadingKeyword(stmt); {
	case word == "MERGE":
		return KindMerge
	case word == "UPDATE":
		return KindUpdate
	case word == "DELETE":
		return KindDelete
	case unsupportedKeywords[word]:
		return KindUnsupported
	default:
		return KindPlain
	}
}

// leadingKeyword returns the first identifier after whitespace and
// comment lines, uppercased.
func leadingKeyword(stmt string) string {
	i := skipCommentsAndSpace(stmt)
	start := i
	for i < len(stmt) && scan.IsIdentByte(stmt[i]) {
		i++
	}
	return strings.ToUpper(stmt[start:i])
}

// skipCommentsAndSpace returns the index of the first byte that belongs
// to neither whitespace nor a -- comment line.
func skipCommentsAndSpace(stmt string) int {
	i := 0
	for i < len(stmt) {
		i = scan.SkipSpace(stmt, i)
		if strings.HasPrefix(stmt[i:], "--") {
			for i < len(stmt) && stmt[i] != '\n' {
				i++
			}
			continue
		}
		break
	}
	return i
}

// splitLeadingComments separates a statement's leading comment lines from
// its body so transforms see bare SQL and emitted output keeps the
// original commentary.
func splitLeadingComments(stmt string) (prefix, body string) {
	i := skipCommentsAndSpace(stmt)
	return stmt[:i], stmt[i:]
}
