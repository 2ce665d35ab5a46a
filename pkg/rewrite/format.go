package rewrite

import "strings"

// formatTokens maps Oracle date-format tokens to their Spark equivalents.
// Order matters: longer tokens replace before their prefixes.
var formatTokens = []struct {
	oracle string
	spark  string
}{
	{"YYYY", "yyyy"},
	{"YY", "yy"},
	{"HH24", "HH"},
	{"HH12", "hh"},
	{"MI", "mm"},
	{"SS", "ss"},
	{"MM", "MM"},
	{"DD", "dd"},
}

// MapDateFormat translates an Oracle date-format string to its Spark
// form. Validation is fail-closed: every alphabetic run in the uppercased
// format must be a known token, otherwise the whole format is rejected so
// a partially translated format never escapes. Replacement is
// case-sensitive over the original text, which keeps already translated
// Spark formats stable under a second pass.
func MapDateFormat(format string) (string, bool) {
	upper := strings.ToUpper(format)
	i := 0
	for i < len(upper) {
		if !isAlpha(upper[i]) {
			i++
			continue
		}
		j := i
		for j < len(upper) && isAlpha(upper[j]) {
			j++
		}
		if !knownToken(upper[i:j]) {
			return "", false
		}
		i = j
	}
	out := format
	for _, tok := range formatTokens {
		out = strings.ReplaceAll(out, tok.oracle, tok.spark)
	}
	return out, true
}

func knownToken(run string) bool {
	for _, tok := range formatTokens {
		if run == tok.oracle {
			return true
		}
	}
	return false
}

func isAlpha(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
