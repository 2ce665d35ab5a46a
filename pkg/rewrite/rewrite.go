// Package rewrite applies the safe Oracle to Spark function rewrites.
//
// Each rule is a pure text transform. Rules run once per statement in a
// fixed order; later rules see the output of earlier ones, and the date
// arithmetic rule must run before the two-argument TO_DATE rule so the
// day offset is captured while the original call is still intact. A rule
// that cannot confidently apply leaves the invocation byte for byte
// unchanged.
package rewrite

import (
	"strings"

	"github.com/helios-data/helios/pkg/scan"
)

// Apply runs the full rewrite chain over one statement. Running Apply on
// its own output is a no-op.
func Apply(stmt string) string {
	s := stmt
	s = rewriteDateArithmetic(s)
	s = rewriteNVL(s)
	s = rewriteDecode(s)
	s = rewriteToChar(s)
	s = rewriteToDate(s)
	s = rewriteTrunc(s)
	return s
}

// replaceInvocations rewrites every name(...) occurrence using fn, which
// receives the split argument list and returns the replacement text, or
// false to keep the original invocation. Replacements cover exactly the
// name through the matching closing paren.
func replaceInvocations(text, name string, fn func(args []string) (string, bool)) string {
	invs := scan.FindInvocations(text, name)
	if len(invs) == 0 {
		return text
	}
	var out strings.Builder
	last := 0
	for _, inv := range invs {
		out.WriteString(text[last:inv.NameStart])
		if rep, ok := fn(scan.SplitArgs(inv.Args(text))); ok {
			out.WriteString(rep)
		} else {
			out.WriteString(inv.Text(text))
		}
		last = inv.Close + 1
	}
	out.WriteString(text[last:])
	return out.String()
}

// rewriteDateArithmetic turns TO_DATE(...) - N into
// date_sub(TO_DATE(...), N) when a bare non-negative integer literal
// follows a top-level minus after the closing paren.
func rewriteDateArithmetic(text string) string {
	invs := scan.FindInvocations(text, "TO_DATE")
	if len(invs) == 0 {
		return text
	}
	var out strings.Builder
	last := 0
	for _, inv := range invs {
		out.WriteString(text[last:inv.NameStart])
		n, next := minusLiteral(text, inv.Close+1)
		if n == "" {
			out.WriteString(inv.Text(text))
			last = inv.Close + 1
			continue
		}
		out.WriteString("date_sub(TO_DATE(")
		out.WriteString(inv.Args(text))
		out.WriteString("), ")
		out.WriteString(n)
		out.WriteString(")")
		last = next
	}
	out.WriteString(text[last:])
	return out.String()
}

// minusLiteral matches optional whitespace, a minus sign, optional
// whitespace and a digit run starting at i. It returns the digits and the
// index just past them, or "" when the pattern is absent. A digit run
// followed by a decimal point or an identifier character is not an
// integer literal and does not match.
func minusLiteral(text string, i int) (string, int) {
	j := scan.SkipSpace(text, i)
	if j >= len(text) || text[j] != '-' {
		return "", i
	}
	j = scan.SkipSpace(text, j+1)
	start := j
	for j < len(text) && text[j] >= '0' && text[j] <= '9' {
		j++
	}
	if j == start {
		return "", i
	}
	if j < len(text) && (text[j] == '.' || scan.IsIdentByte(text[j])) {
		return "", i
	}
	return text[start:j], j
}

// rewriteNVL turns NVL with two or more arguments into COALESCE with the
// same ordered arguments.
func rewriteNVL(text string) string {
	return replaceInvocations(text, "NVL", func(args []string) (string, bool) {
		if len(args) < 2 {
			return "", false
		}
		return "COALESCE(" + strings.Join(args, ", ") + ")", true
	})
}

// rewriteDecode turns DECODE(expr, v1, r1, ..., [default]) into a CASE
// WHEN chain. After removing expr, an odd argument count means the last
// argument is the ELSE default, otherwise the default is NULL.
func rewriteDecode(text string) string {
	return replaceInvocations(text, "DECODE", func(args []string) (string, bool) {
		if len(args) < 3 {
			return "", false
		}
		expr := args[0]
		pairs := args[1:]
		def := "NULL"
		if len(pairs)%2 == 1 {
			def = pairs[len(pairs)-1]
			pairs = pairs[:len(pairs)-1]
		}
		var b strings.Builder
		b.WriteString("CASE")
		for i := 0; i+1 < len(pairs); i += 2 {
			b.WriteString(" WHEN ")
			b.WriteString(expr)
			b.WriteString(" = ")
			b.WriteString(pairs[i])
			b.WriteString(" THEN ")
			b.WriteString(pairs[i+1])
		}
		b.WriteString(" ELSE ")
		b.WriteString(def)
		b.WriteString(" END")
		return b.String(), true
	})
}

// rewriteToChar turns TO_CHAR(expr, 'fmt') into date_format with the
// format tokens mapped to Spark. Unsupported tokens leave the invocation
// untouched.
func rewriteToChar(text string) string {
	return replaceInvocations(text, "TO_CHAR", func(args []string) (string, bool) {
		if len(args) != 2 {
			return "", false
		}
		mapped, ok := mapQuotedFormat(args[1])
		if !ok {
			return "", false
		}
		return "date_format(" + args[0] + ", '" + mapped + "')", true
	})
}

// rewriteToDate turns two-argument TO_DATE(expr, 'fmt') into the Spark
// to_date call with the format mapped. One-argument TO_DATE stays as is.
func rewriteToDate(text string) string {
	return replaceInvocations(text, "TO_DATE", func(args []string) (string, bool) {
		if len(args) != 2 {
			return "", false
		}
		mapped, ok := mapQuotedFormat(args[1])
		if !ok {
			return "", false
		}
		return "to_date(" + args[0] + ", '" + mapped + "')", true
	})
}

// rewriteTrunc turns single-argument TRUNC(x) into date_trunc('DAY', x).
// Two-argument TRUNC carries a truncation unit this rule does not
// understand, so it stays untouched.
func rewriteTrunc(text string) string {
	return replaceInvocations(text, "TRUNC", func(args []string) (string, bool) {
		if len(args) != 1 {
			return "", false
		}
		return "date_trunc('DAY', " + args[0] + ")", true
	})
}

// mapQuotedFormat unwraps a single-quoted format literal and maps its
// tokens. Arguments that are not quoted literals report false.
func mapQuotedFormat(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '\'' || arg[len(arg)-1] != '\'' {
		return "", false
	}
	return MapDateFormat(arg[1 : len(arg)-1])
}

// StripOuterJoinMarkers removes legacy Oracle (+) outer-join markers
// outside quoted literals and reports how many were removed. Whitespace
// between the parens and the plus is tolerated.
func StripOuterJoinMarkers(text string) (string, int) {
	var out strings.Builder
	count := 0
	inQuote := false
	i := 0
	for i < len(text) {
		ch := text[i]
		if ch == '\'' {
			if inQuote && i+1 < len(text) && text[i+1] == '\'' {
				out.WriteString("''")
				i += 2
				continue
			}
			inQuote = !inQuote
			out.WriteByte(ch)
			i++
			continue
		}
		if !inQuote && ch == '(' {
			if end, ok := matchMarker(text, i); ok {
				count++
				i = end
				continue
			}
		}
		out.WriteByte(ch)
		i++
	}
	return out.String(), count
}

// matchMarker matches ( + ) starting at the opening paren and returns the
// index just past the closing paren.
func matchMarker(text string, i int) (int, bool) {
	j := scan.SkipSpace(text, i+1)
	if j >= len(text) || text[j] != '+' {
		return 0, false
	}
	j = scan.SkipSpace(text, j+1)
	if j >= len(text) || text[j] != ')' {
		return 0, false
	}
	return j + 1, true
}
