// Package script deals with whole-script concerns: pulling SQL out of
// shell wrappers, dropping diagnostic noise, and splitting a script into
// discrete statements.
package script

import "strings"

// Split divides a SQL script into statements on top-level semicolons.
//
// Semicolons inside single-quoted literals or after a -- line comment do
// not split. Comment text is consumed verbatim into the current statement
// buffer, so comments preceding a statement stay attached to it in the
// output. Statements are trimmed; empty ones are dropped; a residual
// non-empty buffer at end of input becomes a final statement even without
// a trailing semicolon. Order follows the source.
func Split(sqlText string) []string {
	var statements []string
	var buf strings.Builder
	inQuote := false
	i := 0
	for i < len(sqlText) {
		ch := sqlText[i]
		if !inQuote && ch == '-' && i+1 < len(sqlText) && sqlText[i+1] == '-' {
			nl := strings.IndexByte(sqlText[i:], '\n')
			if nl == -1 {
				buf.WriteString(sqlText[i:])
				break
			}
			buf.WriteString(sqlText[i : i+nl+1])
			i += nl + 1
			continue
		}
		if ch == '\'' {
			// A doubled '' toggles twice and lands back inside the
			// literal, so plain toggling is split-equivalent.
			inQuote = !inQuote
			buf.WriteByte(ch)
			i++
			continue
		}
		if ch == ';' && !inQuote {
			if stmt := strings.TrimSpace(buf.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			buf.Reset()
			i++
			continue
		}
		buf.WriteByte(ch)
		i++
	}
	if tail := strings.TrimSpace(buf.String()); tail != "" {
		statements = append(statements, tail)
	}
	return statements
}
