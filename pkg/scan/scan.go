// Package scan provides quote-aware lexical primitives for raw SQL text.
//
// Nothing here builds a syntax tree. The primitives locate balanced
// parenthesis ranges, function invocation spans, argument boundaries and
// keyword positions while tracking single-quote literal state, so callers
// can rewrite text without being fooled by quoted content. A doubled ''
// inside a literal is consumed as escaped content and does not close the
// literal.
package scan

import "strings"

// Span is a half-open [Start, End) range into a source string.
type Span struct {
	Start int
	End   int
}

// Text returns the substring covered by the span.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// Invocation marks one function call occurrence: the index where the name
// begins, the opening paren, and its matching closing paren.
type Invocation struct {
	NameStart int
	Open      int
	Close     int
}

// Span returns the full invocation range, name through closing paren.
func (inv Invocation) Span() Span {
	return Span{Start: inv.NameStart, End: inv.Close + 1}
}

// Args returns the raw argument list between the parens.
func (inv Invocation) Args(src string) string {
	return src[inv.Open+1 : inv.Close]
}

// Text returns the invocation text, name through closing paren.
func (inv Invocation) Text(src string) string {
	return src[inv.NameStart : inv.Close+1]
}

// FindInvocations scans text for name( occurrences, case-insensitively,
// and returns one Invocation per call with a matching closing paren.
// Hits inside single-quoted literals are ignored, as are hits embedded in
// a longer identifier (MY_NVL does not match NVL). An unterminated call
// stops the scan; the spans found so far are returned.
func FindInvocations(text, name string) []Invocation {
	var out []Invocation
	inQuote := false
	i := 0
	for i < len(text) {
		ch := text[i]
		if ch == '\'' {
			if inQuote && i+1 < len(text) && text[i+1] == '\'' {
				i += 2
				continue
			}
			inQuote = !inQuote
			i++
			continue
		}
		if inQuote {
			i++
			continue
		}
		if matchesName(text, i, name) {
			if i > 0 && IsIdentByte(text[i-1]) {
				i++
				continue
			}
			open := i + len(name)
			end := FindBalanced(text, open)
			if end == -1 {
				break
			}
			out = append(out, Invocation{NameStart: i, Open: open, Close: end})
			i = end + 1
			continue
		}
		i++
	}
	return out
}

// matchesName reports whether text at pos starts with name immediately
// followed by an opening paren, ignoring case.
func matchesName(text string, pos int, name string) bool {
	end := pos + len(name)
	if end >= len(text) {
		return false
	}
	return strings.EqualFold(text[pos:end], name) && text[end] == '('
}

// FindBalanced returns the index of the closing paren matching the opening
// paren at open, quote-aware. Depth starts at 1 on the opening paren and
// the match is the paren that brings it back to 0. Returns -1 when
// text[open] is not an opening paren or the call is unterminated.
func FindBalanced(text string, open int) int {
	if open < 0 || open >= len(text) || text[open] != '(' {
		return -1
	}
	depth := 0
	inQuote := false
	i := open
	for i < len(text) {
		ch := text[i]
		if ch == '\'' {
			if inQuote && i+1 < len(text) && text[i+1] == '\'' {
				i += 2
				continue
			}
			inQuote = !inQuote
			i++
			continue
		}
		if inQuote {
			i++
			continue
		}
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// SplitArgs splits a raw argument list on commas at paren depth zero,
// quote-aware and nesting-aware. Segments between commas are trimmed and
// kept even when empty; the trailing segment is emitted only when
// non-empty, with or without a trailing comma.
func SplitArgs(argList string) []string {
	var args []string
	var buf strings.Builder
	depth := 0
	inQuote := false
	i := 0
	for i < len(argList) {
		ch := argList[i]
		if ch == '\'' {
			if inQuote && i+1 < len(argList) && argList[i+1] == '\'' {
				buf.WriteString("''")
				i += 2
				continue
			}
			inQuote = !inQuote
			buf.WriteByte(ch)
			i++
			continue
		}
		if !inQuote {
			switch {
			case ch == '(':
				depth++
			case ch == ')':
				if depth > 0 {
					depth--
				}
			case ch == ',' && depth == 0:
				args = append(args, strings.TrimSpace(buf.String()))
				buf.Reset()
				i++
				continue
			}
		}
		buf.WriteByte(ch)
		i++
	}
	if tail := strings.TrimSpace(buf.String()); tail != "" {
		args = append(args, tail)
	}
	return args
}

// StripHints removes optimizer hint comments of the form /*+ ... */ up to
// the first closing marker; hints do not nest. Regular block comments are
// kept. An unterminated hint drops the remainder of the text rather than
// emitting a half-open comment.
func StripHints(text string) string {
	var out strings.Builder
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
		if !inQuote && strings.HasPrefix(text[i:], "/*+") {
			end := strings.Index(text[i+3:], "*/")
			if end == -1 {
				break
			}
			i += 3 + end + 2
			continue
		}
		out.WriteByte(ch)
		i++
	}
	return out.String()
}

// IndexKeywords finds the first occurrence at or after from of the given
// keyword sequence, case-insensitive and quote-aware, with any run of
// whitespace between consecutive words. Both ends must fall on word
// boundaries. Returns the index of the first word and the index just past
// the last word, or (-1, -1).
func IndexKeywords(text string, from int, words ...string) (int, int) {
	if len(words) == 0 {
		return -1, -1
	}
	inQuote := false
	i := from
	if i < 0 {
		i = 0
	}
	for i < len(text) {
		ch := text[i]
		if ch == '\'' {
			if inQuote && i+1 < len(text) && text[i+1] == '\'' {
				i += 2
				continue
			}
			inQuote = !inQuote
			i++
			continue
		}
		if inQuote {
			i++
			continue
		}
		if end := matchKeywords(text, i, words); end != -1 {
			return i, end
		}
		i++
	}
	return -1, -1
}

// IndexKeywordsTopLevel is IndexKeywords restricted to depth zero:
// keyword hits inside parenthesized regions are ignored. Depth is
// counted from the from index, so from must sit at top level.
func IndexKeywordsTopLevel(text string, from int, words ...string) (int, int) {
	if len(words) == 0 {
		return -1, -1
	}
	inQuote := false
	depth := 0
	i := from
	if i < 0 {
		i = 0
	}
	for i < len(text) {
		ch := text[i]
		if ch == '\'' {
			if inQuote && i+1 < len(text) && text[i+1] == '\'' {
				i += 2
				continue
			}
			inQuote = !inQuote
			i++
			continue
		}
		if inQuote {
			i++
			continue
		}
		switch ch {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 {
			if end := matchKeywords(text, i, words); end != -1 {
				return i, end
			}
		}
		i++
	}
	return -1, -1
}

// matchKeywords matches the word sequence starting exactly at pos and
// returns the index just past the last word, or -1.
func matchKeywords(text string, pos int, words []string) int {
	if pos > 0 && IsIdentByte(text[pos-1]) {
		return -1
	}
	i := pos
	for w, word := range words {
		if w > 0 {
			j := SkipSpace(text, i)
			if j == i {
				return -1
			}
			i = j
		}
		end := i + len(word)
		if end > len(text) || !strings.EqualFold(text[i:end], word) {
			return -1
		}
		if end < len(text) && IsIdentByte(text[end]) {
			return -1
		}
		i = end
	}
	return i
}

// SkipSpace returns the index of the first non-whitespace byte at or
// after i.
func SkipSpace(text string, i int) int {
	for i < len(text) && isSpaceByte(text[i]) {
		i++
	}
	return i
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// IsIdentByte reports whether b can appear inside an unquoted identifier.
func IsIdentByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
