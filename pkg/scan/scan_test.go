package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindInvocations(t *testing.T) {
	tests := []struct {
		name string
		text string
		fn   string
		want []string
	}{
		{"simple", "SELECT NVL(a, b) FROM t", "NVL", []string{"NVL(a, b)"}},
		{"case insensitive", "select nvl(a, b) from t", "NVL", []string{"nvl(a, b)"}},
		{"multiple", "NVL(a, b) + NVL(c, d)", "NVL", []string{"NVL(a, b)", "NVL(c, d)"}},
		{"nested parens", "NVL(f(x, g(y)), b)", "NVL", []string{"NVL(f(x, g(y)), b)"}},
		{"paren in literal", "NVL('(', b)", "NVL", []string{"NVL('(', b)"}},
		{"name in literal ignored", "SELECT 'NVL(a, b)' FROM t", "NVL", nil},
		{"longer identifier ignored", "MY_NVL(a, b)", "NVL", nil},
		{"space before paren ignored", "NVL (a, b)", "NVL", nil},
		{"doubled quote escape", "NVL('it''s', b)", "NVL", []string{"NVL('it''s', b)"}},
		{"unterminated stops scan", "NVL(a, b) + NVL(c", "NVL", []string{"NVL(a, b)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invs := FindInvocations(tt.text, tt.fn)
			var got []string
			for _, inv := range invs {
				got = append(got, inv.Text(tt.text))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvocationAccessors(t *testing.T) {
	text := "x + DECODE(a, 1, 'one') + y"
	invs := FindInvocations(text, "DECODE")
	require.Len(t, invs, 1)

	inv := invs[0]
	assert.Equal(t, "DECODE(a, 1, 'one')", inv.Text(text))
	assert.Equal(t, "a, 1, 'one'", inv.Args(text))
	assert.Equal(t, "DECODE(a, 1, 'one')", inv.Span().Text(text))
}

func TestFindBalanced(t *testing.T) {
	tests := []struct {
		name string
		text string
		open int
		want int
	}{
		{"flat", "(a)", 0, 2},
		{"nested", "(a(b)c)", 0, 6},
		{"paren in literal", "(')')", 0, 4},
		{"doubled quote", "('it''s)', x)", 0, 12},
		{"unterminated", "(a(b)", 0, -1},
		{"not a paren", "abc", 0, -1},
		{"out of range", "(a)", 9, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindBalanced(tt.text, tt.open))
		})
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "a, b", []string{"a", "b"}},
		{"nested call", "f(x, y), b", []string{"f(x, y)", "b"}},
		{"comma in literal", "'a,b', c", []string{"'a,b'", "c"}},
		{"doubled quote kept", "'it''s', c", []string{"'it''s'", "c"}},
		{"trailing comma dropped", "a, b,", []string{"a", "b"}},
		{"empty middle kept", "a,,b", []string{"a", "", "b"}},
		{"single", "a", []string{"a"}},
		{"whitespace only", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArgs(tt.in))
		})
	}
}

func TestStripHints(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no hint", "SELECT a FROM t", "SELECT a FROM t"},
		{"basic hint", "SELECT /*+ parallel(4) */ a FROM t", "SELECT  a FROM t"},
		{"two hints", "/*+ a */x/*+ b */y", "xy"},
		{"plain block comment kept", "SELECT /* note */ a", "SELECT /* note */ a"},
		{"unterminated drops rest", "SELECT /*+ parallel a FROM t", "SELECT "},
		{"hint marker in literal kept", "SELECT '/*+ x */' FROM t", "SELECT '/*+ x */' FROM t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHints(tt.in))
		})
	}
}

func TestIndexKeywords(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		from      int
		words     []string
		wantStart int
		wantEnd   int
	}{
		{"single word", "MERGE INTO t", 0, []string{"USING"}, -1, -1},
		{"found", "MERGE INTO t USING (q)", 0, []string{"USING"}, 13, 18},
		{"case insensitive", "merge into t using (q)", 0, []string{"USING"}, 13, 18},
		{"multi word", "x WHEN NOT MATCHED y", 0, []string{"WHEN", "NOT", "MATCHED"}, 2, 18},
		{"newline separated", "x WHEN\n\tNOT   MATCHED y", 0, []string{"WHEN", "NOT", "MATCHED"}, 2, 21},
		{"word boundary", "USINGX USING", 0, []string{"USING"}, 7, 12},
		{"in literal ignored", "' USING ' USING", 0, []string{"USING"}, 10, 15},
		{"from offset", "USING a USING b", 1, []string{"USING"}, 8, 13},
		{"absent", "SELECT 1", 0, []string{"USING"}, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := IndexKeywords(tt.text, tt.from, tt.words...)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestIndexKeywordsTopLevel(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		from      int
		words     []string
		wantStart int
		wantEnd   int
	}{
		{"top level hit", "UPDATE t SET x = 1 WHERE y > 2", 0, []string{"WHERE"}, 19, 24},
		{"nested skipped", "SET x = (SELECT 1 FROM s WHERE k = 1)", 0, []string{"WHERE"}, -1, -1},
		{"nested then top level", "SET x = (SELECT 1 WHERE k = 1) WHERE y = 2", 0, []string{"WHERE"}, 31, 36},
		{"in literal ignored", "SET x = ' WHERE ' WHERE y = 2", 0, []string{"WHERE"}, 18, 23},
		{"after closing paren", "(a) WHERE b", 0, []string{"WHERE"}, 4, 9},
		{"absent", "SET x = 1", 0, []string{"WHERE"}, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := IndexKeywordsTopLevel(tt.text, tt.from, tt.words...)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestSkipSpace(t *testing.T) {
	assert.Equal(t, 3, SkipSpace("   a", 0))
	assert.Equal(t, 2, SkipSpace("ab", 2))
	assert.Equal(t, 4, SkipSpace("a \n\tb", 1))
}
