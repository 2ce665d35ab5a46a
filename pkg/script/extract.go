package script

import "strings"

// ExtractHereDoc pulls the SQL block out of a shell script that feeds a
// query tool through a here-document. The block opens after the first
// line containing the <<! token and closes at a line that is exactly !
// once trimmed. Returns the block text (newline-terminated) and whether a
// non-empty block was found.
func ExtractHereDoc(fileText string) (string, bool) {
	var buf []string
	inBlock := false
	for _, line := range strings.Split(strings.TrimSuffix(fileText, "\n"), "\n") {
		if !inBlock {
			if strings.Contains(line, "<<!") {
				inBlock = true
			}
			continue
		}
		if strings.TrimSpace(line) == "!" {
			break
		}
		buf = append(buf, line)
	}
	if len(buf) == 0 {
		return "", false
	}
	return strings.Join(buf, "\n") + "\n", true
}

// DropDiagnostics removes diagnostic and control lines commonly embedded
// in batch scripts: progress probes like SELECT 'step 1' FROM DUAL, bare
// COMMIT and EXIT statements, and blank lines. All other lines pass
// through verbatim.
func DropDiagnostics(sqlText string) string {
	var out []string
	for _, raw := range strings.Split(sqlText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "SELECT '") && strings.Contains(upper, "FROM DUAL") {
			continue
		}
		if upper == "COMMIT;" || upper == "COMMIT" {
			continue
		}
		if upper == "EXIT;" || upper == "EXIT" {
			continue
		}
		out = append(out, raw)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

// ApplyBindings returns the SQL unchanged. ${VAR} placeholders are kept
// verbatim so the runtime environment of the converted script resolves
// them; the bindings parameter stays in the signature so the policy can
// change without touching call sites.
func ApplyBindings(sqlText string, bindings map[string]string) string {
	_ = bindings
	return sqlText
}
