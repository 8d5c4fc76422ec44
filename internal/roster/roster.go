// Package roster parses bulk physician input: pasted name lists, uploaded
// roster files (optionally RTF-wrapped), and NPI lists.
package roster

import (
	"regexp"
	"strings"
)

var (
	nonAlpha   = regexp.MustCompile(`[^a-zA-Z\s]`)
	multiSpace = regexp.MustCompile(`\s+`)

	rtfControl = regexp.MustCompile(`\\[a-z]+-?\d*\s?`)
	rtfBraces  = regexp.MustCompile(`[{}]`)
	rtfEscapes = regexp.MustCompile(`\\'[0-9a-f]{2}`)

	npiPattern = regexp.MustCompile(`\d{10}`)
)

// Entry is one parsed roster line: a cleaned name and an optional per-line
// state code.
type Entry struct {
	Name  string
	State string
}

// CleanName strips everything but letters and spaces and collapses runs of
// whitespace.
func CleanName(raw string) string {
	s := nonAlpha.ReplaceAllString(raw, "")
	return strings.Join(strings.Fields(s), " ")
}

// ParseNames cleans a list of free-form names. Entries without at least a
// first and last name are dropped.
func ParseNames(lines []string) []Entry {
	var out []Entry
	for _, line := range lines {
		name := CleanName(line)
		if name == "" || len(strings.Fields(name)) < 2 {
			continue
		}
		out = append(out, Entry{Name: name})
	}
	return out
}

// ParseFile parses roster file content. RTF wrapping is stripped first.
// Each non-empty line may carry a state as "Name, ST" or "Name (ST)";
// anything else is treated as a bare name.
func ParseFile(content string) []Entry {
	if strings.HasPrefix(content, `{\rtf`) {
		content = stripRTF(content)
	}

	var out []Entry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var name, state string
		switch {
		case strings.Contains(line, ","):
			parts := strings.SplitN(line, ",", 2)
			name = strings.TrimSpace(parts[0])
			state = strings.Trim(strings.TrimSpace(parts[1]), "() ")
		case strings.Contains(line, " (") && strings.HasSuffix(line, ")"):
			i := strings.LastIndex(line, " (")
			name = strings.TrimSpace(line[:i])
			state = strings.TrimSuffix(line[i+2:], ")")
		default:
			name = line
		}

		name = CleanName(name)
		if name == "" || len(strings.Fields(name)) < 2 {
			continue
		}
		out = append(out, Entry{Name: name, State: strings.ToUpper(strings.TrimSpace(state))})
	}
	return out
}

// ParseNPIs extracts one 10-digit NPI per non-empty line. Lines without a
// 10-digit run are skipped; duplicates are preserved (dedup belongs to the
// model store).
func ParseNPIs(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if npi := npiPattern.FindString(line); npi != "" {
			out = append(out, npi)
		}
	}
	return out
}

// stripRTF unwraps minimal RTF formatting. Paragraph marks become line
// breaks first, so control-word removal cannot collapse lines; then hex
// escapes, remaining control words and group braces go away.
func stripRTF(content string) string {
	content = strings.ReplaceAll(content, `\par`, "\n")
	content = rtfEscapes.ReplaceAllString(content, "")
	content = rtfControl.ReplaceAllString(content, " ")
	return rtfBraces.ReplaceAllString(content, "")
}
