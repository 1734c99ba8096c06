package models

import (
	"regexp"
	"strings"
)

var emphasisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\*\*([^*]+)\*\*`),
	regexp.MustCompile(`\*([^*]+)\*`),
	regexp.MustCompile(`__([^_]+)__`),
	regexp.MustCompile(`_([^_]+)_`),
}

// StripEmphasis removes bold and italic markers, keeping the wrapped text.
func StripEmphasis(s string) string {
	for _, re := range emphasisPatterns {
		s = re.ReplaceAllString(s, "$1")
	}
	return s
}

// Lines splits text on line breaks, trimming each line and dropping blanks.
func Lines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
