package llm

import (
	"regexp"
	"strings"
)

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•·]|\d+[.)])\s+`)

// ParseBullets splits provider output into list items, dropping bullet markers
// and numbering. Blank lines are skipped.
func ParseBullets(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// Content shapes a result for the response: a list for bullets, a string otherwise.
func Content(mode string, res Result) any {
	if NormalizeMode(mode) == ModeBullets {
		if res.Items != nil {
			return res.Items
		}
		return ParseBullets(res.Text)
	}
	if res.Text == "" && len(res.Items) > 0 {
		return strings.Join(res.Items, " ")
	}
	return strings.TrimSpace(res.Text)
}
