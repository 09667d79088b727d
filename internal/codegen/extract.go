package codegen

import (
	"regexp"
	"strings"
)

var (
	reFence = regexp.MustCompile("(?s)```(?:python|py|svg|xml)?\\s*\n(.*?)```")

	// reAnswerLeak catches generated labels that spell out the quantity the
	// student is asked to compute. Scoped to string literals and SVG text so
	// legitimate variable names don't trip it.
	reAnswerLeak = regexp.MustCompile(`(?i)["'>][^"'<]*\b(answer|solution|result)\b\s*[:=]`)
)

// ExtractCode pulls runnable source out of a model response. Models wrap
// code in markdown fences and pad it with prose; the first fenced block
// wins, and a fence-free response is taken verbatim after trimming.
func ExtractCode(raw string) string {
	if m := reFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// ExtractSVG pulls a complete SVG document out of a model response,
// tolerating fences and surrounding prose. Returns "" when no svg element
// is present.
func ExtractSVG(raw string) string {
	s := ExtractCode(raw)
	start := strings.Index(s, "<svg")
	end := strings.LastIndex(s, "</svg>")
	if start < 0 || end < 0 || end < start {
		return ""
	}
	return s[start : end+len("</svg>")]
}

// LeaksAnswer reports whether generated source labels an answer, solution,
// or result value. Diagrams accompany questions; printing the expected
// numeric outcome on the figure defeats the question.
func LeaksAnswer(source string) bool {
	return reAnswerLeak.MatchString(source)
}
