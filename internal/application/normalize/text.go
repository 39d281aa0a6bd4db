package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

var (
	headingMarker = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	emphasis      = strings.NewReplacer("**", "", "__", "", "`", "")

	// score fallbacks, tried in order; the first one that matches wins
	outOfTen     = regexp.MustCompile(`(\d+)(?:[.,]\d+)?\s*/\s*10\b`)
	labeledScore = regexp.MustCompile(`(?i)\b(?:score|puan|skor)\s*[:=]\s*(\d+)`)
)

// Sanitize strips literal markdown markers from narrative text. HTML is left
// as is; the remote workflow is trusted.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = headingMarker.ReplaceAllString(s, "")
	s = emphasis.Replace(s)
	return strings.TrimSpace(s)
}

func narrative(r gjson.Result, keys ...string) string {
	s := Sanitize(firstText(r, keys...))
	if s == "" {
		return analysis.Placeholder
	}
	return s
}

// ExtractScore returns a 0-10 score from an explicit field, falling back to
// "N/10" and then "score: N" in the narrative. No match yields 0.
func ExtractScore(field gjson.Result, narrative string) (int, analysis.ScoreSource) {
	if a := amount(field); a.Valid {
		return clampScore(int(math.Round(a.Value))), analysis.ScoreFromField
	}
	for _, rx := range []*regexp.Regexp{outOfTen, labeledScore} {
		if m := rx.FindStringSubmatch(narrative); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return clampScore(n), analysis.ScoreFromPattern
			}
		}
	}
	return 0, analysis.ScoreNone
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}
