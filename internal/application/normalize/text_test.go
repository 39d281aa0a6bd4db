package normalize

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		text   string
		want   int
		source analysis.ScoreSource
	}{
		{"out of ten", ``, "Overall creative score: 7/10 — good contrast", 7, analysis.ScoreFromPattern},
		{"labeled", ``, "Score: 6 overall", 6, analysis.ScoreFromPattern},
		{"out of ten tried before labeled", ``, "Score: 6 overall, contrast 9/10", 9, analysis.ScoreFromPattern},
		{"decimal out of ten", ``, "rated 8.5 / 10", 8, analysis.ScoreFromPattern},
		{"field wins", `{"score":9}`, "3/10", 9, analysis.ScoreFromField},
		{"numeric string field", `{"score":"4"}`, "", 4, analysis.ScoreFromField},
		{"non numeric field falls back", `{"score":"n/a"}`, "puan: 5", 5, analysis.ScoreFromPattern},
		{"clamped", `{"score":14}`, "", 10, analysis.ScoreFromField},
		{"no match", ``, "looks fine", 0, analysis.ScoreNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := gjson.Get(tt.field, "score")
			got, src := ExtractScore(field, tt.text)
			if got != tt.want || src != tt.source {
				t.Fatalf("got %d (%s), want %d (%s)", got, src, tt.want, tt.source)
			}
		})
	}
}

func TestNormalizeCreativeFromNarrative(t *testing.T) {
	vm, err := Normalize(analysis.IDCreativeScore, []byte(`{"analysis":"**Overall creative score: 7/10** — good contrast"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.CreativeView)
	if v.Score != 7 {
		t.Fatalf("score = %d, want 7", v.Score)
	}
	if v.Narrative != "Overall creative score: 7/10 — good contrast" {
		t.Fatalf("narrative = %q", v.Narrative)
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize("# Title\r\n__bold__ and `code`\n  ### Sub")
	want := "Title\nbold and code\nSub"
	if got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}
