package blog

import (
	"strings"
	"testing"
)

func words(n int, w string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = w
	}
	return strings.Join(parts, " ")
}

func TestTruncateSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{name: "empty", summary: "", want: ""},
		{name: "short", summary: "Heart health basics", want: "Heart health basics"},
		{name: "exactly_budget", summary: words(15, "w"), want: words(15, "w")},
		{name: "one_over_budget", summary: words(16, "a"), want: words(15, "a") + "..."},
		{name: "well_over_budget", summary: words(40, "long"), want: words(15, "long") + "..."},
		{
			// a double space yields an empty word that still counts
			name:    "double_space_counts_as_word",
			summary: "a  b c d e f g h i j k l m n o",
			want:    "a  b c d e f g h i j k l m n...",
		},
		{
			// tabs and newlines are not separators
			name:    "tabs_are_not_separators",
			summary: "a\tb\tc\td\te\tf\tg\th\ti\tj\tk\tl\tm\tn\to\tp",
			want:    "a\tb\tc\td\te\tf\tg\th\ti\tj\tk\tl\tm\tn\to\tp",
		},
		{
			name:    "trailing_space_counts",
			summary: words(15, "x") + " ",
			want:    words(15, "x") + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateSummary(tt.summary); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateSummary_Bound(t *testing.T) {
	for n := 0; n <= 40; n++ {
		in := words(n, "w")
		out := TruncateSummary(in)
		tokens := strings.Split(out, " ")

		if n <= SummaryWordBudget {
			if out != in {
				t.Fatalf("n=%d: expected unchanged, got %q", n, out)
			}
			continue
		}

		if len(tokens) != SummaryWordBudget {
			t.Fatalf("n=%d: got %d tokens", n, len(tokens))
		}
		if !strings.HasSuffix(out, "...") {
			t.Fatalf("n=%d: missing suffix in %q", n, out)
		}
	}
}
