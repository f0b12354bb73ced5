package blog

import "strings"

const (
	SummaryWordBudget = 15
	truncationSuffix  = "..."
)

// TruncateSummary keeps the first SummaryWordBudget words and appends "...".
//
// Words are whatever a split on a single space yields: runs of spaces are not
// collapsed, so empty words count toward the budget.
func TruncateSummary(summary string) string {
	words := strings.Split(summary, " ")
	if len(words) <= SummaryWordBudget {
		return summary
	}
	return strings.Join(words[:SummaryWordBudget], " ") + truncationSuffix
}
