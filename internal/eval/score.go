// Package eval scores actual labels against expected labels.
package eval

import "fmt"

// ScoredResult is the per-case outcome exposed to exports and the HTTP API.
type ScoredResult struct {
	Message string `json:"message"`
	Target  string `json:"target"`
	Output  string `json:"output"`
	Correct bool   `json:"correct"`
}

// Summary aggregates scored results.
type Summary struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Score reports whether actual matches expected exactly. Comparison is case-sensitive.
func Score(actual, expected string) bool {
	return actual == expected
}

// Accuracy returns correct/total, or 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(correct) / float64(total)
}

// NewScoredResult scores one case.
func NewScoredResult(message, expected, actual string) ScoredResult {
	return ScoredResult{
		Message: message,
		Target:  expected,
		Output:  actual,
		Correct: Score(actual, expected),
	}
}

// Summarize counts correct results.
func Summarize(results []ScoredResult) Summary {
	summary := Summary{Total: len(results)}
	for _, result := range results {
		if result.Correct {
			summary.Correct++
		}
	}
	summary.Accuracy = Accuracy(summary.Correct, summary.Total)
	return summary
}

// String renders the summary as "c/t = p%".
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d = %.2f%%", s.Correct, s.Total, s.Accuracy*100)
}

// CaseResult is the full per-case record kept for analytics and live views.
type CaseResult struct {
	CaseID         string   `json:"case_id"`
	Prompt         string   `json:"prompt"`
	Expected       string   `json:"expected"`
	Actual         string   `json:"actual"`
	AllTools       []string `json:"all_tools_called,omitempty"`
	ConversationID string   `json:"conversation_id"`
	FinalOutput    string   `json:"final_output"`
	ReloadedItems  int      `json:"reloaded_items"`
	Correct        bool     `json:"correct"`
	Error          string   `json:"error,omitempty"`
}
