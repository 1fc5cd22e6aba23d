package github

import "github.com/crucial707/pr-notify/internal/models"

// CheckRun is the subset of a check run the aggregator cares about.
type CheckRun struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// failingConclusions are the check run conclusions that mark a commit red.
// Everything else (success, neutral, skipped, stale) does not fail the PR.
var failingConclusions = map[string]bool{
	"failure":         true,
	"cancelled":       true,
	"timed_out":       true,
	"action_required": true,
}

// AggregateChecks folds a commit's check runs into a single status with
// priority fail > pending > pass. A run is pending while its status is not
// "completed" or while it has no conclusion yet. A commit with no check runs
// at all counts as pass: repositories without CI should not look blocked.
func AggregateChecks(runs []CheckRun) models.CheckStatus {
	pending := false
	for _, run := range runs {
		if failingConclusions[run.Conclusion] {
			return models.ChecksFail
		}
		if run.Status != "completed" || run.Conclusion == "" {
			pending = true
		}
	}
	if pending {
		return models.ChecksPending
	}
	return models.ChecksPass
}
