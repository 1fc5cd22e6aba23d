// Package email formats and sends the open-PR summary emails.
package email

import (
	"fmt"
	"sort"
	"strings"
)

// Subject is the fixed subject line for every summary email.
const Subject = "[PR-Notify] Open Pull Requests Summary"

// FormatSummary renders the email body from per-repository open PR counts.
// counts is keyed by "org/repo"; only repositories with at least one open PR
// appear. Lines are sorted by repository name so the body is deterministic.
func FormatSummary(counts map[string]int, appURL string) string {
	repos := make([]string, 0, len(counts))
	for repo := range counts {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	var b strings.Builder
	b.WriteString("You have open pull requests waiting for review:\n\n")
	for _, repo := range repos {
		n := counts[repo]
		word := "open PRs"
		if n == 1 {
			word = "open PR"
		}
		fmt.Fprintf(&b, "- %s: %d %s\n", repo, n, word)
	}
	fmt.Fprintf(&b, "\nView details: %s/\n", strings.TrimRight(appURL, "/"))
	fmt.Fprintf(&b, "Manage your notification schedules: %s/settings\n", strings.TrimRight(appURL, "/"))
	return b.String()
}
