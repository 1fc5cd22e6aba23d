package github

import "time"

// Wire types for the REST v3 endpoints this client reads. Only the fields we
// consume are declared.

type prResponse struct {
	Number int     `json:"number"`
	Title  string  `json:"title"`
	User   prUser  `json:"user"`
	Labels []label `json:"labels"`
	Head   prHead  `json:"head"`
	// Draft PRs are still open PRs and are included.
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

type prUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type label struct {
	Name string `json:"name"`
}

type prHead struct {
	SHA string `json:"sha"`
}

type checkRunsResponse struct {
	TotalCount int        `json:"total_count"`
	CheckRuns  []CheckRun `json:"check_runs"`
}
