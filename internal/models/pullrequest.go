package models

import "time"

// CheckStatus is the aggregated CI result for a pull request's head commit.
type CheckStatus string

const (
	ChecksPass    CheckStatus = "pass"
	ChecksFail    CheckStatus = "fail"
	ChecksPending CheckStatus = "pending"
)

// PullRequest is one open PR as cached by a notification run.
// (schedule, organization, repository, number) is unique in the store; the
// whole snapshot for a schedule is replaced atomically on every run that
// finds at least one open PR.
type PullRequest struct {
	Number          int         `json:"number"`
	Title           string      `json:"title"`
	Author          string      `json:"author"`
	AuthorAvatarURL string      `json:"author_avatar_url"`
	Labels          string      `json:"labels"` // JSON array of label names
	ChecksStatus    CheckStatus `json:"checks_status"`
	HTMLURL         string      `json:"html_url"`
	CreatedAt       time.Time   `json:"created_at"`
	Organization    string      `json:"organization"`
	Repository      string      `json:"repository"`
	CachedAt        time.Time   `json:"cached_at"`
}
