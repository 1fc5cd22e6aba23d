package models

import "time"

// Schedule is a user-defined notification schedule. Created and edited by the
// web API; the scheduler only reads it. PAT holds the decrypted GitHub token,
// populated only for the duration of one job run and never written back to
// the database.
type Schedule struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CronExpr  string    `json:"cron_expression"`
	Email     string    `json:"-"` // empty = notifications suppressed
	PAT       string    `json:"-"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Repositories []RepositoryRef `json:"repositories"`
}

// RepositoryRef identifies one GitHub repository watched by a schedule.
// (schedule, organization, repository) is unique in the store.
type RepositoryRef struct {
	Organization string `json:"organization"`
	Repository   string `json:"repository"`
}

// FullName returns the "org/repo" form used in email summaries and logs.
func (r RepositoryRef) FullName() string {
	return r.Organization + "/" + r.Repository
}
