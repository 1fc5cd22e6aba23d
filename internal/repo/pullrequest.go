package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/pr-notify/internal/models"
)

// PullRequestRepo persists the cached pull request snapshot per schedule.
type PullRequestRepo struct {
	DB *sql.DB
}

// NewPullRequestRepo returns a new PullRequestRepo.
func NewPullRequestRepo(db *sql.DB) *PullRequestRepo {
	return &PullRequestRepo{DB: db}
}

// ReplaceForSchedule replaces the cached snapshot for a schedule in one
// transaction: delete everything, insert the new set. Concurrent readers see
// either the old snapshot or the new one, never a mix.
func (r *PullRequestRepo) ReplaceForSchedule(ctx context.Context, scheduleID string, prs []models.PullRequest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM cached_pull_requests WHERE schedule_id = $1`, scheduleID,
	); err != nil {
		return err
	}

	const insert = `
		INSERT INTO cached_pull_requests
			(schedule_id, organization, repository, pr_number, title, author, author_avatar_url, labels, checks_status, html_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, pr := range prs {
		if _, err := tx.ExecContext(ctx, insert,
			scheduleID, pr.Organization, pr.Repository, pr.Number,
			pr.Title, pr.Author, pr.AuthorAvatarURL, pr.Labels,
			string(pr.ChecksStatus), pr.HTMLURL, pr.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListForSchedule returns the cached snapshot for a schedule, grouped by
// repository and ordered by PR number.
func (r *PullRequestRepo) ListForSchedule(ctx context.Context, scheduleID string) ([]models.PullRequest, error) {
	query := `
		SELECT organization, repository, pr_number, title, author,
		       COALESCE(author_avatar_url, ''), COALESCE(labels, '[]'),
		       COALESCE(checks_status, 'pending'), html_url, created_at, cached_at
		FROM cached_pull_requests
		WHERE schedule_id = $1
		ORDER BY organization, repository, pr_number
	`
	rows, err := r.DB.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		if err := rows.Scan(&pr.Organization, &pr.Repository, &pr.Number, &pr.Title, &pr.Author,
			&pr.AuthorAvatarURL, &pr.Labels, &pr.ChecksStatus, &pr.HTMLURL, &pr.CreatedAt, &pr.CachedAt); err != nil {
			return nil, err
		}
		list = append(list, pr)
	}
	return list, rows.Err()
}
