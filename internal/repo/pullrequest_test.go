package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/crucial707/pr-notify/internal/models"
)

func TestPullRequestRepo_ReplaceForSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	prs := []models.PullRequest{
		{Number: 42, Title: "Fix login", Author: "alice", Labels: `["bug"]`, ChecksStatus: models.ChecksPass,
			HTMLURL: "https://github.com/acme/backend/pull/42", CreatedAt: now, Organization: "acme", Repository: "backend"},
		{Number: 7, Title: "Add dark mode", Author: "bob", Labels: `[]`, ChecksStatus: models.ChecksPending,
			HTMLURL: "https://github.com/acme/frontend/pull/7", CreatedAt: now, Organization: "acme", Repository: "frontend"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cached_pull_requests`).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO cached_pull_requests`).
		WithArgs("sched-1", "acme", "backend", 42, "Fix login", "alice", "", `["bug"]`, "pass",
			"https://github.com/acme/backend/pull/42", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO cached_pull_requests`).
		WithArgs("sched-1", "acme", "frontend", 7, "Add dark mode", "bob", "", `[]`, "pending",
			"https://github.com/acme/frontend/pull/7", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := NewPullRequestRepo(db)
	if err := r.ReplaceForSchedule(context.Background(), "sched-1", prs); err != nil {
		t.Fatalf("ReplaceForSchedule: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPullRequestRepo_ReplaceForSchedule_InsertFailsRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cached_pull_requests`).
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO cached_pull_requests`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	r := NewPullRequestRepo(db)
	err = r.ReplaceForSchedule(context.Background(), "sched-1", []models.PullRequest{
		{Number: 1, Title: "x", Author: "a", Organization: "acme", Repository: "backend", CreatedAt: time.Now()},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPullRequestRepo_ListForSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cols := []string{"organization", "repository", "pr_number", "title", "author", "author_avatar_url", "labels", "checks_status", "html_url", "created_at", "cached_at"}
	mock.ExpectQuery(`SELECT organization, repository, pr_number`).
		WithArgs("sched-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("acme", "backend", 42, "Fix login", "alice", "", `["bug"]`, "fail",
				"https://github.com/acme/backend/pull/42", now, now))

	r := NewPullRequestRepo(db)
	list, err := r.ListForSchedule(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("ListForSchedule: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list))
	}
	if list[0].Number != 42 || list[0].ChecksStatus != models.ChecksFail || list[0].Repository != "backend" {
		t.Errorf("unexpected item: %+v", list[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
