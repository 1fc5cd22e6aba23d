package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/crucial707/pr-notify/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 5*time.Second, 100, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestClient_FetchOpenPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/backend/pulls", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ghp_test" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != "2022-11-28" {
			t.Errorf("X-GitHub-Api-Version = %q", got)
		}
		writeJSON(t, w, []map[string]any{
			{
				"number": 42,
				"title":  "Fix login",
				"user":   map[string]any{"login": "alice", "avatar_url": "https://avatars.example/alice"},
				"labels": []map[string]any{{"name": "bug"}, {"name": "urgent"}},
				"head":   map[string]any{"sha": "abc123"},
				"html_url":   "https://github.com/acme/backend/pull/42",
				"created_at": "2026-08-01T10:00:00Z",
			},
		})
	})
	mux.HandleFunc("/repos/acme/backend/commits/abc123/check-runs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"total_count": 1,
			"check_runs":  []map[string]any{{"status": "completed", "conclusion": "success"}},
		})
	})

	c, _ := newTestClient(t, mux)
	prs, err := c.FetchOpenPullRequests(context.Background(), "ghp_test", "acme", "backend")
	if err != nil {
		t.Fatalf("FetchOpenPullRequests: %v", err)
	}
	if len(prs) != 1 {
		t.Fatalf("expected 1 PR, got %d", len(prs))
	}
	pr := prs[0]
	if pr.Number != 42 || pr.Author != "alice" || pr.Organization != "acme" || pr.Repository != "backend" {
		t.Errorf("unexpected PR: %+v", pr)
	}
	if pr.Labels != `["bug","urgent"]` {
		t.Errorf("Labels = %q", pr.Labels)
	}
	if pr.ChecksStatus != models.ChecksPass {
		t.Errorf("ChecksStatus = %q, want pass", pr.ChecksStatus)
	}
}

func TestClient_FetchOpenPullRequests_Pagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/big/pulls", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		var prs []map[string]any
		if page == 1 {
			for i := 0; i < perPage; i++ {
				prs = append(prs, map[string]any{
					"number": i + 1,
					"title":  fmt.Sprintf("PR %d", i+1),
					"user":   map[string]any{"login": "bot"},
					"head":   map[string]any{"sha": ""},
					"created_at": "2026-08-01T10:00:00Z",
				})
			}
		} else {
			prs = append(prs, map[string]any{
				"number": perPage + 1,
				"title":  "last one",
				"user":   map[string]any{"login": "bot"},
				"head":   map[string]any{"sha": ""},
				"created_at": "2026-08-01T10:00:00Z",
			})
		}
		writeJSON(t, w, prs)
	})

	c, _ := newTestClient(t, mux)
	c.pageSize = 5
	prs, err := c.FetchOpenPullRequests(context.Background(), "ghp_test", "acme", "big")
	if err != nil {
		t.Fatalf("FetchOpenPullRequests: %v", err)
	}
	if len(prs) != 6 {
		t.Fatalf("expected 6 PRs across two pages, got %d", len(prs))
	}
	if prs[5].Title != "last one" {
		t.Errorf("unexpected last PR: %+v", prs[5])
	}
}

func TestClient_FetchOpenPullRequests_ServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := c.FetchOpenPullRequests(context.Background(), "ghp_test", "acme", "backend"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestClient_CheckStatusErrorDegradesToPending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/backend/pulls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []map[string]any{
			{
				"number": 1,
				"title":  "x",
				"user":   map[string]any{"login": "alice"},
				"head":   map[string]any{"sha": "deadbeef"},
				"created_at": "2026-08-01T10:00:00Z",
			},
		})
	})
	mux.HandleFunc("/repos/acme/backend/commits/deadbeef/check-runs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	})

	c, _ := newTestClient(t, mux)
	prs, err := c.FetchOpenPullRequests(context.Background(), "ghp_test", "acme", "backend")
	if err != nil {
		t.Fatalf("FetchOpenPullRequests: %v", err)
	}
	if len(prs) != 1 {
		t.Fatalf("expected 1 PR, got %d", len(prs))
	}
	if prs[0].ChecksStatus != models.ChecksPending {
		t.Errorf("ChecksStatus = %q, want pending", prs[0].ChecksStatus)
	}
}
