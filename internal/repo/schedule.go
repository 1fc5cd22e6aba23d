package repo

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crucial707/pr-notify/internal/models"
	"github.com/crucial707/pr-notify/internal/secrets"
	"github.com/lib/pq"
)

// ScheduleRepo reads notification schedules. PATs come out of the database as
// Fernet ciphertext and are decrypted on the way out; a schedule whose token
// cannot be decrypted is logged and excluded rather than failing the query.
type ScheduleRepo struct {
	DB     *sql.DB
	Tokens *secrets.TokenCipher
	Logger *slog.Logger
}

// NewScheduleRepo returns a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB, tokens *secrets.TokenCipher, logger *slog.Logger) *ScheduleRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleRepo{DB: db, Tokens: tokens, Logger: logger}
}

const scheduleColumns = `s.id, s.user_id, s.name, s.cron_expression, s.github_pat, s.is_active, s.created_at, s.updated_at, COALESCE(u.email, '')`

// List returns schedules for display, most recent first, without PATs.
func (r *ScheduleRepo) List(ctx context.Context, limit, offset int) ([]models.Schedule, error) {
	query := `
		SELECT s.id, s.user_id, s.name, s.cron_expression, s.is_active, s.created_at, s.updated_at, COALESCE(u.email, '')
		FROM notification_schedules s
		JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CronExpr, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.Email); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListActive returns all active schedules with decrypted PATs and their
// repository lists, for the reconciler. Schedules whose PAT fails to decrypt
// are skipped.
func (r *ScheduleRepo) ListActive(ctx context.Context) ([]models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM notification_schedules s
		JOIN users u ON u.id = s.user_id
		WHERE s.is_active = true
		ORDER BY s.id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := r.scanSchedules(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadRepositories(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListAllIDs returns every schedule id, active or not. The reconciler uses it
// to tell deleted schedules apart from deactivated ones in its logs.
func (r *ScheduleRepo) ListAllIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM notification_schedules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByID returns one schedule with decrypted PAT and repositories, or nil if
// it does not exist. A schedule can be deleted between scheduling and firing,
// so absence is an expected outcome, not an error.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM notification_schedules s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1
	`
	var (
		s         models.Schedule
		encrypted string
	)
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.UserID, &s.Name, &s.CronExpr, &encrypted, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pat, err := r.Tokens.Decrypt(encrypted)
	if err != nil {
		return nil, err
	}
	s.PAT = pat

	list := []models.Schedule{s}
	if err := r.loadRepositories(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// scanSchedules reads schedule rows and decrypts PATs, dropping rows whose
// token cannot be decrypted.
func (r *ScheduleRepo) scanSchedules(rows *sql.Rows) ([]models.Schedule, error) {
	var list []models.Schedule
	for rows.Next() {
		var (
			s         models.Schedule
			encrypted string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CronExpr, &encrypted, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.Email); err != nil {
			return nil, err
		}

		pat, err := r.Tokens.Decrypt(encrypted)
		if err != nil {
			r.Logger.Error("failed to decrypt PAT, excluding schedule",
				"schedule_id", s.ID, "error", err)
			continue
		}
		s.PAT = pat
		list = append(list, s)
	}
	return list, rows.Err()
}

// loadRepositories fills in the repository lists for the given schedules with
// a single query.
func (r *ScheduleRepo) loadRepositories(ctx context.Context, schedules []models.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}

	ids := make([]string, len(schedules))
	byID := make(map[string]*models.Schedule, len(schedules))
	for i := range schedules {
		ids[i] = schedules[i].ID
		byID[schedules[i].ID] = &schedules[i]
	}

	query := `
		SELECT schedule_id, organization, repository
		FROM schedule_repositories
		WHERE schedule_id = ANY($1)
		ORDER BY schedule_id, organization, repository
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			scheduleID string
			ref        models.RepositoryRef
		)
		if err := rows.Scan(&scheduleID, &ref.Organization, &ref.Repository); err != nil {
			return err
		}
		if s, ok := byID[scheduleID]; ok {
			s.Repositories = append(s.Repositories, ref)
		}
	}
	return rows.Err()
}
