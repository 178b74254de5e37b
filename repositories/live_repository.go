package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CharfiNour/enstarobots-server/models"
)

// LiveSessionRepository persists the one-per-category live session records.
type LiveSessionRepository interface {
	List(ctx context.Context) (map[models.CategoryID]models.LiveSession, error)
	Upsert(ctx context.Context, category models.CategoryID, session models.LiveSession) error
	Delete(ctx context.Context, category models.CategoryID) error
}

type postgresLiveSessionRepository struct {
	db SQLExecutor
}

func NewPostgresLiveSessionRepository(db SQLExecutor) LiveSessionRepository {
	return &postgresLiveSessionRepository{db: db}
}

func (r *postgresLiveSessionRepository) List(ctx context.Context) (map[models.CategoryID]models.LiveSession, error) {
	query := `SELECT category, team_id, phase, start_time, score_summary, last_update FROM live_sessions`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list live sessions: %w", err)
	}
	defer rows.Close()

	sessions := make(map[models.CategoryID]models.LiveSession)
	for rows.Next() {
		var (
			category   string
			session    models.LiveSession
			summary    sql.NullString
			lastUpdate sql.NullTime
		)
		if err := rows.Scan(&category, &session.TeamID, &session.Phase, &session.StartTime, &summary, &lastUpdate); err != nil {
			return nil, fmt.Errorf("scan live session row: %w", err)
		}
		if summary.Valid {
			session.ScoreSummary = &summary.String
		}
		if lastUpdate.Valid {
			session.LastUpdate = &lastUpdate.Time
		}
		sessions[models.CategoryID(category)] = session
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list live sessions: %w", err)
	}
	return sessions, nil
}

func (r *postgresLiveSessionRepository) Upsert(ctx context.Context, category models.CategoryID, session models.LiveSession) error {
	query := `
		INSERT INTO live_sessions (category, team_id, phase, start_time, score_summary, last_update)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			phase = EXCLUDED.phase,
			start_time = EXCLUDED.start_time,
			score_summary = EXCLUDED.score_summary,
			last_update = EXCLUDED.last_update`

	_, err := r.db.ExecContext(ctx, query,
		string(category),
		session.TeamID,
		session.Phase,
		session.StartTime,
		session.ScoreSummary,
		session.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("upsert live session for %s: %w", category, err)
	}
	return nil
}

func (r *postgresLiveSessionRepository) Delete(ctx context.Context, category models.CategoryID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM live_sessions WHERE category = $1`, string(category))
	if err != nil {
		return fmt.Errorf("delete live session for %s: %w", category, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete live session for %s: %w", category, ErrLiveSessionNotFound)
	}
	return nil
}

// IsNotFound reports whether err wraps one of the repository not-found
// sentinels; background deletes treat those as already settled.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScoreNotFound) ||
		errors.Is(err, ErrLiveSessionNotFound) ||
		errors.Is(err, ErrTeamNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrStateNotFound)
}
