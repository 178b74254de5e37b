package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/CharfiNour/enstarobots-server/models"
)

// ScoreRepository is the persisted-store boundary for score submissions.
// It owns no business logic: callers decide what to list, upsert or delete.
type ScoreRepository interface {
	List(ctx context.Context, category *models.CategoryID) ([]models.ScoreSubmission, error)
	Upsert(ctx context.Context, sub *models.ScoreSubmission) error
	// DeleteMatching removes submissions for a category, optionally narrowed
	// to one phase and one status, and returns the number of rows removed.
	DeleteMatching(ctx context.Context, category models.CategoryID, phase *string, status *models.ScoreStatus) (int64, error)
}

type postgresScoreRepository struct {
	db SQLExecutor
}

func NewPostgresScoreRepository(db SQLExecutor) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

const scoreColumns = `id, match_id, team_id, category, phase, total_points, status, ts, detailed_scores, visible_to_team`

func (r *postgresScoreRepository) List(ctx context.Context, category *models.CategoryID) ([]models.ScoreSubmission, error) {
	query := `SELECT ` + scoreColumns + ` FROM scores`
	args := []interface{}{}
	if category != nil {
		query += ` WHERE category = $1`
		args = append(args, string(*category))
	}
	query += ` ORDER BY ts ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var subs []models.ScoreSubmission
	for rows.Next() {
		sub, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return subs, nil
}

func (r *postgresScoreRepository) Upsert(ctx context.Context, sub *models.ScoreSubmission) error {
	detailed, err := json.Marshal(sub.DetailedScores)
	if err != nil {
		return fmt.Errorf("marshal detailed scores for %s: %w", sub.ID, err)
	}

	query := `
		INSERT INTO scores (` + scoreColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			match_id = EXCLUDED.match_id,
			team_id = EXCLUDED.team_id,
			category = EXCLUDED.category,
			phase = EXCLUDED.phase,
			total_points = EXCLUDED.total_points,
			status = EXCLUDED.status,
			ts = EXCLUDED.ts,
			detailed_scores = EXCLUDED.detailed_scores,
			visible_to_team = EXCLUDED.visible_to_team`

	_, err = r.db.ExecContext(ctx, query,
		sub.ID,
		sub.MatchID,
		sub.TeamID,
		sub.CompetitionCategory,
		sub.Phase,
		sub.TotalPoints,
		string(sub.Status),
		sub.Timestamp,
		detailed,
		sub.IsVisibleToTeam,
	)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return fmt.Errorf("upsert score %s: %w", sub.ID, ErrTeamNotFound)
		}
		return fmt.Errorf("upsert score %s: %w", sub.ID, err)
	}
	return nil
}

func (r *postgresScoreRepository) DeleteMatching(ctx context.Context, category models.CategoryID, phase *string, status *models.ScoreStatus) (int64, error) {
	query := `DELETE FROM scores WHERE category = $1`
	args := []interface{}{string(category)}
	if phase != nil {
		args = append(args, *phase)
		query += fmt.Sprintf(` AND phase = $%d`, len(args))
	}
	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete scores for %s: %w", category, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete scores for %s: %w", category, err)
	}
	return n, nil
}

type scoreScanner interface {
	Scan(dest ...interface{}) error
}

func scanScore(row scoreScanner) (models.ScoreSubmission, error) {
	var (
		sub      models.ScoreSubmission
		matchID  sql.NullString
		status   string
		detailed []byte
	)
	err := row.Scan(
		&sub.ID,
		&matchID,
		&sub.TeamID,
		&sub.CompetitionCategory,
		&sub.Phase,
		&sub.TotalPoints,
		&status,
		&sub.Timestamp,
		&detailed,
		&sub.IsVisibleToTeam,
	)
	if err != nil {
		return models.ScoreSubmission{}, fmt.Errorf("scan score row: %w", err)
	}
	if matchID.Valid {
		sub.MatchID = &matchID.String
	}
	sub.Status = models.ScoreStatus(status)
	if len(detailed) > 0 {
		if err := json.Unmarshal(detailed, &sub.DetailedScores); err != nil {
			return models.ScoreSubmission{}, fmt.Errorf("unmarshal detailed scores for %s: %w", sub.ID, err)
		}
	}
	return sub, nil
}
