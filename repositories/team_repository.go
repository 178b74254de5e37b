package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/lib/pq"
)

type TeamRepository interface {
	List(ctx context.Context) ([]models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)
}

type postgresTeamRepository struct {
	db SQLExecutor
}

func NewPostgresTeamRepository(db SQLExecutor) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, club, email, created_at, categories, placeholder`

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

type teamScanner interface {
	Scan(dest ...interface{}) error
}

func scanTeam(row teamScanner) (models.Team, error) {
	var (
		team  models.Team
		club  sql.NullString
		email sql.NullString
	)
	err := row.Scan(
		&team.ID,
		&team.Name,
		&club,
		&email,
		&team.CreatedAt,
		pq.Array(&team.Categories),
		&team.Placeholder,
	)
	if err != nil {
		return models.Team{}, fmt.Errorf("scan team row: %w", err)
	}
	if club.Valid {
		team.Club = club.String
	}
	if email.Valid {
		team.Email = &email.String
	}
	return team, nil
}
