package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CharfiNour/enstarobots-server/models"
	"github.com/lib/pq"
)

// CategoryRepository lists the remote category records that get merged over
// the static catalog.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.CompetitionCategory, error)
}

type postgresCategoryRepository struct {
	db SQLExecutor
}

func NewPostgresCategoryRepository(db SQLExecutor) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]models.CompetitionCategory, error) {
	query := `SELECT id, uuid, type, display_name, phases, is_match_based FROM categories ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.CompetitionCategory
	for rows.Next() {
		var (
			cat      models.CompetitionCategory
			id       string
			uuid     sql.NullString
			catType  sql.NullString
		)
		if err := rows.Scan(&id, &uuid, &catType, &cat.DisplayName, pq.Array(&cat.Phases), &cat.IsMatchBased); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		cat.ID = models.CategoryID(id)
		if uuid.Valid {
			cat.UUID = &uuid.String
		}
		if catType.Valid {
			cat.Type = catType.String
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
