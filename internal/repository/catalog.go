package repository

import (
	"context"
	"database/sql"

	"eventease/internal/database"
	"eventease/internal/models"
)

type CatalogRepository struct {
	db *database.DB
}

func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	query := `
		SELECT id, name, description, color, created_at, updated_at
		FROM categories
		ORDER BY name ASC`

	rows, err := r.db.QueryWithRetry(ctx, query)
	if err != nil {
		return nil, database.AsStoreError(err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.Color,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// EventStats returns nil, nil for an unknown event
func (r *CatalogRepository) EventStats(ctx context.Context, eventID string) (*models.EventStats, error) {
	stats := &models.EventStats{}
	query := `
		SELECT event_id, capacity, registrations_count, seats_remaining, last_registration_at
		FROM event_stats
		WHERE event_id = $1`

	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&stats.EventID,
		&stats.Capacity,
		&stats.RegistrationsCount,
		&stats.SeatsRemaining,
		&stats.LastRegistrationAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, database.AsStoreError(err)
	}

	return stats, nil
}
