package repository

import (
	"context"
	"fmt"

	"affiliate-locator/internal/dataset"
	"affiliate-locator/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the affiliates table. Row order follows the id column,
// which preserves the order rows were imported in.
const Schema = `
	CREATE TABLE IF NOT EXISTS affiliates (
		id BIGSERIAL PRIMARY KEY,
		affiliate_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	);
`

// PostgresLoader loads the affiliates dataset from PostgreSQL
type PostgresLoader struct {
	db *pgxpool.Pool
}

var _ dataset.Loader = (*PostgresLoader)(nil)

// NewPostgresLoader creates a new PostgreSQL loader
func NewPostgresLoader(db *pgxpool.Pool) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// Load returns every affiliate in import order
func (r *PostgresLoader) Load(ctx context.Context) ([]models.Affiliate, error) {
	sql := `
		SELECT
			affiliate_id,
			name,
			latitude,
			longitude
		FROM affiliates
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query affiliates: %w: %w", dataset.ErrSourceUnavailable, err)
	}

	affiliates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Affiliate, error) {
		var a models.Affiliate
		err := row.Scan(&a.ID, &a.Name, &a.Latitude, &a.Longitude)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("repository: failed to scan affiliates: %w: %w", dataset.ErrSourceUnavailable, err)
	}

	return affiliates, nil
}

// Copier is satisfied by *pgx.Conn and *pgxpool.Pool.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Import appends affiliates to the table in a single COPY.
func Import(ctx context.Context, db Copier, affiliates []models.Affiliate) (int64, error) {
	n, err := db.CopyFrom(
		ctx,
		pgx.Identifier{"affiliates"},
		[]string{"affiliate_id", "name", "latitude", "longitude"},
		pgx.CopyFromSlice(len(affiliates), func(i int) ([]any, error) {
			a := affiliates[i]
			return []any{a.ID, a.Name, a.Latitude, a.Longitude}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy affiliates: %w", err)
	}
	return n, nil
}
