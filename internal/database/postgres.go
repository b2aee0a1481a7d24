package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"landlords/internal/loader"
	"landlords/internal/types"
)

// Postgres reads the property table through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a pool for databaseURL and checks it can connect.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// LoadProperties reads every row of table as a Property, in physical order.
func (p *Postgres) LoadProperties(ctx context.Context, table string, cols loader.Columns) ([]types.Property, error) {
	cols = cols.WithDefaults(loader.DefaultColumns)
	query, err := selectQuery(table, cols, "COALESCE(CAST(%s AS text), '')", "ctid")
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}

	properties, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Property, error) {
		var addr, owner, ownerAddr, lat, lon string
		if err := row.Scan(&addr, &owner, &ownerAddr, &lat, &lon); err != nil {
			return types.Property{}, err
		}
		return cols.Property(map[string]string{
			cols.Address:      addr,
			cols.Owner:        owner,
			cols.OwnerAddress: ownerAddr,
			cols.Latitude:     lat,
			cols.Longitude:    lon,
		}), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan properties: %w", err)
	}
	return properties, nil
}
