// Package store provides storage backends for zamowbot.
//
// This file implements the PostgreSQL-backed menu repository.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/textnorm"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresMenuRepository serves menu lookups from PostgreSQL.
type PostgresMenuRepository struct {
	db *sql.DB
}

// NewPostgresMenuRepository opens the Postgres database and applies migrations.
func NewPostgresMenuRepository(opts ...Option) (*PostgresMenuRepository, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresMenuRepository invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresMenuRepository DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres menu repository ready")
	return &PostgresMenuRepository{db: db}, nil
}

// Close releases the database handle.
func (r *PostgresMenuRepository) Close() error {
	return r.db.Close()
}

// UpsertRestaurant inserts or replaces a restaurant row.
func (r *PostgresMenuRepository) UpsertRestaurant(ctx context.Context, rest models.Restaurant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurants (id, name, name_norm, location, location_norm, cuisine, cuisine_norm) VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, name_norm=EXCLUDED.name_norm, location=EXCLUDED.location, location_norm=EXCLUDED.location_norm, cuisine=EXCLUDED.cuisine, cuisine_norm=EXCLUDED.cuisine_norm`,
		rest.ID, rest.Name, textnorm.Normalize(rest.Name),
		nilIfEmpty(rest.Location), nilIfEmpty(textnorm.Normalize(rest.Location)),
		nilIfEmpty(rest.Cuisine), nilIfEmpty(textnorm.Normalize(rest.Cuisine)))
	if err != nil {
		return fmt.Errorf("upsert restaurant failed: %w", err)
	}
	return nil
}

// UpsertMenuItem inserts or replaces a menu item row.
func (r *PostgresMenuRepository) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (id, restaurant_id, name, name_norm, price_grosze, available) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET restaurant_id=EXCLUDED.restaurant_id, name=EXCLUDED.name, name_norm=EXCLUDED.name_norm, price_grosze=EXCLUDED.price_grosze, available=EXCLUDED.available`,
		item.ID, item.RestaurantID, item.Name, textnorm.Normalize(item.Name), item.PriceGrosze, item.Available)
	if err != nil {
		return fmt.Errorf("upsert menu item failed: %w", err)
	}
	return nil
}

// GetRestaurant returns a restaurant by ID or nil.
func (r *PostgresMenuRepository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(cuisine, '') FROM restaurants WHERE id = $1`, id)
	return scanRestaurantRow(row)
}

// FindRestaurantByName resolves a free-text restaurant name.
func (r *PostgresMenuRepository) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	query := textnorm.Normalize(name)
	if query == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(cuisine, '') FROM restaurants
		 WHERE name_norm = $1 OR name_norm LIKE $2 ORDER BY LENGTH(name_norm) LIMIT 1`,
		query, "%"+query+"%")
	return scanRestaurantRow(row)
}

// CatalogNames returns all restaurant display names.
func (r *PostgresMenuRepository) CatalogNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog names query failed: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SearchRestaurants filters restaurants by location and cuisine.
func (r *PostgresMenuRepository) SearchRestaurants(ctx context.Context, location, cuisine string) ([]models.Restaurant, error) {
	loc := textnorm.Normalize(location)
	cui := textnorm.Normalize(cuisine)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(cuisine, '') FROM restaurants
		 WHERE ($1 = '' OR COALESCE(location_norm, '') LIKE $2 OR (COALESCE(location_norm, '') <> '' AND position(location_norm in $1) > 0))
		   AND ($3 = '' OR COALESCE(cuisine_norm, '') LIKE $4 OR (COALESCE(cuisine_norm, '') <> '' AND position(cuisine_norm in $3) > 0))
		 ORDER BY name`,
		loc, "%"+loc+"%", cui, "%"+cui+"%")
	if err != nil {
		return nil, fmt.Errorf("restaurant search failed: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

// SearchMenuItems returns all items whose normalized name contains the query.
func (r *PostgresMenuRepository) SearchMenuItems(ctx context.Context, query string) ([]models.MenuItem, error) {
	q := textnorm.Normalize(query)
	if q == "" {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, price_grosze, available FROM menu_items WHERE name_norm LIKE $1`,
		"%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("menu search failed: %w", err)
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

// MenuFor returns the menu items of one restaurant.
func (r *PostgresMenuRepository) MenuFor(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, price_grosze, available FROM menu_items WHERE restaurant_id = $1 ORDER BY name`,
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("menu query failed: %w", err)
	}
	defer rows.Close()
	return scanMenuItems(rows)
}
