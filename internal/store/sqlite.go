// Package store provides storage backends for zamowbot.
//
// This file implements the SQLite-backed menu repository.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/textnorm"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteMenuRepository serves menu lookups from an SQLite database.
type SQLiteMenuRepository struct {
	db *sql.DB
}

// NewSQLiteMenuRepository opens (creating if needed) the SQLite database at
// the DSN path and applies migrations.
func NewSQLiteMenuRepository(opts ...Option) (*SQLiteMenuRepository, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteMenuRepository invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteMenuRepository DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite menu repository ready")
	return &SQLiteMenuRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteMenuRepository) Close() error {
	return r.db.Close()
}

// UpsertRestaurant inserts or replaces a restaurant row.
func (r *SQLiteMenuRepository) UpsertRestaurant(ctx context.Context, rest models.Restaurant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurants (id, name, name_norm, location, location_norm, cuisine, cuisine_norm) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, name_norm=excluded.name_norm, location=excluded.location, location_norm=excluded.location_norm, cuisine=excluded.cuisine, cuisine_norm=excluded.cuisine_norm`,
		rest.ID, rest.Name, textnorm.Normalize(rest.Name),
		nilIfEmpty(rest.Location), nilIfEmpty(textnorm.Normalize(rest.Location)),
		nilIfEmpty(rest.Cuisine), nilIfEmpty(textnorm.Normalize(rest.Cuisine)))
	if err != nil {
		return fmt.Errorf("upsert restaurant failed: %w", err)
	}
	return nil
}

// UpsertMenuItem inserts or replaces a menu item row.
func (r *SQLiteMenuRepository) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (id, restaurant_id, name, name_norm, price_grosze, available) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET restaurant_id=excluded.restaurant_id, name=excluded.name, name_norm=excluded.name_norm, price_grosze=excluded.price_grosze, available=excluded.available`,
		item.ID, item.RestaurantID, item.Name, textnorm.Normalize(item.Name), item.PriceGrosze, item.Available)
	if err != nil {
		return fmt.Errorf("upsert menu item failed: %w", err)
	}
	return nil
}

// GetRestaurant returns a restaurant by ID or nil.
func (r *SQLiteMenuRepository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(cuisine, '') FROM restaurants WHERE id = ?`, id)
	return scanRestaurantRow(row)
}

// FindRestaurantByName resolves a free-text restaurant name.
func (r *SQLiteMenuRepository) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	query := textnorm.Normalize(name)
	if query == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(cuisine, '') FROM restaurants
		 WHERE name_norm = ? OR name_norm LIKE ? ORDER BY LENGTH(name_norm) LIMIT 1`,
		query, "%"+query+"%")
	return scanRestaurantRow(row)
}

// CatalogNames returns all restaurant display names.
func (r *SQLiteMenuRepository) CatalogNames(ctx context.Context) ([]string, error) {
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
func (r *SQLiteMenuRepository) SearchRestaurants(ctx context.Context, location, cuisine string) ([]models.Restaurant, error) {
	loc := textnorm.Normalize(location)
	cui := textnorm.Normalize(cuisine)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(cuisine, '') FROM restaurants
		 WHERE (? = '' OR COALESCE(location_norm, '') LIKE ? OR (COALESCE(location_norm, '') <> '' AND instr(?, location_norm) > 0))
		   AND (? = '' OR COALESCE(cuisine_norm, '') LIKE ? OR (COALESCE(cuisine_norm, '') <> '' AND instr(?, cuisine_norm) > 0))
		 ORDER BY name`,
		loc, "%"+loc+"%", loc, cui, "%"+cui+"%", cui)
	if err != nil {
		return nil, fmt.Errorf("restaurant search failed: %w", err)
	}
	defer rows.Close()
	return scanRestaurants(rows)
}

// SearchMenuItems returns all items whose normalized name contains the query.
func (r *SQLiteMenuRepository) SearchMenuItems(ctx context.Context, query string) ([]models.MenuItem, error) {
	q := textnorm.Normalize(query)
	if q == "" {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, price_grosze, available FROM menu_items WHERE name_norm LIKE ?`,
		"%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("menu search failed: %w", err)
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

// MenuFor returns the menu items of one restaurant.
func (r *SQLiteMenuRepository) MenuFor(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, price_grosze, available FROM menu_items WHERE restaurant_id = ? ORDER BY name`,
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("menu query failed: %w", err)
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

func scanRestaurantRow(row *sql.Row) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := row.Scan(&rest.ID, &rest.Name, &rest.Location, &rest.Cuisine)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan restaurant failed: %w", err)
	}
	return &rest, nil
}

func scanRestaurants(rows *sql.Rows) ([]models.Restaurant, error) {
	var out []models.Restaurant
	for rows.Next() {
		var rest models.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Location, &rest.Cuisine); err != nil {
			return nil, fmt.Errorf("scan restaurant failed: %w", err)
		}
		out = append(out, rest)
	}
	return out, rows.Err()
}

func scanMenuItems(rows *sql.Rows) ([]models.MenuItem, error) {
	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.PriceGrosze, &item.Available); err != nil {
			return nil, fmt.Errorf("scan menu item failed: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
