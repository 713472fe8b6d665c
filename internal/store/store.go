// Package store provides the storage contracts and backends for zamowbot.
//
// Sessions live in an injected SessionStore (in-memory or Redis); menus and
// restaurants live in a MenuRepository (in-memory, SQLite, or PostgreSQL).
// The decision core depends only on these interfaces and never assumes
// atomicity beyond last-write-wins per update.
package store

import (
	"context"

	"github.com/zamowbot/zamowbot/internal/models"
)

// SessionStore owns long-lived conversation sessions keyed by session ID.
type SessionStore interface {
	// GetSession returns the session or nil when none exists.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	// SaveSession upserts the full session state (last write wins).
	SaveSession(ctx context.Context, session *models.Session) error
	// DeleteSession removes a session; deleting a missing session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error
	// ListSessionIDs returns all known session IDs, for admin reporting.
	ListSessionIDs(ctx context.Context) ([]string, error)
}

// MenuRepository exposes restaurant and menu lookups.
type MenuRepository interface {
	// GetRestaurant returns a restaurant by ID, or nil when unknown.
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	// FindRestaurantByName resolves a free-text name (case and diacritic
	// insensitive substring match) to a restaurant, or nil.
	FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error)
	// CatalogNames returns the display names of all known restaurants.
	CatalogNames(ctx context.Context) ([]string, error)
	// SearchRestaurants returns restaurants matching a location and/or
	// cuisine filter (case and diacritic insensitive); empty filters match
	// everything.
	SearchRestaurants(ctx context.Context, location, cuisine string) ([]models.Restaurant, error)
	// SearchMenuItems returns all menu items across restaurants whose name
	// contains the query (case and diacritic insensitive).
	SearchMenuItems(ctx context.Context, query string) ([]models.MenuItem, error)
	// MenuFor returns the menu items of one restaurant.
	MenuFor(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
}

// MenuWriter is implemented by repositories that support seeding data.
type MenuWriter interface {
	UpsertRestaurant(ctx context.Context, r models.Restaurant) error
	UpsertMenuItem(ctx context.Context, item models.MenuItem) error
}
