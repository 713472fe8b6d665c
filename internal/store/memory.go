// Package store provides storage backends for zamowbot.
//
// This file implements the in-memory backends used in tests and small
// deployments.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// InMemorySessionStore keeps sessions in a mutex-guarded map. The map guard
// protects concurrent turns across different sessions; turns on the same
// session are expected to be serialized by the caller.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewInMemorySessionStore creates an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]models.Session)}
}

// GetSession returns a copy of the stored session or nil when absent.
func (s *InMemorySessionStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := sess
	return &copied, nil
}

// SaveSession upserts the session, stamping UpdatedAt.
func (s *InMemorySessionStore) SaveSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.ID == "" {
		return models.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}
	s.sessions[session.ID] = *session
	return nil
}

// DeleteSession removes a session if present.
func (s *InMemorySessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ListSessionIDs returns all stored session IDs.
func (s *InMemorySessionStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// InMemoryMenuRepository serves menu lookups from preloaded slices.
type InMemoryMenuRepository struct {
	mu          sync.RWMutex
	restaurants map[string]models.Restaurant
	items       map[string]models.MenuItem
}

// NewInMemoryMenuRepository creates an empty in-memory menu repository.
func NewInMemoryMenuRepository() *InMemoryMenuRepository {
	return &InMemoryMenuRepository{
		restaurants: make(map[string]models.Restaurant),
		items:       make(map[string]models.MenuItem),
	}
}

// UpsertRestaurant adds or replaces a restaurant.
func (r *InMemoryMenuRepository) UpsertRestaurant(ctx context.Context, rest models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restaurants[rest.ID] = rest
	return nil
}

// UpsertMenuItem adds or replaces a menu item.
func (r *InMemoryMenuRepository) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

// GetRestaurant returns a restaurant by ID or nil.
func (r *InMemoryMenuRepository) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rest, ok := r.restaurants[id]
	if !ok {
		return nil, nil
	}
	copied := rest
	return &copied, nil
}

// FindRestaurantByName resolves a free-text restaurant name.
func (r *InMemoryMenuRepository) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	query := textnorm.Normalize(name)
	if query == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rest := range r.restaurants {
		norm := textnorm.Normalize(rest.Name)
		if norm == query || strings.Contains(norm, query) || strings.Contains(query, norm) {
			copied := rest
			return &copied, nil
		}
	}
	return nil, nil
}

// CatalogNames returns all restaurant display names.
func (r *InMemoryMenuRepository) CatalogNames(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.restaurants))
	for _, rest := range r.restaurants {
		names = append(names, rest.Name)
	}
	return names, nil
}

// SearchRestaurants filters restaurants by location and cuisine. Results are
// name-sorted for deterministic presentation.
func (r *InMemoryMenuRepository) SearchRestaurants(ctx context.Context, location, cuisine string) ([]models.Restaurant, error) {
	loc := textnorm.Normalize(location)
	cui := textnorm.Normalize(cuisine)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Restaurant
	for _, rest := range r.restaurants {
		if loc != "" && !looseMatch(textnorm.Normalize(rest.Location), loc) {
			continue
		}
		if cui != "" && !looseMatch(textnorm.Normalize(rest.Cuisine), cui) {
			continue
		}
		out = append(out, rest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// looseMatch accepts a substring hit in either direction, so an inflected
// query ("krakowie") still matches the stored form ("krakow").
func looseMatch(stored, query string) bool {
	if stored == "" {
		return false
	}
	return strings.Contains(stored, query) || strings.Contains(query, stored)
}

// SearchMenuItems returns all items whose normalized name contains the query.
func (r *InMemoryMenuRepository) SearchMenuItems(ctx context.Context, query string) ([]models.MenuItem, error) {
	q := textnorm.Normalize(query)
	if q == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.MenuItem
	for _, item := range r.items {
		if strings.Contains(textnorm.Normalize(item.Name), q) {
			out = append(out, item)
		}
	}
	return out, nil
}

// MenuFor returns the menu of one restaurant.
func (r *InMemoryMenuRepository) MenuFor(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.MenuItem
	for _, item := range r.items {
		if item.RestaurantID == restaurantID {
			out = append(out, item)
		}
	}
	return out, nil
}
