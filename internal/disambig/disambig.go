// Package disambig resolves a free-text menu item name to a single
// restaurant's item, or reports that the user must choose a restaurant.
package disambig

import (
	"context"
	"log/slog"
	"sort"

	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/store"
	"github.com/zamowbot/zamowbot/internal/textnorm"
)

// Context optionally narrows resolution to a restaurant already in play.
type Context struct {
	RestaurantID string
	Restaurant   string
}

// Service groups fuzzy menu matches by restaurant and applies the
// resolution ladder.
type Service struct {
	menu store.MenuRepository
}

// NewService creates a disambiguation service over a menu repository.
func NewService(menu store.MenuRepository) *Service {
	return &Service{menu: menu}
}

// Resolve matches the item name against all menus. Results are computed
// fresh per call and never cached: menu state changes between turns.
//
// Ladder: no matches -> ITEM_NOT_FOUND; one match -> ADD_ITEM; all matches
// in one restaurant -> ADD_ITEM (not a real ambiguity); otherwise try the
// context restaurant, then a unique exact full-string match; failing both,
// DISAMBIGUATION_REQUIRED with candidates grouped per restaurant.
//
// A store failure degrades to ITEM_NOT_FOUND to keep the conversation moving.
func (s *Service) Resolve(ctx context.Context, itemName string, dctx *Context) models.DisambiguationResult {
	matches, err := s.menu.SearchMenuItems(ctx, itemName)
	if err != nil {
		slog.Error("disambiguation lookup failed, degrading to not-found", "error", err, "item", itemName)
		return models.DisambiguationResult{Kind: models.DisambiguationItemNotFound}
	}
	if len(matches) == 0 {
		return models.DisambiguationResult{Kind: models.DisambiguationItemNotFound}
	}

	groups := groupByRestaurant(matches)
	if len(groups) == 1 {
		return s.addItem(ctx, pickItem(groups[0].items, itemName))
	}

	// Context restaurant wins when it holds one of the matches. An ID is
	// checked first; a name-only context still counts, since callers may
	// know the name when the ID lookup failed.
	if dctx != nil {
		if dctx.RestaurantID != "" {
			for _, g := range groups {
				if g.restaurantID == dctx.RestaurantID {
					return s.addItem(ctx, pickItem(g.items, itemName))
				}
			}
		}
		if want := textnorm.Normalize(dctx.Restaurant); want != "" {
			for _, g := range groups {
				if textnorm.Normalize(s.lookupRestaurant(ctx, g.restaurantID).Name) == want {
					return s.addItem(ctx, pickItem(g.items, itemName))
				}
			}
		}
	}

	// A unique exact full-string match disambiguates on its own.
	query := textnorm.Normalize(itemName)
	var exact []models.MenuItem
	for _, item := range matches {
		if textnorm.Normalize(item.Name) == query {
			exact = append(exact, item)
		}
	}
	if len(exact) == 1 {
		return s.addItem(ctx, exact[0])
	}

	candidates := make([]models.CandidateGroup, 0, len(groups))
	for _, g := range groups {
		rest := s.lookupRestaurant(ctx, g.restaurantID)
		candidates = append(candidates, models.CandidateGroup{Restaurant: rest, Items: g.items})
	}
	return models.DisambiguationResult{
		Kind:       models.DisambiguationRequired,
		Candidates: candidates,
	}
}

// addItem builds the ADD_ITEM variant, attaching the owning restaurant.
func (s *Service) addItem(ctx context.Context, item models.MenuItem) models.DisambiguationResult {
	rest := s.lookupRestaurant(ctx, item.RestaurantID)
	return models.DisambiguationResult{
		Kind:       models.DisambiguationAddItem,
		Item:       &item,
		Restaurant: &rest,
	}
}

// lookupRestaurant resolves restaurant details, degrading to an ID-only
// stub when the store read fails.
func (s *Service) lookupRestaurant(ctx context.Context, id string) models.Restaurant {
	rest, err := s.menu.GetRestaurant(ctx, id)
	if err != nil || rest == nil {
		if err != nil {
			slog.Error("restaurant lookup failed during disambiguation", "error", err, "restaurantID", id)
		}
		return models.Restaurant{ID: id, Name: id}
	}
	return *rest
}

// pickItem prefers an exact name match inside one restaurant's group,
// falling back to the first (name-sorted) match.
func pickItem(items []models.MenuItem, query string) models.MenuItem {
	q := textnorm.Normalize(query)
	for _, item := range items {
		if textnorm.Normalize(item.Name) == q {
			return item
		}
	}
	return items[0]
}

type restGroup struct {
	restaurantID string
	items        []models.MenuItem
}

// groupByRestaurant groups matches by restaurant with a deterministic order
// (sorted by restaurant ID, items by name), so resolution does not depend
// on match order.
func groupByRestaurant(matches []models.MenuItem) []restGroup {
	byID := map[string][]models.MenuItem{}
	for _, item := range matches {
		byID[item.RestaurantID] = append(byID[item.RestaurantID], item)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	groups := make([]restGroup, 0, len(ids))
	for _, id := range ids {
		items := byID[id]
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		groups = append(groups, restGroup{restaurantID: id, items: items})
	}
	return groups
}
