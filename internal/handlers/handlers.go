// Package handlers implements the domain handlers that consume an
// IntentResult plus the session and produce a HandlerResult. Handlers own
// the session mutation for their turn; everything they change is mirrored
// into ContextUpdates for observability.
package handlers

import (
	"context"
	"log/slog"

	"github.com/zamowbot/zamowbot/internal/disambig"
	"github.com/zamowbot/zamowbot/internal/guards"
	"github.com/zamowbot/zamowbot/internal/models"
	"github.com/zamowbot/zamowbot/internal/store"
)

// maxRestaurantsShown bounds one discovery reply.
const maxRestaurantsShown = 5

// Registry dispatches intents to their handlers.
type Registry struct {
	menu     store.MenuRepository
	disambig *disambig.Service
}

// NewRegistry creates the handler registry.
func NewRegistry(menu store.MenuRepository, dis *disambig.Service) *Registry {
	return &Registry{menu: menu, disambig: dis}
}

// Handle runs the handler for the detected intent. It never returns nil and
// never returns an error: store failures degrade into clarification or
// error surfaces so the turn always completes.
func (r *Registry) Handle(ctx context.Context, result models.IntentResult, session *models.Session) *models.HandlerResult {
	switch result.Intent {
	case models.IntentFindNearby, models.IntentRecommend:
		return r.handleDiscovery(ctx, result, session)
	case models.IntentShowMoreOptions:
		return r.handleMoreOptions(ctx, result, session)
	case models.IntentSelectRestaurant:
		return r.handleSelectRestaurant(ctx, result, session)
	case models.IntentMenuRequest:
		return r.handleMenuRequest(ctx, result, session)
	case models.IntentCreateOrder:
		return r.handleCreateOrder(ctx, result, session)
	case models.IntentConfirmOrder:
		return r.handleConfirmOrder(result, session)
	case models.IntentCancelOrder:
		return r.handleCancelOrder(session)
	case models.IntentConfirm:
		return r.handleBareConfirm(session)
	default:
		return &models.HandlerResult{Surface: &models.DialogSurface{Key: models.SurfaceHelp}}
	}
}

// handleDiscovery finds restaurants for a location/cuisine pair. Without any
// location, known or remembered, it asks for one.
func (r *Registry) handleDiscovery(ctx context.Context, result models.IntentResult, session *models.Session) *models.HandlerResult {
	location := result.Entities.Location
	if location == "" && session != nil {
		location = session.LastLocation
	}
	if location == "" {
		return &models.HandlerResult{NeedsLocation: true}
	}

	restaurants, err := r.menu.SearchRestaurants(ctx, location, result.Entities.Cuisine)
	if err != nil {
		slog.Error("restaurant search failed", "error", err, "location", location)
		return errorResult("wyszukiwanie")
	}
	if len(restaurants) > maxRestaurantsShown {
		restaurants = restaurants[:maxRestaurantsShown]
	}

	updates := map[string]any{"last_location": location}
	if session != nil {
		session.LastLocation = location
		session.LastRestaurantsList = restaurantNames(restaurants)
		if len(restaurants) > 0 {
			session.ExpectedContext = models.ExpectedRestaurantSelection
			updates["expected_context"] = models.ExpectedRestaurantSelection
		}
		updates["last_restaurants_list"] = session.LastRestaurantsList
	}

	res := &models.HandlerResult{Restaurants: restaurants, ContextUpdates: updates}
	if len(restaurants) <= 1 {
		// Zero and single-hit results need an explicit surface; detection
		// only fires on a real choice.
		res.Surface = &models.DialogSurface{
			Key:   models.SurfaceRestaurantsFound,
			Facts: map[string]any{"restaurants": restaurantNames(restaurants), "location": location},
		}
	}
	return res
}

// handleMoreOptions re-runs the last discovery and drops what was already
// shown.
func (r *Registry) handleMoreOptions(ctx context.Context, result models.IntentResult, session *models.Session) *models.HandlerResult {
	if session == nil || session.LastLocation == "" {
		return &models.HandlerResult{NeedsLocation: true}
	}
	all, err := r.menu.SearchRestaurants(ctx, session.LastLocation, result.Entities.Cuisine)
	if err != nil {
		slog.Error("restaurant search failed", "error", err, "location", session.LastLocation)
		return errorResult("wyszukiwanie")
	}

	shown := make(map[string]bool, len(session.LastRestaurantsList))
	for _, name := range session.LastRestaurantsList {
		shown[name] = true
	}
	var fresh []models.Restaurant
	for _, rest := range all {
		if !shown[rest.Name] {
			fresh = append(fresh, rest)
		}
	}
	if len(fresh) > maxRestaurantsShown {
		fresh = fresh[:maxRestaurantsShown]
	}
	if len(fresh) == 0 {
		return &models.HandlerResult{Reply: "To juz wszystkie miejsca, jakie znam w tej okolicy."}
	}

	session.LastRestaurantsList = append(session.LastRestaurantsList, restaurantNames(fresh)...)
	res := &models.HandlerResult{
		Restaurants:    fresh,
		ContextUpdates: map[string]any{"last_restaurants_list": session.LastRestaurantsList},
	}
	if len(fresh) == 1 {
		res.Surface = &models.DialogSurface{
			Key:   models.SurfaceRestaurantsFound,
			Facts: map[string]any{"restaurants": restaurantNames(fresh), "location": session.LastLocation},
		}
	}
	return res
}

// handleSelectRestaurant locks a restaurant chosen by index or by name.
func (r *Registry) handleSelectRestaurant(ctx context.Context, result models.IntentResult, session *models.Session) *models.HandlerResult {
	rest := r.resolveSelection(ctx, result.Entities, session)
	if rest == nil {
		return &models.HandlerResult{Surface: &models.DialogSurface{Key: models.SurfaceAskRestaurantForOrder}}
	}

	if session != nil {
		session.CurrentRestaurant = rest.Name
		session.CurrentRestaurantID = rest.ID
		session.LastRestaurant = rest.Name
		session.ExpectedContext = ""
	}
	return r.menuListing(ctx, rest, map[string]any{
		"current_restaurant":    rest.Name,
		"current_restaurant_id": rest.ID,
	})
}

// resolveSelection maps a selection index over the last presented list, or a
// spoken name, to a restaurant.
func (r *Registry) resolveSelection(ctx context.Context, entities models.Entities, session *models.Session) *models.Restaurant {
	if idx := entities.SelectionIndex; idx > 0 && session != nil {
		list := session.LastRestaurantsList
		if idx <= len(list) {
			rest, err := r.menu.FindRestaurantByName(ctx, list[idx-1])
			if err != nil {
				slog.Error("selection lookup failed", "error", err, "name", list[idx-1])
				return nil
			}
			return rest
		}
		return nil
	}
	if entities.Restaurant != "" {
		rest, err := r.menu.FindRestaurantByName(ctx, entities.Restaurant)
		if err != nil {
			slog.Error("restaurant lookup failed", "error", err, "name", entities.Restaurant)
			return nil
		}
		return rest
	}
	return nil
}

// handleMenuRequest shows the menu of the named or locked restaurant.
func (r *Registry) handleMenuRequest(ctx context.Context, result models.IntentResult, session *models.Session) *models.HandlerResult {
	name := result.Entities.Restaurant
	if name == "" && guards.IsRestaurantLocked(session) {
		name = session.CurrentRestaurant
	}
	if name == "" {
		return &models.HandlerResult{Surface: &models.DialogSurface{Key: models.SurfaceAskRestaurantForMenu}}
	}
	rest, err := r.menu.FindRestaurantByName(ctx, name)
	if err != nil {
		slog.Error("restaurant lookup failed", "error", err, "name", name)
		return errorResult("menu")
	}
	if rest == nil {
		return &models.HandlerResult{Surface: &models.DialogSurface{Key: models.SurfaceAskRestaurantForMenu}}
	}
	if session != nil {
		session.LastRestaurant = rest.Name
	}
	return r.menuListing(ctx, rest, nil)
}

func (r *Registry) menuListing(ctx context.Context, rest *models.Restaurant, updates map[string]any) *models.HandlerResult {
	items, err := r.menu.MenuFor(ctx, rest.ID)
	if err != nil {
		slog.Error("menu fetch failed", "error", err, "restaurantID", rest.ID)
		return errorResult("menu")
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Available {
			names = append(names, item.Name)
		}
	}
	return &models.HandlerResult{
		MenuItems:      items,
		ContextUpdates: updates,
		Surface: &models.DialogSurface{
			Key:   models.SurfaceMenuListing,
			Facts: map[string]any{"restaurant": rest.Name, "items": names},
		},
	}
}

// handleCreateOrder resolves each requested item through disambiguation and
// assembles a pending order. Any ambiguous item makes the whole turn a
// clarification; the order is only extended with unambiguous items.
func (r *Registry) handleCreateOrder(ctx context.Context, result models.IntentResult, session *models.Session) *models.HandlerResult {
	requested := result.Entities.Items
	if len(requested) == 0 && result.Entities.Dish != "" {
		qty := result.Entities.Quantity
		if qty < 1 {
			qty = 1
		}
		requested = []models.OrderedItem{{Name: result.Entities.Dish, Quantity: qty}}
	}
	if len(requested) == 0 {
		return &models.HandlerResult{NeedsClarification: true}
	}

	// A restaurant named in the utterance outranks the locked one.
	var dctx *disambig.Context
	switch {
	case result.Entities.RestaurantID != "":
		dctx = &disambig.Context{RestaurantID: result.Entities.RestaurantID, Restaurant: result.Entities.Restaurant}
	case guards.IsRestaurantLocked(session):
		dctx = &disambig.Context{RestaurantID: session.CurrentRestaurantID, Restaurant: session.CurrentRestaurant}
	}

	res := &models.HandlerResult{}
	var resolved []resolvedItem
	for _, req := range requested {
		d := r.disambig.Resolve(ctx, req.Name, dctx)
		switch d.Kind {
		case models.DisambiguationItemNotFound:
			res.UnknownItems = append(res.UnknownItems, req.Name)
		case models.DisambiguationRequired:
			res.NeedsClarification = true
			res.ClarifyCandidates = append(res.ClarifyCandidates, d.Candidates...)
		case models.DisambiguationAddItem:
			if !d.Item.Available {
				res.Surface = &models.DialogSurface{
					Key:   models.SurfaceItemUnavailable,
					Facts: map[string]any{"item": d.Item.Name},
				}
				return res
			}
			resolved = append(resolved, resolvedItem{item: *d.Item, restaurant: *d.Restaurant, quantity: req.Quantity})
		}
	}
	if res.NeedsClarification || len(res.UnknownItems) > 0 || len(resolved) == 0 {
		return res
	}

	order := pendingOrderFor(session, resolved[0].restaurant)
	for _, ri := range resolved {
		if ri.restaurant.ID != order.RestaurantID {
			// Items from a second restaurant cannot join this order; ask.
			res.NeedsClarification = true
			res.ClarifyCandidates = append(res.ClarifyCandidates,
				models.CandidateGroup{Restaurant: ri.restaurant, Items: []models.MenuItem{ri.item}})
			return res
		}
		qty := ri.quantity
		if qty < 1 {
			qty = 1
		}
		order.Items = append(order.Items, models.OrderedItem{Name: ri.item.Name, Quantity: qty})
	}

	if session != nil {
		session.PendingOrder = order
		session.CurrentRestaurant = order.Restaurant
		session.CurrentRestaurantID = order.RestaurantID
		session.ExpectedContext = models.ExpectedConfirmOrder
	}
	res.PendingOrder = order
	res.ContextUpdates = map[string]any{
		"pending_order":    order,
		"expected_context": models.ExpectedConfirmOrder,
	}
	return res
}

type resolvedItem struct {
	item       models.MenuItem
	restaurant models.Restaurant
	quantity   int
}

// pendingOrderFor continues the session's open order when it belongs to the
// same restaurant, otherwise starts a fresh one.
func pendingOrderFor(session *models.Session, rest models.Restaurant) *models.PendingOrder {
	if session != nil && session.PendingOrder != nil && session.PendingOrder.RestaurantID == rest.ID {
		copied := *session.PendingOrder
		copied.Items = append([]models.OrderedItem(nil), session.PendingOrder.Items...)
		return &copied
	}
	return &models.PendingOrder{RestaurantID: rest.ID, Restaurant: rest.Name}
}

// handleConfirmOrder finalizes the pending order.
func (r *Registry) handleConfirmOrder(result models.IntentResult, session *models.Session) *models.HandlerResult {
	if !guards.InOrderingContext(session) || session.PendingOrder == nil || len(session.PendingOrder.Items) == 0 {
		return &models.HandlerResult{Surface: &models.DialogSurface{Key: models.SurfaceCartEmpty}}
	}
	order := session.PendingOrder
	session.PendingOrder = nil
	session.ExpectedContext = ""
	return &models.HandlerResult{
		ContextUpdates: map[string]any{"pending_order": nil, "expected_context": ""},
		Surface: &models.DialogSurface{
			Key:   models.SurfaceOrderConfirmed,
			Facts: map[string]any{"restaurant": order.Restaurant},
		},
	}
}

// handleCancelOrder drops the pending order and the ordering context.
func (r *Registry) handleCancelOrder(session *models.Session) *models.HandlerResult {
	if session != nil {
		session.PendingOrder = nil
		session.PendingDish = ""
		session.ExpectedContext = ""
	}
	return &models.HandlerResult{
		ContextUpdates: map[string]any{"pending_order": nil, "expected_context": ""},
		Surface:        &models.DialogSurface{Key: models.SurfaceOrderCancelled},
	}
}

// handleBareConfirm handles agreement outside an order confirmation. Mid-order
// agreement routes into order confirmation; anywhere else it is a plain ack.
func (r *Registry) handleBareConfirm(session *models.Session) *models.HandlerResult {
	if guards.AwaitingConfirmation(session) || guards.InOrderingContext(session) {
		return r.handleConfirmOrder(models.IntentResult{}, session)
	}
	return &models.HandlerResult{Reply: "Dobrze. Powiedz, co mam zrobic dalej."}
}

func errorResult(reason string) *models.HandlerResult {
	return &models.HandlerResult{
		Surface: &models.DialogSurface{Key: models.SurfaceError, Facts: map[string]any{"reason": reason}},
	}
}

func restaurantNames(restaurants []models.Restaurant) []string {
	names := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		names = append(names, r.Name)
	}
	return names
}
