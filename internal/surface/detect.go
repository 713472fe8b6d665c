package surface

import (
	"fmt"
	"strings"

	"github.com/zamowbot/zamowbot/internal/models"
)

// DetectSurface derives the dialog surface implied by a handler result.
// Detection is a pure function of the result: running it twice on the same
// input yields the same surface. A handler that already attached an explicit
// surface wins outright.
//
// Priority when several conditions hold: clarification, then unknown items,
// then missing location, then restaurant choice, then pending confirmation.
// A pending order of one item confirms via confirm_add; larger orders get
// the full summary.
func DetectSurface(result *models.HandlerResult, session *models.Session) *models.DialogSurface {
	if result == nil {
		return nil
	}
	if result.Surface != nil {
		return result.Surface
	}

	switch {
	case result.NeedsClarification && len(result.ClarifyCandidates) > 0:
		return clarifySurface(result.ClarifyCandidates)
	case result.NeedsClarification:
		return &models.DialogSurface{Key: models.SurfaceClarifyItems}
	case len(result.UnknownItems) > 0:
		return &models.DialogSurface{
			Key:   models.SurfaceItemNotFound,
			Facts: map[string]any{"item": strings.Join(result.UnknownItems, ", ")},
		}
	case result.NeedsLocation:
		return &models.DialogSurface{Key: models.SurfaceAskLocation}
	case len(result.Restaurants) > 1:
		return restaurantsSurface(result.Restaurants, session)
	case result.PendingOrder != nil && len(result.PendingOrder.Items) == 1:
		return confirmAddSurface(result.PendingOrder)
	case result.PendingOrder != nil:
		return orderSummarySurface(result.PendingOrder)
	default:
		return nil
	}
}

func clarifySurface(candidates []models.CandidateGroup) *models.DialogSurface {
	names := make([]string, 0, len(candidates))
	options := make([]models.SurfaceOption, 0, len(candidates))
	item := ""
	for _, g := range candidates {
		names = append(names, g.Restaurant.Name)
		options = append(options, models.SurfaceOption{ID: g.Restaurant.ID, Label: g.Restaurant.Name})
		if item == "" && len(g.Items) > 0 {
			item = g.Items[0].Name
		}
	}
	return &models.DialogSurface{
		Key:     models.SurfaceChooseRestaurant,
		Facts:   map[string]any{"item": item, "restaurants": names},
		Options: options,
	}
}

func restaurantsSurface(restaurants []models.Restaurant, session *models.Session) *models.DialogSurface {
	names := make([]string, 0, len(restaurants))
	options := make([]models.SurfaceOption, 0, len(restaurants))
	for i, r := range restaurants {
		names = append(names, r.Name)
		options = append(options, models.SurfaceOption{ID: fmt.Sprintf("%d", i+1), Label: r.Name})
	}
	facts := map[string]any{"restaurants": names}
	if session != nil && session.LastLocation != "" {
		facts["location"] = session.LastLocation
	}
	return &models.DialogSurface{
		Key:     models.SurfaceRestaurantsFound,
		Facts:   facts,
		Options: options,
	}
}

func confirmAddSurface(order *models.PendingOrder) *models.DialogSurface {
	item := order.Items[0]
	return &models.DialogSurface{
		Key: models.SurfaceConfirmAdd,
		Facts: map[string]any{
			"item":       item.Name,
			"restaurant": order.Restaurant,
			"quantity":   item.Quantity,
		},
	}
}

func orderSummarySurface(order *models.PendingOrder) *models.DialogSurface {
	items := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		if it.Quantity > 1 {
			items = append(items, fmt.Sprintf("%d x %s", it.Quantity, it.Name))
		} else {
			items = append(items, it.Name)
		}
	}
	return &models.DialogSurface{
		Key:   models.SurfaceOrderSummary,
		Facts: map[string]any{"restaurant": order.Restaurant, "items": items},
	}
}
