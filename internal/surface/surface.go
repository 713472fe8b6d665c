// Package surface renders deterministic reply skeletons from structured
// facts. Rendering is the baseline for every reply: whatever the optional
// paraphrase layer does, the rendered text is what the system can always say.
package surface

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/zamowbot/zamowbot/internal/models"
)

// template builds a reply from facts. Templates may assume nothing about the
// facts map: missing keys must still produce a sensible sentence.
type template func(facts map[string]any) string

// templates is the closed surface catalog. Adding a key here is a schema
// migration: the key must also get a DetectSurface rule when handlers can
// imply it.
var templates = map[models.SurfaceKey]template{
	models.SurfaceAskLocation: func(f map[string]any) string {
		return "W jakim miescie mam szukac? Podaj nazwe miejscowosci."
	},
	models.SurfaceChooseRestaurant: func(f map[string]any) string {
		names := factStrings(f, "restaurants")
		item := factString(f, "item")
		if item != "" && len(names) > 0 {
			return fmt.Sprintf("%s znajdziesz w kilku miejscach: %s. Z ktorej restauracji zamawiamy?", item, strings.Join(names, ", "))
		}
		if len(names) > 0 {
			return fmt.Sprintf("Mamy kilka mozliwosci: %s. Ktora restauracje wybierasz?", strings.Join(names, ", "))
		}
		return "Ktora restauracje wybierasz?"
	},
	models.SurfaceAskRestaurantForMenu: func(f map[string]any) string {
		return "Z ktorej restauracji pokazac menu?"
	},
	models.SurfaceAskRestaurantForOrder: func(f map[string]any) string {
		return "Z ktorej restauracji chcesz zamowic?"
	},
	models.SurfaceClarifyItems: func(f map[string]any) string {
		return "Nie jestem pewien, co dokladnie zamowic. Powiedz jeszcze raz nazwy dan."
	},
	models.SurfaceItemNotFound: func(f map[string]any) string {
		if item := factString(f, "item"); item != "" {
			return fmt.Sprintf("Nie znalazlem pozycji \"%s\" w zadnym menu. Sprobuj innej nazwy.", item)
		}
		return "Nie znalazlem takiej pozycji w zadnym menu. Sprobuj innej nazwy."
	},
	models.SurfaceItemUnavailable: func(f map[string]any) string {
		if item := factString(f, "item"); item != "" {
			return fmt.Sprintf("Pozycja \"%s\" jest chwilowo niedostepna.", item)
		}
		return "Ta pozycja jest chwilowo niedostepna."
	},
	models.SurfaceConfirmAdd: func(f map[string]any) string {
		item := factString(f, "item")
		restaurant := factString(f, "restaurant")
		quantity := factInt(f, "quantity")
		if quantity < 1 {
			quantity = 1
		}
		switch {
		case item != "" && restaurant != "":
			return fmt.Sprintf("Dodaje %d x %s z %s. Potwierdzasz?", quantity, item, restaurant)
		case item != "":
			return fmt.Sprintf("Dodaje %d x %s. Potwierdzasz?", quantity, item)
		default:
			return "Dodaje pozycje do zamowienia. Potwierdzasz?"
		}
	},
	models.SurfaceCartEmpty: func(f map[string]any) string {
		return "Twoje zamowienie jest na razie puste. Powiedz, co mam dodac."
	},
	models.SurfaceRestaurantsFound: func(f map[string]any) string {
		names := factStrings(f, "restaurants")
		location := factString(f, "location")
		if len(names) == 0 {
			if location != "" {
				return fmt.Sprintf("Nie znalazlem restauracji w %s. Sprobuj innej lokalizacji.", location)
			}
			return "Nie znalazlem zadnych restauracji. Sprobuj innej lokalizacji."
		}
		if location != "" {
			return fmt.Sprintf("W %s znalazlem: %s. Ktora wybierasz?", location, strings.Join(names, ", "))
		}
		return fmt.Sprintf("Znalazlem: %s. Ktora wybierasz?", strings.Join(names, ", "))
	},
	models.SurfaceMenuListing: func(f map[string]any) string {
		restaurant := factString(f, "restaurant")
		items := factStrings(f, "items")
		if len(items) == 0 {
			if restaurant != "" {
				return fmt.Sprintf("Menu %s jest chwilowo puste.", restaurant)
			}
			return "To menu jest chwilowo puste."
		}
		if restaurant != "" {
			return fmt.Sprintf("Menu %s: %s. Co podac?", restaurant, strings.Join(items, ", "))
		}
		return fmt.Sprintf("W menu mamy: %s. Co podac?", strings.Join(items, ", "))
	},
	models.SurfaceOrderSummary: func(f map[string]any) string {
		restaurant := factString(f, "restaurant")
		items := factStrings(f, "items")
		if len(items) > 0 && restaurant != "" {
			return fmt.Sprintf("Twoje zamowienie z %s: %s. Potwierdzasz?", restaurant, strings.Join(items, ", "))
		}
		if len(items) > 0 {
			return fmt.Sprintf("Twoje zamowienie: %s. Potwierdzasz?", strings.Join(items, ", "))
		}
		return "Mam gotowe zamowienie. Potwierdzasz?"
	},
	models.SurfaceOrderConfirmed: func(f map[string]any) string {
		if restaurant := factString(f, "restaurant"); restaurant != "" {
			return fmt.Sprintf("Zamowienie z %s przyjete. Smacznego!", restaurant)
		}
		return "Zamowienie przyjete. Smacznego!"
	},
	models.SurfaceOrderCancelled: func(f map[string]any) string {
		return "Zamowienie anulowane. Gdybys zmienil zdanie, zaczynamy od nowa."
	},
	models.SurfaceHelp: func(f map[string]any) string {
		return "Moge znalezc restauracje, pokazac menu i zlozyc zamowienie. Powiedz na przyklad: znajdz pizze w Krakowie."
	},
	models.SurfaceError: func(f map[string]any) string {
		if reason := factString(f, "reason"); reason != "" {
			return fmt.Sprintf("Przepraszam, cos poszlo nie tak (%s). Sprobuj jeszcze raz.", reason)
		}
		return "Przepraszam, cos poszlo nie tak. Sprobuj jeszcze raz."
	},
}

// Render produces the reply for a surface. An unknown key or a panicking
// template degrades to the generic error surface; the reply is never empty.
func Render(key models.SurfaceKey, facts map[string]any) (rendered models.RenderedSurface) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("surface template panicked, falling back to error surface", "key", key, "panic", r)
			rendered = errorSurface()
		}
	}()

	tmpl, ok := templates[key]
	if !ok {
		slog.Error("unknown surface key, falling back to error surface", "key", key)
		return errorSurface()
	}

	reply := tmpl(facts)
	if strings.TrimSpace(reply) == "" {
		slog.Error("surface template produced empty reply", "key", key)
		return errorSurface()
	}

	return models.RenderedSurface{
		Reply: reply,
		UIHints: models.UIHints{
			SurfaceKey: key,
			Options:    factOptions(facts),
		},
	}
}

// RenderSurface renders a full DialogSurface request, merging its explicit
// options into the hints.
func RenderSurface(s models.DialogSurface) models.RenderedSurface {
	rendered := Render(s.Key, s.Facts)
	if len(s.Options) > 0 {
		rendered.UIHints.Options = s.Options
	}
	return rendered
}

// Keys returns every key in the catalog; used by tests and admin reporting.
func Keys() []models.SurfaceKey {
	keys := make([]models.SurfaceKey, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	return keys
}

func errorSurface() models.RenderedSurface {
	return models.RenderedSurface{
		Reply:   "Przepraszam, cos poszlo nie tak. Sprobuj jeszcze raz.",
		UIHints: models.UIHints{SurfaceKey: models.SurfaceError},
	}
}

// --- fact helpers ---

func factString(facts map[string]any, key string) string {
	if facts == nil {
		return ""
	}
	if s, ok := facts[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func factStrings(facts map[string]any, key string) []string {
	if facts == nil {
		return nil
	}
	switch v := facts[key].(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func factInt(facts map[string]any, key string) int {
	if facts == nil {
		return 0
	}
	switch v := facts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func factOptions(facts map[string]any) []models.SurfaceOption {
	if facts == nil {
		return nil
	}
	opts, ok := facts["options"].([]models.SurfaceOption)
	if !ok {
		return nil
	}
	return opts
}
