package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/zamowbot/zamowbot/internal/models"
)

func newRedisStore(t *testing.T) *RedisSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionStoreFromClient(client)
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	got, err := s.GetSession(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("missing session = (%v, %v), want (nil, nil)", got, err)
	}

	session := &models.Session{
		ID:                "48500100200",
		CurrentRestaurant: "Kebab King",
		PendingOrder: &models.PendingOrder{
			RestaurantID: "r3",
			Restaurant:   "Kebab King",
			Items:        []models.OrderedItem{{Name: "Kebab w bulce", Quantity: 2}},
		},
		ExpectedContext: models.ExpectedConfirmOrder,
	}
	if err := s.SaveSession(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = s.GetSession(ctx, "48500100200")
	if err != nil || got == nil {
		t.Fatalf("get: (%v, %v)", got, err)
	}
	if got.PendingOrder == nil || got.PendingOrder.Items[0].Quantity != 2 {
		t.Errorf("pending order lost in round trip: %+v", got.PendingOrder)
	}
	if got.ExpectedContext != models.ExpectedConfirmOrder {
		t.Errorf("expected context = %q", got.ExpectedContext)
	}

	ids, err := s.ListSessionIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "48500100200" {
		t.Errorf("list = (%v, %v)", ids, err)
	}

	if err := s.DeleteSession(ctx, "48500100200"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ = s.GetSession(ctx, "48500100200"); got != nil {
		t.Error("session survived deletion")
	}
}

func TestRedisSessionStoreSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := NewRedisSessionStoreFromClient(client)

	if err := s.SaveSession(context.Background(), &models.Session{ID: "s1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	ttl := mr.TTL(sessionKeyPrefix + "s1")
	if ttl != DefaultSessionTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultSessionTTL)
	}

	// An idle session expires.
	mr.FastForward(DefaultSessionTTL + 1)
	got, err := s.GetSession(context.Background(), "s1")
	if err != nil || got != nil {
		t.Errorf("expired session = (%v, %v), want gone", got, err)
	}
}

func TestRedisSessionStoreRejectsInvalid(t *testing.T) {
	s := newRedisStore(t)
	if err := s.SaveSession(context.Background(), nil); err == nil {
		t.Error("nil session accepted")
	}
	if err := s.SaveSession(context.Background(), &models.Session{}); err == nil {
		t.Error("empty session ID accepted")
	}
}
