package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/supperjio/jiobot/internal/domain"
)

func TestFavouriteCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f, err := CreateFavourite(ctx, db, 42, "McDonalds", "fries")
	if err != nil {
		t.Fatalf("CreateFavourite: %v", err)
	}

	if ok, _ := FavouriteExists(ctx, db, 42, "McDonalds", "fries"); !ok {
		t.Fatal("favourite should exist")
	}
	if ok, _ := FavouriteExists(ctx, db, 42, "McDonalds", "nuggets"); ok {
		t.Fatal("missing favourite reported as existing")
	}

	total, _ := CountFavourites(ctx, db, 42, "McDonalds")
	if total != 1 {
		t.Fatalf("count = %d", total)
	}

	got, err := GetFavourite(ctx, db, f.ID)
	if err != nil || got.Food != "fries" {
		t.Fatalf("GetFavourite = %+v, %v", got, err)
	}
}

func TestDeleteFavourite_OwnershipPredicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	f, _ := CreateFavourite(ctx, db, 42, "McDonalds", "fries")

	// Wrong owner: no error, zero rows deleted.
	if err := DeleteFavourite(ctx, db, f.ID, 99); err != nil {
		t.Fatalf("DeleteFavourite wrong owner: %v", err)
	}
	if _, err := GetFavourite(ctx, db, f.ID); err != nil {
		t.Fatalf("favourite should survive wrong-owner delete: %v", err)
	}

	if err := DeleteFavourite(ctx, db, f.ID, 42); err != nil {
		t.Fatalf("DeleteFavourite: %v", err)
	}
	if _, err := GetFavourite(ctx, db, f.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("favourite should be gone, got %v", err)
	}
}

func TestListFavouritesAndRestaurants(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _ = CreateFavourite(ctx, db, 42, "McDonalds", "fries")
	_, _ = CreateFavourite(ctx, db, 42, "McDonalds", "nuggets")
	_, _ = CreateFavourite(ctx, db, 42, "Al Amaan", "maggi goreng")
	_, _ = CreateFavourite(ctx, db, 99, "McDonalds", "someone else")

	favs, err := ListFavourites(ctx, db, 42, "McDonalds")
	if err != nil {
		t.Fatalf("ListFavourites: %v", err)
	}
	var foods []string
	for _, f := range favs {
		foods = append(foods, f.Food)
	}
	if !reflect.DeepEqual(foods, []string{"fries", "nuggets"}) {
		t.Fatalf("foods = %v", foods)
	}

	restaurants, err := ListFavouriteRestaurants(ctx, db, 42)
	if err != nil {
		t.Fatalf("ListFavouriteRestaurants: %v", err)
	}
	if !reflect.DeepEqual(restaurants, []string{"Al Amaan", "McDonalds"}) {
		t.Fatalf("restaurants = %v", restaurants)
	}
}

func TestUpsertUser_RefreshesIdentity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := UpsertUser(ctx, db, 42, "Alice", 420); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if _, err := UpsertUser(ctx, db, 42, "Alice Tan", 421); err != nil {
		t.Fatalf("second UpsertUser: %v", err)
	}

	u, err := GetUser(ctx, db, 42)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.DisplayName != "Alice Tan" || u.ChatID != 421 {
		t.Fatalf("identity not refreshed: %+v", u)
	}

	var count int64
	db.Model(&domain.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}
}

func TestSharedMessages_AppendOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	j, _ := CreateJio(ctx, db, 10, "r", "d")
	for _, sid := range []string{"inline-a", "inline-b", "inline-c"} {
		if _, err := CreateSharedMessage(ctx, db, j.ID, sid); err != nil {
			t.Fatalf("CreateSharedMessage(%s): %v", sid, err)
		}
	}

	shares, err := ListSharedMessages(ctx, db, j.ID)
	if err != nil {
		t.Fatalf("ListSharedMessages: %v", err)
	}
	var ids []string
	for _, s := range shares {
		ids = append(ids, s.SurfaceID)
	}
	if !reflect.DeepEqual(ids, []string{"inline-a", "inline-b", "inline-c"}) {
		t.Fatalf("shares = %v", ids)
	}
}

func TestInbox_DedupAndPrune(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seen, err := SeenUpdate(ctx, db, 1, time.Now().UTC())
	if err != nil || seen {
		t.Fatalf("fresh update reported seen: %v %v", seen, err)
	}

	if err := MarkUpdate(ctx, db, 1, time.Hour); err != nil {
		t.Fatalf("MarkUpdate: %v", err)
	}
	if err := MarkUpdate(ctx, db, 1, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if seen, _ := SeenUpdate(ctx, db, 1, time.Now().UTC()); !seen {
		t.Fatal("marked update not reported seen")
	}

	// An expired record no longer counts as seen, and pruning removes it.
	if seen, _ := SeenUpdate(ctx, db, 1, time.Now().UTC().Add(2*time.Hour)); seen {
		t.Fatal("expired record still reported seen")
	}
	if err := PruneInbox(ctx, db, time.Now().UTC().Add(2*time.Hour)); err != nil {
		t.Fatalf("PruneInbox: %v", err)
	}
	var count int64
	db.Model(&domain.InboxRecord{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected empty inbox, got %d rows", count)
	}
}
