// Package services: FavouriteService
//
// This file implements the FavouriteService, which manages per-restaurant
// quick-add shortcuts. Each (user, restaurant) pair holds at most
// domain.MaxFavouritesPerRestaurant items and never stores duplicates; both
// rules are enforced here rather than at the schema level so the caller gets
// a quiet signal instead of a constraint violation.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// FavouriteRepo defines the repository contract required by FavouriteService.
type FavouriteRepo interface {
	// CountFavourites counts a user's favourites for one restaurant.
	CountFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) (int64, error)

	// FavouriteExists reports whether the exact (user, restaurant, food) row exists.
	FavouriteExists(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (bool, error)

	// CreateFavourite inserts a favourite row.
	CreateFavourite(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (*domain.FavouriteItem, error)

	// GetFavourite fetches a favourite by ID.
	GetFavourite(ctx context.Context, db *gorm.DB, id int64) (*domain.FavouriteItem, error)

	// DeleteFavourite removes a favourite; the ownership check is part of
	// the delete predicate and deleting a non-owned row is a no-op.
	DeleteFavourite(ctx context.Context, db *gorm.DB, id, userID int64) error

	// ListFavourites returns a user's favourites for one restaurant.
	ListFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) ([]domain.FavouriteItem, error)

	// ListFavouriteRestaurants returns the distinct restaurants a user has
	// favourites for.
	ListFavouriteRestaurants(ctx context.Context, db *gorm.DB, userID int64) ([]string, error)
}

// FavouriteService provides favourite-item operations.
type FavouriteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the favourite repository used by this service.
	Repo FavouriteRepo
}

// NewFavouriteService constructs a FavouriteService.
func NewFavouriteService(db *gorm.DB, r FavouriteRepo) *FavouriteService {
	return &FavouriteService{DB: db, Repo: r}
}

// Add stores a favourite for the (user, restaurant) pair. It reports ok=false
// when the pair already holds the maximum number of items. Adding a food that
// is already a favourite succeeds without writing anything.
func (s *FavouriteService) Add(ctx context.Context, userID int64, restaurant, food string) (bool, error) {
	count, err := s.Repo.CountFavourites(ctx, s.DB, userID, restaurant)
	if err != nil {
		return false, err
	}
	if count >= domain.MaxFavouritesPerRestaurant {
		return false, nil
	}

	exists, err := s.Repo.FavouriteExists(ctx, s.DB, userID, restaurant, food)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	if _, err := s.Repo.CreateFavourite(ctx, s.DB, userID, restaurant, food); err != nil {
		return false, err
	}
	return true, nil
}

// Get fetches a favourite by ID, mapping not-found to ErrFavouriteNotFound.
func (s *FavouriteService) Get(ctx context.Context, id int64) (*domain.FavouriteItem, error) {
	f, err := s.Repo.GetFavourite(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFavouriteNotFound
	}
	return f, err
}

// Remove deletes the favourite if it belongs to userID; removing someone
// else's favourite, or one already gone, is a silent no-op.
func (s *FavouriteService) Remove(ctx context.Context, id, userID int64) error {
	return s.Repo.DeleteFavourite(ctx, s.DB, id, userID)
}

// ListByRestaurant returns the user's favourites for one restaurant.
func (s *FavouriteService) ListByRestaurant(ctx context.Context, userID int64, restaurant string) ([]domain.FavouriteItem, error) {
	return s.Repo.ListFavourites(ctx, s.DB, userID, restaurant)
}

// ListRestaurants returns the restaurants the user has favourites for.
func (s *FavouriteService) ListRestaurants(ctx context.Context, userID int64) ([]string, error) {
	return s.Repo.ListFavouriteRestaurants(ctx, s.DB, userID)
}

// Foods projects favourites to their food names, for quick-pick keyboards.
func Foods(favourites []domain.FavouriteItem) []string {
	out := make([]string, 0, len(favourites))
	for _, f := range favourites {
		out = append(out, f.Food)
	}
	return out
}
