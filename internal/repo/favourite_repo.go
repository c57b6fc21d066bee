// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for favourite
// quick-add items.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// CountFavourites returns the number of favourites the user has for a
// restaurant.
func CountFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.FavouriteItem{}).
		Where("user_id = ? AND restaurant = ?", userID, restaurant).
		Count(&total).Error
	return total, err
}

// FavouriteExists reports whether the exact (user, restaurant, food) triple
// is already saved.
func FavouriteExists(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.FavouriteItem{}).
		Where("user_id = ? AND restaurant = ? AND food = ?", userID, restaurant, food).
		Count(&total).Error
	return total > 0, err
}

// CreateFavourite inserts a favourite row. Bound and uniqueness checks belong
// to the service layer.
func CreateFavourite(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (*domain.FavouriteItem, error) {
	f := &domain.FavouriteItem{UserID: userID, Restaurant: restaurant, Food: food}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// GetFavourite fetches a favourite by ID, or ErrNotFound.
func GetFavourite(ctx context.Context, db *gorm.DB, id int64) (*domain.FavouriteItem, error) {
	var f domain.FavouriteItem
	if err := db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFavourite removes a favourite only if it belongs to userID.
// Ownership is part of the delete predicate: a mismatched owner silently
// deletes zero rows, which is not an error.
func DeleteFavourite(ctx context.Context, db *gorm.DB, id, userID int64) error {
	return db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.FavouriteItem{}).Error
}

// ListFavourites returns the user's favourites for a restaurant in insertion
// order.
func ListFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) ([]domain.FavouriteItem, error) {
	var out []domain.FavouriteItem
	err := db.WithContext(ctx).
		Where("user_id = ? AND restaurant = ?", userID, restaurant).
		Order("id").
		Find(&out).Error
	return out, err
}

// ListFavouriteRestaurants returns the distinct restaurants the user has at
// least one favourite for.
func ListFavouriteRestaurants(ctx context.Context, db *gorm.DB, userID int64) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.FavouriteItem{}).
		Distinct("restaurant").
		Where("user_id = ?", userID).
		Order("restaurant").
		Pluck("restaurant", &out).Error
	return out, err
}
