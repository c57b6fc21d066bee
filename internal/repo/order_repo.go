// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order
// model, keyed by the composite (jio, user) pair.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// EnsureOrder returns the order for (jioID, userID), creating an empty unpaid
// one if none exists. The get-or-create is idempotent: a second call returns
// the same row and leaves the item list untouched.
func EnsureOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Where("jio_id = ? AND user_id = ?", jioID, userID).
		First(&o).Error
	if err == nil {
		return &o, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	o = domain.Order{JioID: jioID, UserID: userID, Food: "", Paid: domain.NotPaid}
	if err := db.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder fetches the order for (jioID, userID) with the participant
// association loaded, or ErrNotFound.
func GetOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).
		Preload("User").
		Where("jio_id = ? AND user_id = ?", jioID, userID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns every order of a jio with participants loaded, in
// storage insertion order. The listing order is rendered verbatim into the
// consolidated view, so it must stay reproducible across calls.
func ListOrders(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Preload("User").
		Where("jio_id = ?", jioID).
		Order("rowid").
		Find(&out).Error
	return out, err
}

// UpdateOrderFood overwrites the encoded item list of an order.
func UpdateOrderFood(ctx context.Context, db *gorm.DB, jioID, userID int64, food string) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("jio_id = ? AND user_id = ?", jioID, userID).
		Update("food", food)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateOrderPaid sets the self-declared payment flag.
func UpdateOrderPaid(ctx context.Context, db *gorm.DB, jioID, userID int64, paid domain.PaidStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("jio_id = ? AND user_id = ?", jioID, userID).
		Update("paid", paid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateOrderMessageID overwrites the participant-surface address of an
// order after its private message is (re)sent.
func UpdateOrderMessageID(ctx context.Context, db *gorm.DB, jioID, userID, messageID int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("jio_id = ? AND user_id = ?", jioID, userID).
		Update("message_id", messageID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
