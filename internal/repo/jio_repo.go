// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Jio model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only CRUD persistence
// and query composition.
//
// Error semantics:
//   - When a jio is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateJio inserts a new open Jio owned by ownerID with CreatedAt set to UTC.
// Restaurant length validation belongs to the service layer.
func CreateJio(ctx context.Context, db *gorm.DB, ownerID int64, restaurant, description string) (*domain.Jio, error) {
	j := &domain.Jio{
		OwnerID:     ownerID,
		Restaurant:  restaurant,
		Description: description,
		Status:      domain.JioOpen,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(j).Error; err != nil {
		return nil, err
	}
	return j, nil
}

// GetJio fetches a single jio by ID, or ErrNotFound if missing.
func GetJio(ctx context.Context, db *gorm.DB, id int64) (*domain.Jio, error) {
	var j domain.Jio
	if err := db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateJioStatus flips the lifecycle status of a jio. Returns ErrNotFound
// if no row was affected.
func UpdateJioStatus(ctx context.Context, db *gorm.DB, id int64, status domain.JioStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Jio{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateJioDescription replaces the description of a jio.
func UpdateJioDescription(ctx context.Context, db *gorm.DB, id int64, description string) error {
	res := db.WithContext(ctx).
		Model(&domain.Jio{}).
		Where("id = ?", id).
		Update("description", description)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateJioHostAddress overwrites the host control-surface address. Called
// after every render cycle that sends a fresh host message.
func UpdateJioHostAddress(ctx context.Context, db *gorm.DB, id, chatID, messageID int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Jio{}).
		Where("id = ?", id).
		Updates(map[string]any{"host_chat_id": chatID, "host_message_id": messageID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCreatedJios returns jios owned by ownerID, newest first. Closed jios
// are filtered out unless includeClosed is set; limit caps the result when
// positive.
func ListCreatedJios(ctx context.Context, db *gorm.DB, ownerID int64, limit int, includeClosed bool) ([]domain.Jio, error) {
	q := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc")
	if !includeClosed {
		q = q.Where("status <> ?", domain.JioClosed)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Jio
	err := q.Find(&out).Error
	return out, err
}

// ListJoinedJios returns jios the user has an order row in, newest first,
// capped at limit when positive.
func ListJoinedJios(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.Jio, error) {
	q := db.WithContext(ctx).
		Joins("JOIN orders ON orders.jio_id = jios.id").
		Where("orders.user_id = ?", userID).
		Order("jios.created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Jio
	err := q.Find(&out).Error
	return out, err
}
