// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for shared-surface
// registrations.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// CreateSharedMessage registers one more shared surface for a jio. Rows are
// append-only; nothing prunes them when a surface later becomes permanently
// unreachable.
func CreateSharedMessage(ctx context.Context, db *gorm.DB, jioID int64, surfaceID string) (*domain.SharedMessage, error) {
	m := &domain.SharedMessage{JioID: jioID, SurfaceID: surfaceID}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListSharedMessages returns every shared-surface registration of a jio in
// insertion order.
func ListSharedMessages(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.SharedMessage, error) {
	var out []domain.SharedMessage
	err := db.WithContext(ctx).
		Where("jio_id = ?", jioID).
		Order("id").
		Find(&out).Error
	return out, err
}
