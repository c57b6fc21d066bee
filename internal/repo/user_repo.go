// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for participants.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/supperjio/jiobot/internal/domain"
)

// UpsertUser creates or refreshes a participant row. Called on every inbound
// interaction carrying identity info, which is how display names and
// reachable chat addresses are kept from going stale.
func UpsertUser(ctx context.Context, db *gorm.DB, id int64, displayName string, chatID int64) (*domain.User, error) {
	u := &domain.User{ID: id, DisplayName: displayName, ChatID: chatID}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "chat_id"}),
		}).
		Create(u).Error
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a participant by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
