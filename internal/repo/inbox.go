// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides helpers for the inbox dedup model used
// to acknowledge webhook redeliveries without re-running side effects.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// ErrDuplicate indicates that an inbox record already exists for the update.
var ErrDuplicate = errors.New("duplicate")

// SeenUpdate reports whether updateID has a non-expired inbox record.
func SeenUpdate(ctx context.Context, db *gorm.DB, updateID int64, now time.Time) (bool, error) {
	var rec domain.InboxRecord
	err := db.WithContext(ctx).
		Where("update_id = ? AND expires_at > ?", updateID, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// MarkUpdate records updateID as processed for ttl. Returns ErrDuplicate when
// the record already exists, which callers treat the same as SeenUpdate=true.
func MarkUpdate(ctx context.Context, db *gorm.DB, updateID int64, ttl time.Duration) error {
	now := time.Now().UTC()
	rec := &domain.InboxRecord{
		UpdateID:  updateID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// PruneInbox drops expired inbox records. Invoked opportunistically from the
// dispatch loop; there is no background sweeper.
func PruneInbox(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.InboxRecord{}).Error
}
