// Package services: JioService
//
// This file implements the JioService, which manages the lifecycle of jios:
// creation with restaurant validation, the open/closed status toggle, and
// description edits. Status transitions that would be no-ops (closing an
// already-closed jio, reopening an open one) are reported through sentinel
// errors without touching storage, so the dispatch layer can answer with a
// notice instead of resyncing every surface.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// JioRepo defines the repository contract required by JioService.
type JioRepo interface {
	// CreateJio inserts a new open jio owned by ownerID.
	CreateJio(ctx context.Context, db *gorm.DB, ownerID int64, restaurant, description string) (*domain.Jio, error)

	// GetJio fetches a jio by ID.
	GetJio(ctx context.Context, db *gorm.DB, id int64) (*domain.Jio, error)

	// UpdateJioStatus flips the open/closed status.
	UpdateJioStatus(ctx context.Context, db *gorm.DB, id int64, status domain.JioStatus) error

	// UpdateJioDescription replaces the description text.
	UpdateJioDescription(ctx context.Context, db *gorm.DB, id int64, description string) error

	// UpdateJioHostAddress overwrites the host surface address.
	UpdateJioHostAddress(ctx context.Context, db *gorm.DB, id, chatID, messageID int64) error

	// ListCreatedJios returns the owner's jios, newest first.
	ListCreatedJios(ctx context.Context, db *gorm.DB, ownerID int64, limit int, includeClosed bool) ([]domain.Jio, error)

	// ListJoinedJios returns jios the user holds an order in, newest first.
	ListJoinedJios(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.Jio, error)
}

// ListLimit caps jio listings; remote keyboards cannot hold unbounded rows.
const ListLimit = 50

// JioService provides jio lifecycle operations.
type JioService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the jio repository used by this service.
	Repo JioRepo
}

// NewJioService constructs a JioService.
func NewJioService(db *gorm.DB, r JioRepo) *JioService {
	return &JioService{DB: db, Repo: r}
}

// Create validates the restaurant name and inserts a new open jio.
// Names are NFC-normalized and trimmed before the length check so that a
// visually short name cannot sneak past the limit via decomposed runes.
func (s *JioService) Create(ctx context.Context, ownerID int64, restaurant, description string) (*domain.Jio, error) {
	restaurant = norm.NFC.String(strings.TrimSpace(restaurant))
	if utf8.RuneCountInString(restaurant) > domain.MaxRestaurantLen {
		return nil, ErrRestaurantTooLong
	}
	return s.Repo.CreateJio(ctx, s.DB, ownerID, restaurant, description)
}

// Get fetches a jio, mapping the repository's not-found to ErrJioNotFound.
func (s *JioService) Get(ctx context.Context, id int64) (*domain.Jio, error) {
	jio, err := s.Repo.GetJio(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJioNotFound
	}
	return jio, err
}

// Close transitions the jio to closed. When the jio is already closed it
// returns the jio together with ErrAlreadyClosed and performs no write.
func (s *JioService) Close(ctx context.Context, id int64) (*domain.Jio, error) {
	jio, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if jio.IsClosed() {
		return jio, ErrAlreadyClosed
	}
	if err := s.Repo.UpdateJioStatus(ctx, s.DB, id, domain.JioClosed); err != nil {
		return nil, err
	}
	jio.Status = domain.JioClosed
	return jio, nil
}

// Reopen transitions the jio back to open. When the jio is already open it
// returns the jio together with ErrAlreadyOpen and performs no write.
func (s *JioService) Reopen(ctx context.Context, id int64) (*domain.Jio, error) {
	jio, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !jio.IsClosed() {
		return jio, ErrAlreadyOpen
	}
	if err := s.Repo.UpdateJioStatus(ctx, s.DB, id, domain.JioOpen); err != nil {
		return nil, err
	}
	jio.Status = domain.JioOpen
	return jio, nil
}

// EditDescription replaces the jio's description text.
func (s *JioService) EditDescription(ctx context.Context, id int64, description string) (*domain.Jio, error) {
	jio, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateJioDescription(ctx, s.DB, id, description); err != nil {
		return nil, err
	}
	jio.Description = description
	return jio, nil
}

// SetHostAddress overwrites the address of the host control message. Called
// after every send of the host surface; the previous address is discarded.
func (s *JioService) SetHostAddress(ctx context.Context, id, chatID, messageID int64) error {
	err := s.Repo.UpdateJioHostAddress(ctx, s.DB, id, chatID, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrJioNotFound
	}
	return err
}

// ListCreated returns the owner's jios, newest first, closed included.
func (s *JioService) ListCreated(ctx context.Context, ownerID int64) ([]domain.Jio, error) {
	return s.Repo.ListCreatedJios(ctx, s.DB, ownerID, ListLimit, true)
}

// ListJoined returns jios the user has joined, newest first.
func (s *JioService) ListJoined(ctx context.Context, userID int64) ([]domain.Jio, error) {
	return s.Repo.ListJoinedJios(ctx, s.DB, userID, ListLimit)
}
