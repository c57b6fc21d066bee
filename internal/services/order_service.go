// Package services: OrderService
//
// This file implements the OrderService, which manages participant orders
// inside a jio: the idempotent ensure on first contact, item append and
// position-based removal, and the self-declared payment flag. Participant
// identity (display name, reachable chat) is refreshed through the same
// service because it always arrives on order-related interactions.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/domain"
)

// OrderRepo defines the repository contract required by OrderService.
type OrderRepo interface {
	// EnsureOrder get-or-creates the order for (jioID, userID).
	EnsureOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error)

	// GetOrder fetches an order with its user preloaded.
	GetOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error)

	// ListOrders returns all orders of a jio in insertion order.
	ListOrders(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.Order, error)

	// UpdateOrderFood replaces the encoded item column.
	UpdateOrderFood(ctx context.Context, db *gorm.DB, jioID, userID int64, food string) error

	// UpdateOrderPaid sets the payment flag.
	UpdateOrderPaid(ctx context.Context, db *gorm.DB, jioID, userID int64, paid domain.PaidStatus) error

	// UpdateOrderMessageID overwrites the participant surface address.
	UpdateOrderMessageID(ctx context.Context, db *gorm.DB, jioID, userID, messageID int64) error
}

// UserRepo defines the participant identity contract required by OrderService.
type UserRepo interface {
	// UpsertUser inserts or refreshes a participant row.
	UpsertUser(ctx context.Context, db *gorm.DB, id int64, displayName string, chatID int64) (*domain.User, error)

	// GetUser fetches a participant by ID.
	GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error)
}

// OrderService provides order-level operations within a jio.
type OrderService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the order repository used by this service.
	Repo OrderRepo
	// Users is the participant identity repository.
	Users UserRepo
	// Jios resolves the owning jio for closed-state checks.
	Jios JioRepo
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, r OrderRepo, users UserRepo, jios JioRepo) *OrderService {
	return &OrderService{DB: db, Repo: r, Users: users, Jios: jios}
}

// RegisterParticipant refreshes the participant's display name and reachable
// chat. Invoked on every interaction that carries identity info so rendered
// names never go stale.
func (s *OrderService) RegisterParticipant(ctx context.Context, id int64, displayName string, chatID int64) (*domain.User, error) {
	return s.Users.UpsertUser(ctx, s.DB, id, displayName, chatID)
}

// Ensure get-or-creates the participant's order in the jio. Calling it again
// for an existing pair returns the same record with its items untouched.
func (s *OrderService) Ensure(ctx context.Context, jioID, userID int64) (*domain.Order, error) {
	if _, err := s.jio(ctx, jioID); err != nil {
		return nil, err
	}
	return s.Repo.EnsureOrder(ctx, s.DB, jioID, userID)
}

// Get fetches the participant's order, mapping not-found to ErrOrderNotFound.
func (s *OrderService) Get(ctx context.Context, jioID, userID int64) (*domain.Order, error) {
	o, err := s.Repo.GetOrder(ctx, s.DB, jioID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// List returns all orders of the jio in insertion order.
func (s *OrderService) List(ctx context.Context, jioID int64) ([]domain.Order, error) {
	return s.Repo.ListOrders(ctx, s.DB, jioID)
}

// AddItem appends one item to the participant's order. Duplicates are
// allowed and insertion order is preserved. Fails with ErrJioClosed when the
// jio no longer accepts mutations.
func (s *OrderService) AddItem(ctx context.Context, jioID, userID int64, item string) (*domain.Order, error) {
	jio, err := s.jio(ctx, jioID)
	if err != nil {
		return nil, err
	}
	if jio.IsClosed() {
		return nil, ErrJioClosed
	}

	order, err := s.Repo.EnsureOrder(ctx, s.DB, jioID, userID)
	if err != nil {
		return nil, err
	}
	items := append(order.Items(), item)
	order.Food = domain.JoinItems(items)
	if err := s.Repo.UpdateOrderFood(ctx, s.DB, jioID, userID, order.Food); err != nil {
		return nil, err
	}
	return order, nil
}

// RemoveItem deletes the item at the given zero-based position. A position
// at or beyond the end of the list fails with ErrOutOfRange and leaves the
// list unchanged.
func (s *OrderService) RemoveItem(ctx context.Context, jioID, userID int64, pos int) (*domain.Order, error) {
	order, err := s.Get(ctx, jioID, userID)
	if err != nil {
		return nil, err
	}
	items := order.Items()
	if pos < 0 || pos >= len(items) {
		return nil, ErrOutOfRange
	}
	items = append(items[:pos], items[pos+1:]...)
	order.Food = domain.JoinItems(items)
	if err := s.Repo.UpdateOrderFood(ctx, s.DB, jioID, userID, order.Food); err != nil {
		return nil, err
	}
	return order, nil
}

// SetPaid records or retracts the participant's payment declaration. The
// order is ensured first because a participant may declare payment on a
// closed jio they joined but never filled in.
func (s *OrderService) SetPaid(ctx context.Context, jioID, userID int64, paid domain.PaidStatus) (*domain.Order, error) {
	order, err := s.Repo.EnsureOrder(ctx, s.DB, jioID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateOrderPaid(ctx, s.DB, jioID, userID, paid); err != nil {
		return nil, err
	}
	order.Paid = paid
	return order, nil
}

// SetMessageID overwrites the address of the participant's order surface.
func (s *OrderService) SetMessageID(ctx context.Context, jioID, userID, messageID int64) error {
	err := s.Repo.UpdateOrderMessageID(ctx, s.DB, jioID, userID, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func (s *OrderService) jio(ctx context.Context, jioID int64) (*domain.Jio, error) {
	jio, err := s.Jios.GetJio(ctx, s.DB, jioID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJioNotFound
	}
	return jio, err
}
