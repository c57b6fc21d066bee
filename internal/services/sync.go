// Package services: Syncer
//
// This file implements the multi-surface sync engine. A jio is displayed on
// up to three kinds of surface at once (the host control message, any number
// of shared group copies, and one private message per participant), and every
// state change pushes a fresh render to the affected surfaces. Delivery is
// best effort: each push is independent, a failed push is logged and counted
// but never stops the remaining pushes, and no push failure propagates to
// the caller.
package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/domain"
	"github.com/supperjio/jiobot/internal/render"
	"github.com/supperjio/jiobot/internal/surface"
)

// pushFailures counts surface pushes that the remote side rejected, by
// surface kind. Cardinality is fixed: host, shared, participant.
var pushFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jiobot_surface_push_failures_total",
		Help: "Total number of failed surface pushes during resync.",
	},
	[]string{"surface"},
)

func init() {
	prometheus.MustRegister(pushFailures)
}

// ShareRepo defines the shared-surface registry contract required by Syncer.
type ShareRepo interface {
	// CreateSharedMessage registers one shared-surface address for a jio.
	CreateSharedMessage(ctx context.Context, db *gorm.DB, jioID int64, surfaceID string) (*domain.SharedMessage, error)

	// ListSharedMessages returns a jio's shared-surface registrations.
	ListSharedMessages(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.SharedMessage, error)
}

// Syncer pushes fresh renders of a jio to its surfaces.
type Syncer struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Client is the remote surface capability.
	Client surface.Client
	// Jios persists host surface addresses after resends.
	Jios *JioService
	// Orders reads order state and persists participant surface addresses.
	Orders *OrderService
	// Shares is the shared-surface registry.
	Shares ShareRepo
}

// NewSyncer constructs a Syncer.
func NewSyncer(db *gorm.DB, client surface.Client, jios *JioService, orders *OrderService, shares ShareRepo) *Syncer {
	return &Syncer{DB: db, Client: client, Jios: jios, Orders: orders, Shares: shares}
}

// RegisterShare records a newly published shared surface for the jio.
func (s *Syncer) RegisterShare(ctx context.Context, jioID int64, surfaceID string) error {
	_, err := s.Shares.CreateSharedMessage(ctx, s.DB, jioID, surfaceID)
	return err
}

// SyncHost re-renders the host control surface in place. A jio whose host
// surface has never been sent is skipped silently.
func (s *Syncer) SyncHost(ctx context.Context, jio *domain.Jio, orders []domain.Order) {
	if jio.HostChatID == nil || jio.HostMessageID == nil {
		return
	}
	addr := surface.Address{ChatID: *jio.HostChatID, MessageID: *jio.HostMessageID}
	if err := s.Client.Edit(ctx, addr, render.JioText(jio, orders), render.HostKeyboard(jio)); err != nil {
		pushFailures.WithLabelValues("host").Inc()
		log.Error().Err(err).Int64("jio_id", jio.ID).Msg("unable to edit host surface")
	}
}

// SyncShared re-renders every shared group copy of the jio. Each copy is
// pushed independently; one failing copy does not stop the rest.
func (s *Syncer) SyncShared(ctx context.Context, jio *domain.Jio, orders []domain.Order) {
	shares, err := s.Shares.ListSharedMessages(ctx, s.DB, jio.ID)
	if err != nil {
		log.Error().Err(err).Int64("jio_id", jio.ID).Msg("unable to list shared surfaces")
		return
	}

	text := render.JioText(jio, orders)
	keyboard := render.SharedKeyboard(jio, s.Client.DeepLink(callback.DeepLinkPayload(jio.ID)))
	for _, share := range shares {
		if err := s.Client.EditShared(ctx, share.SurfaceID, text, keyboard); err != nil {
			pushFailures.WithLabelValues("shared").Inc()
			log.Error().Err(err).
				Int64("jio_id", jio.ID).
				Str("surface_id", share.SurfaceID).
				Msg("unable to edit shared surface")
		}
	}
}

// SyncParticipant re-renders one participant's private order surface in
// place. Orders whose surface has never been sent are skipped.
func (s *Syncer) SyncParticipant(ctx context.Context, jio *domain.Jio, order *domain.Order) {
	if order.MessageID == nil {
		return
	}
	addr := surface.Address{ChatID: order.User.ChatID, MessageID: *order.MessageID}
	if err := s.Client.Edit(ctx, addr, render.OrderText(jio, order), render.OrderKeyboard(jio, order)); err != nil {
		pushFailures.WithLabelValues("participant").Inc()
		log.Error().Err(err).
			Int64("jio_id", jio.ID).
			Int64("user_id", order.UserID).
			Msg("unable to edit participant surface")
	}
}

// SyncParticipants re-renders every participant surface of the jio.
func (s *Syncer) SyncParticipants(ctx context.Context, jio *domain.Jio, orders []domain.Order) {
	for i := range orders {
		s.SyncParticipant(ctx, jio, &orders[i])
	}
}

// SyncConsolidated re-renders the host and shared surfaces only. Used after
// changes that participants already see on their own surface, such as an
// item append the participant just confirmed.
func (s *Syncer) SyncConsolidated(ctx context.Context, jio *domain.Jio) {
	orders, err := s.Orders.List(ctx, jio.ID)
	if err != nil {
		log.Error().Err(err).Int64("jio_id", jio.ID).Msg("unable to list orders for resync")
		return
	}
	s.SyncHost(ctx, jio, orders)
	s.SyncShared(ctx, jio, orders)
}

// SyncAll re-renders every surface of the jio: host, shared copies, and all
// participant surfaces.
func (s *Syncer) SyncAll(ctx context.Context, jio *domain.Jio) {
	orders, err := s.Orders.List(ctx, jio.ID)
	if err != nil {
		log.Error().Err(err).Int64("jio_id", jio.ID).Msg("unable to list orders for resync")
		return
	}
	s.SyncHost(ctx, jio, orders)
	s.SyncShared(ctx, jio, orders)
	s.SyncParticipants(ctx, jio, orders)
}

// ResendHost strips the controls off the previous host message, sends a
// fresh one at the bottom of the host's chat, and overwrites the stored
// address. The strip is tolerated to fail: the old message may be gone.
func (s *Syncer) ResendHost(ctx context.Context, jio *domain.Jio, chatID int64) error {
	if jio.HostChatID != nil && jio.HostMessageID != nil {
		old := surface.Address{ChatID: *jio.HostChatID, MessageID: *jio.HostMessageID}
		if err := s.Client.ClearControls(ctx, old); err != nil {
			log.Error().Err(err).Int64("jio_id", jio.ID).Msg("unable to clear previous host surface")
		}
	}

	orders, err := s.Orders.List(ctx, jio.ID)
	if err != nil {
		return err
	}
	addr, err := s.Client.Send(ctx, chatID, render.JioText(jio, orders), render.HostKeyboard(jio))
	if err != nil {
		return err
	}
	if err := s.Jios.SetHostAddress(ctx, jio.ID, addr.ChatID, addr.MessageID); err != nil {
		return err
	}
	jio.HostChatID = &addr.ChatID
	jio.HostMessageID = &addr.MessageID
	return nil
}

// SendParticipant sends a fresh private order surface to the participant and
// overwrites the stored address. The previous message, if any, keeps its
// stale content; only the newest copy is tracked.
func (s *Syncer) SendParticipant(ctx context.Context, jio *domain.Jio, order *domain.Order) error {
	addr, err := s.Client.Send(ctx, order.User.ChatID, render.OrderText(jio, order), render.OrderKeyboard(jio, order))
	if err != nil {
		return err
	}
	if err := s.Orders.SetMessageID(ctx, jio.ID, order.UserID, addr.MessageID); err != nil {
		return err
	}
	order.MessageID = &addr.MessageID
	return nil
}
