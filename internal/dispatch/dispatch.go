// Package dispatch routes inbound surface events to their handlers.
//
// The dispatcher is the single consumer of the inbound event stream. Events
// are handled strictly serially in arrival order (one goroutine, FIFO), which
// is what makes the storage layer's read-modify-write cycles safe without row
// locking. Every handler failure is contained at the event boundary: it is
// logged and the loop moves on.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/domain"
	"github.com/supperjio/jiobot/internal/flow"
	"github.com/supperjio/jiobot/internal/repo"
	"github.com/supperjio/jiobot/internal/services"
	"github.com/supperjio/jiobot/internal/surface"
)

// Dispatcher consumes inbound events and drives services, flows, and the
// sync engine.
type Dispatcher struct {
	DB     *gorm.DB
	Client surface.Client

	Jios       *services.JioService
	Orders     *services.OrderService
	Favourites *services.FavouriteService
	Syncer     *services.Syncer

	Flows    *flow.Store
	Cooldown *Cooldown

	// InboxTTL bounds how long processed update IDs are remembered for
	// webhook-redelivery dedup.
	InboxTTL time.Duration
}

// Config carries the dispatcher's tunables.
type Config struct {
	// CooldownRPS is the refill rate of per-(user, action) cooldown buckets.
	CooldownRPS float64
	// CooldownBurst is the bucket capacity.
	CooldownBurst int
	// InboxTTL is the retention of processed update IDs.
	InboxTTL time.Duration
}

// New wires a Dispatcher over the given database handle and surface client.
func New(db *gorm.DB, client surface.Client, cfg Config) *Dispatcher {
	jios := services.NewJioService(db, jioRepoShim{})
	orders := services.NewOrderService(db, orderRepoShim{}, userRepoShim{}, jioRepoShim{})
	return &Dispatcher{
		DB:         db,
		Client:     client,
		Jios:       jios,
		Orders:     orders,
		Favourites: services.NewFavouriteService(db, favouriteRepoShim{}),
		Syncer:     services.NewSyncer(db, client, jios, orders, shareRepoShim{}),
		Flows:      flow.NewStore(),
		Cooldown:   NewCooldown(cfg.CooldownRPS, cfg.CooldownBurst),
		InboxTTL:   cfg.InboxTTL,
	}
}

// Run consumes events until the channel closes or ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, events <-chan surface.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Handle(ctx, ev)
		}
	}
}

// Handle processes one event. Redelivered updates are acknowledged without
// re-running side effects; handler errors are logged and swallowed so one
// poisoned event cannot stall the stream.
func (d *Dispatcher) Handle(ctx context.Context, ev surface.Event) {
	if ev.UpdateID != 0 {
		seen, err := repo.SeenUpdate(ctx, d.DB, ev.UpdateID, time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Int64("update_id", ev.UpdateID).Msg("inbox lookup failed")
		}
		if seen {
			d.acknowledge(ctx, ev)
			return
		}
		if err := repo.MarkUpdate(ctx, d.DB, ev.UpdateID, d.InboxTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			log.Error().Err(err).Int64("update_id", ev.UpdateID).Msg("inbox mark failed")
		}
		if err := repo.PruneInbox(ctx, d.DB, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("inbox prune failed")
		}
	}

	if err := d.route(ctx, ev); err != nil {
		log.Error().Err(err).Int64("update_id", ev.UpdateID).Msg("event handling failed")
	}
}

// acknowledge answers a redelivered callback so the remote control spinner
// stops, without re-running the action.
func (d *Dispatcher) acknowledge(ctx context.Context, ev surface.Event) {
	if ev.Callback != nil {
		if err := d.Client.Answer(ctx, ev.Callback.ID, ""); err != nil {
			log.Error().Err(err).Msg("unable to acknowledge redelivered callback")
		}
	}
}

func (d *Dispatcher) route(ctx context.Context, ev surface.Event) error {
	switch {
	case ev.Command != nil:
		return d.handleCommand(ctx, ev.Command)
	case ev.Text != nil:
		return d.handleText(ctx, ev.Text)
	case ev.Callback != nil:
		return d.handleCallback(ctx, ev.Callback)
	case ev.ShareQuery != nil:
		return d.handleShareQuery(ctx, ev.ShareQuery)
	case ev.SharePublished != nil:
		return d.handleSharePublished(ctx, ev.SharePublished)
	}
	log.Warn().Int64("update_id", ev.UpdateID).Msg("event carries no payload")
	return nil
}

// handleCallback decodes the token once and routes the typed action.
func (d *Dispatcher) handleCallback(ctx context.Context, press *surface.CallbackPress) error {
	kind, args := callback.Decode(press.Data)

	if needsCooldown(kind) && !d.Cooldown.Allow(press.From.ID, kind) {
		return d.Client.Answer(ctx, press.ID, "Slow down! Please wait a moment before trying again.")
	}

	switch kind {
	case callback.CreateJio:
		return d.startCreateFlow(ctx, press)
	case callback.AmendDescription:
		return d.startAmendFlow(ctx, press, args)
	case callback.CancelAmendDescription:
		return d.cancelAmendFlow(ctx, press, args)
	case callback.CloseJio:
		return d.closeJio(ctx, press, args)
	case callback.ReopenJio:
		return d.reopenJio(ctx, press, args)
	case callback.ViewCreatedJios:
		return d.viewCreatedJios(ctx, press)
	case callback.ViewJoinedJios:
		return d.viewJoinedJios(ctx, press)
	case callback.CancelView:
		return d.cancelView(ctx, press)
	case callback.ResendMainMessage:
		return d.resendMainMessage(ctx, press, args)
	case callback.OwnerAddOrder:
		return d.joinJio(ctx, press, args)
	case callback.AddOrder:
		return d.startFoodFlow(ctx, press, args)
	case callback.DeleteOrder:
		return d.deleteOrderMenu(ctx, press, args)
	case callback.CancelOrderAction:
		return d.cancelOrderAction(ctx, press, args)
	case callback.DeleteOrderItem:
		return d.deleteOrderItem(ctx, press, args)
	case callback.RefreshOrder:
		return d.refreshOrder(ctx, press, args)
	case callback.CreateOrderingList:
		return d.createOrderingList(ctx, press, args)
	case callback.Back:
		return d.backToHostView(ctx, press, args)
	case callback.PingAllUnpaid:
		return d.pingUnpaid(ctx, press, args)
	case callback.DeclarePayment:
		return d.setPaid(ctx, press, args, domain.Paid)
	case callback.UndoPayment:
		return d.setPaid(ctx, press, args, domain.NotPaid)
	case callback.FavouriteItem:
		return d.favouriteMenu(ctx, press, args)
	case callback.ConfirmFavourite:
		return d.confirmFavourite(ctx, press, args)
	case callback.RemoveFavourite:
		return d.removeFavourite(ctx, press, args)
	case callback.MenuFavourites:
		return d.favouritesOverview(ctx, press.From, press.ChatID, press.ID)
	case callback.ViewFavouriteItems:
		return d.viewRestaurantFavourites(ctx, press, args)
	case callback.MenuRemoveFavourite:
		return d.confirmDeleteFavourite(ctx, press, args)
	case callback.MenuConfirmDeleteFavourite:
		return d.deleteMenuFavourite(ctx, press, args)
	case callback.Nop:
		return d.Client.Answer(ctx, press.ID, "")
	}

	// Unknown or not-yet-wired token: acknowledge so the control stops
	// spinning, and keep the raw token in the log for diagnosis.
	log.Error().Str("data", press.Data).Msg("unexpected callback data received")
	return d.Client.Answer(ctx, press.ID, "This functionality is currently not implemented!")
}

// needsCooldown marks the API-heavy actions that fan out to many surfaces.
func needsCooldown(kind callback.Kind) bool {
	switch kind {
	case callback.CloseJio, callback.ReopenJio, callback.ResendMainMessage,
		callback.PingAllUnpaid, callback.RefreshOrder:
		return true
	}
	return false
}

// ----- Repository shims -----
//
// The services define narrow repository interfaces; these shims adapt the
// repo package's free functions to them so the wiring stays mockable in
// service tests.

type jioRepoShim struct{}

func (jioRepoShim) CreateJio(ctx context.Context, db *gorm.DB, ownerID int64, restaurant, description string) (*domain.Jio, error) {
	return repo.CreateJio(ctx, db, ownerID, restaurant, description)
}

func (jioRepoShim) GetJio(ctx context.Context, db *gorm.DB, id int64) (*domain.Jio, error) {
	return repo.GetJio(ctx, db, id)
}

func (jioRepoShim) UpdateJioStatus(ctx context.Context, db *gorm.DB, id int64, status domain.JioStatus) error {
	return repo.UpdateJioStatus(ctx, db, id, status)
}

func (jioRepoShim) UpdateJioDescription(ctx context.Context, db *gorm.DB, id int64, description string) error {
	return repo.UpdateJioDescription(ctx, db, id, description)
}

func (jioRepoShim) UpdateJioHostAddress(ctx context.Context, db *gorm.DB, id, chatID, messageID int64) error {
	return repo.UpdateJioHostAddress(ctx, db, id, chatID, messageID)
}

func (jioRepoShim) ListCreatedJios(ctx context.Context, db *gorm.DB, ownerID int64, limit int, includeClosed bool) ([]domain.Jio, error) {
	return repo.ListCreatedJios(ctx, db, ownerID, limit, includeClosed)
}

func (jioRepoShim) ListJoinedJios(ctx context.Context, db *gorm.DB, userID int64, limit int) ([]domain.Jio, error) {
	return repo.ListJoinedJios(ctx, db, userID, limit)
}

type orderRepoShim struct{}

func (orderRepoShim) EnsureOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error) {
	return repo.EnsureOrder(ctx, db, jioID, userID)
}

func (orderRepoShim) GetOrder(ctx context.Context, db *gorm.DB, jioID, userID int64) (*domain.Order, error) {
	return repo.GetOrder(ctx, db, jioID, userID)
}

func (orderRepoShim) ListOrders(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.Order, error) {
	return repo.ListOrders(ctx, db, jioID)
}

func (orderRepoShim) UpdateOrderFood(ctx context.Context, db *gorm.DB, jioID, userID int64, food string) error {
	return repo.UpdateOrderFood(ctx, db, jioID, userID, food)
}

func (orderRepoShim) UpdateOrderPaid(ctx context.Context, db *gorm.DB, jioID, userID int64, paid domain.PaidStatus) error {
	return repo.UpdateOrderPaid(ctx, db, jioID, userID, paid)
}

func (orderRepoShim) UpdateOrderMessageID(ctx context.Context, db *gorm.DB, jioID, userID, messageID int64) error {
	return repo.UpdateOrderMessageID(ctx, db, jioID, userID, messageID)
}

type userRepoShim struct{}

func (userRepoShim) UpsertUser(ctx context.Context, db *gorm.DB, id int64, displayName string, chatID int64) (*domain.User, error) {
	return repo.UpsertUser(ctx, db, id, displayName, chatID)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	return repo.GetUser(ctx, db, id)
}

type favouriteRepoShim struct{}

func (favouriteRepoShim) CountFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) (int64, error) {
	return repo.CountFavourites(ctx, db, userID, restaurant)
}

func (favouriteRepoShim) FavouriteExists(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (bool, error) {
	return repo.FavouriteExists(ctx, db, userID, restaurant, food)
}

func (favouriteRepoShim) CreateFavourite(ctx context.Context, db *gorm.DB, userID int64, restaurant, food string) (*domain.FavouriteItem, error) {
	return repo.CreateFavourite(ctx, db, userID, restaurant, food)
}

func (favouriteRepoShim) GetFavourite(ctx context.Context, db *gorm.DB, id int64) (*domain.FavouriteItem, error) {
	return repo.GetFavourite(ctx, db, id)
}

func (favouriteRepoShim) DeleteFavourite(ctx context.Context, db *gorm.DB, id, userID int64) error {
	return repo.DeleteFavourite(ctx, db, id, userID)
}

func (favouriteRepoShim) ListFavourites(ctx context.Context, db *gorm.DB, userID int64, restaurant string) ([]domain.FavouriteItem, error) {
	return repo.ListFavourites(ctx, db, userID, restaurant)
}

func (favouriteRepoShim) ListFavouriteRestaurants(ctx context.Context, db *gorm.DB, userID int64) ([]string, error) {
	return repo.ListFavouriteRestaurants(ctx, db, userID)
}

type shareRepoShim struct{}

func (shareRepoShim) CreateSharedMessage(ctx context.Context, db *gorm.DB, jioID int64, surfaceID string) (*domain.SharedMessage, error) {
	return repo.CreateSharedMessage(ctx, db, jioID, surfaceID)
}

func (shareRepoShim) ListSharedMessages(ctx context.Context, db *gorm.DB, jioID int64) ([]domain.SharedMessage, error) {
	return repo.ListSharedMessages(ctx, db, jioID)
}
