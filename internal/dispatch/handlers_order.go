// Participant-side actions: joining a jio, the item entry flow, position-based
// item deletion, the participant surface refresh, and payment declaration.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/domain"
	"github.com/supperjio/jiobot/internal/render"
	"github.com/supperjio/jiobot/internal/services"
	"github.com/supperjio/jiobot/internal/surface"
)

// interestedUser handles a deep-link /start: a participant clicked "Add
// Order" on a shared jio. Their identity is refreshed, an order row is
// ensured, and they get their private order surface.
func (d *Dispatcher) interestedUser(ctx context.Context, cmd *surface.Command, jioID int64) error {
	user, err := d.Orders.RegisterParticipant(ctx, cmd.From.ID, cmd.From.DisplayName, cmd.ChatID)
	if err != nil {
		return err
	}

	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		if errors.Is(err, services.ErrJioNotFound) {
			log.Warn().Int64("jio_id", jioID).Msg("deep link to missing jio")
			return nil
		}
		return err
	}

	order, err := d.Orders.Ensure(ctx, jioID, cmd.From.ID)
	if err != nil {
		return err
	}
	order.User = *user
	return d.Syncer.SendParticipant(ctx, jio, order)
}

// joinJio is the callback twin of interestedUser, used by the owner's "Add
// Order" control and by the joined-jios listing.
func (d *Dispatcher) joinJio(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}

	user, err := d.Orders.RegisterParticipant(ctx, press.From.ID, press.From.DisplayName, press.ChatID)
	if err != nil {
		return err
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	order, err := d.Orders.Ensure(ctx, jioID, press.From.ID)
	if err != nil {
		return err
	}
	order.User = *user

	if err := d.Syncer.SendParticipant(ctx, jio, order); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) startFoodFlow(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	if jio.IsClosed() {
		return d.Client.Answer(ctx, press.ID, "The jio is closed!")
	}

	favourites, err := d.Favourites.ListByRestaurant(ctx, press.From.ID, jio.Restaurant)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"Adding order for Order #%d - %s\n\nPlease type out a single order, or choose from your favourites below.",
		jio.ID, jio.Restaurant,
	)
	if _, err := d.Client.SendPrompt(ctx, press.ChatID, message, render.FavouriteRows(services.Foods(favourites))); err != nil {
		return err
	}

	d.Flows.Begin(press.From.ID, flowStateAwaitingFood(jioID))
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) deleteOrderMenu(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	if jio.IsClosed() {
		return d.Client.Answer(ctx, press.ID, "The jio is closed!")
	}

	order, err := d.Orders.Get(ctx, jioID, press.From.ID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	buttons := []surface.Button{{
		Label:    render.CancelSentinel,
		Callback: callback.EncodeJio(callback.CancelOrderAction, jioID),
	}}
	for idx, food := range order.Items() {
		buttons = append(buttons, surface.Button{
			Label:    food,
			Callback: callback.EncodeJio(callback.DeleteOrderItem, jioID, strconv.Itoa(idx)),
		})
	}

	if err := d.Client.Edit(ctx, press.Message, "Please select which food order to delete:", surface.Column(buttons...)); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

// cancelOrderAction restores the pressed message to the participant's order
// surface, backing out of whatever sub-menu replaced it.
func (d *Dispatcher) cancelOrderAction(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	order, err := d.Orders.Get(ctx, jioID, press.From.ID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	d.Syncer.SyncParticipant(ctx, jio, order)
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) deleteOrderItem(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok || len(args) < 2 {
		return d.Client.Answer(ctx, press.ID, "")
	}
	pos, err := strconv.Atoi(args[1])
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	if _, err := d.Orders.RemoveItem(ctx, jioID, press.From.ID, pos); err != nil {
		if errors.Is(err, services.ErrOutOfRange) || errors.Is(err, services.ErrOrderNotFound) {
			return d.Client.Answer(ctx, press.ID, "")
		}
		return err
	}

	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return err
	}
	order, err := d.Orders.Get(ctx, jioID, press.From.ID)
	if err != nil {
		return err
	}

	d.Syncer.SyncParticipant(ctx, jio, order)
	if err := d.Client.Answer(ctx, press.ID, ""); err != nil {
		log.Error().Err(err).Msg("unable to answer delete press")
	}
	d.Syncer.SyncConsolidated(ctx, jio)
	return nil
}

// refreshOrder resends the participant's order surface to the bottom of
// their chat.
func (d *Dispatcher) refreshOrder(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	order, err := d.Orders.Get(ctx, jioID, press.From.ID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	if order.MessageID != nil {
		old := surface.Address{ChatID: order.User.ChatID, MessageID: *order.MessageID}
		if err := d.Client.ClearControls(ctx, old); err != nil {
			log.Error().Err(err).Int64("user_id", order.UserID).Msg("unable to clear stale order surface")
		}
	}
	if err := d.Syncer.SendParticipant(ctx, jio, order); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

// setPaid flips the payment declaration and refreshes the surfaces the host
// and groups see. Other participants' surfaces are left alone.
func (d *Dispatcher) setPaid(ctx context.Context, press *surface.CallbackPress, args []string, paid domain.PaidStatus) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}

	if _, err := d.Orders.SetPaid(ctx, jioID, press.From.ID, paid); err != nil {
		if errors.Is(err, services.ErrJioNotFound) {
			return d.Client.Answer(ctx, press.ID, "")
		}
		return err
	}

	if err := d.Client.ClearControls(ctx, press.Message); err != nil {
		log.Error().Err(err).Int64("jio_id", jioID).Msg("unable to clear old order surface")
	}

	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return err
	}
	order, err := d.Orders.Get(ctx, jioID, press.From.ID)
	if err != nil {
		return err
	}
	if err := d.Syncer.SendParticipant(ctx, jio, order); err != nil {
		return err
	}
	if err := d.Client.Answer(ctx, press.ID, ""); err != nil {
		log.Error().Err(err).Msg("unable to answer payment press")
	}

	d.Syncer.SyncConsolidated(ctx, jio)
	return nil
}
