// Host-side actions: the creation flow entry, description amendment, the
// open/close toggle, host message resends, the consolidated ordering list,
// the unpaid ping, and the inline share flow.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/render"
	"github.com/supperjio/jiobot/internal/services"
	"github.com/supperjio/jiobot/internal/surface"
)

func (d *Dispatcher) startCreateFlow(ctx context.Context, press *surface.CallbackPress) error {
	d.Flows.Begin(press.From.ID, flowStateAwaitingRestaurant())

	message := "You are creating a new supper jio order." +
		"Please select the restaurant you are ordering from, " +
		"or type out the name of the restaurant.\n\n" +
		"The name of the restaurant should not exceed 32 characters."
	replies := surface.Reply{
		{"McDonalds", "Al Amaan"},
		{render.CancelSentinel},
	}
	if _, err := d.Client.SendPrompt(ctx, press.ChatID, message, replies); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) startAmendFlow(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	if err := d.Client.ClearControls(ctx, press.Message); err != nil {
		log.Error().Err(err).Int64("jio_id", jioID).Msg("unable to clear host controls for amend")
	}

	message := fmt.Sprintf(
		"Editing description for <b>Order %d: %s</b>.\n\nCurrent description:\n%s",
		jio.ID, jio.Restaurant, jio.Description,
	)
	cancel := surface.Column(surface.Button{
		Label:    render.CancelSentinel,
		Callback: callback.EncodeJio(callback.CancelAmendDescription, jioID),
	})
	addr, err := d.Client.Send(ctx, press.ChatID, message, cancel)
	if err != nil {
		return err
	}

	d.Flows.Begin(press.From.ID, flowStateAwaitingDescription(jioID, addr))
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) cancelAmendFlow(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	d.Flows.Clear(press.From.ID)

	// The cancel control sits on the amend prompt itself.
	if err := d.Client.ClearControls(ctx, press.Message); err != nil {
		log.Error().Err(err).Int64("jio_id", jioID).Msg("unable to clear amend prompt")
	}

	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	if err := d.Syncer.ResendHost(ctx, jio, press.ChatID); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) closeJio(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}

	jio, err := d.Jios.Close(ctx, jioID)
	switch {
	case errors.Is(err, services.ErrAlreadyClosed):
		return d.Client.Answer(ctx, press.ID, "Jio is already closed.")
	case err != nil:
		return err
	}

	d.Syncer.SyncAll(ctx, jio)
	return d.Client.Answer(ctx, press.ID, "Jio has been closed!")
}

func (d *Dispatcher) reopenJio(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}

	jio, err := d.Jios.Reopen(ctx, jioID)
	switch {
	case errors.Is(err, services.ErrAlreadyOpen):
		return d.Client.Answer(ctx, press.ID, "Jio is already opened.")
	case err != nil:
		return err
	}

	d.Syncer.SyncAll(ctx, jio)
	return d.Client.Answer(ctx, press.ID, "Jio has been opened!")
}

// resendMainMessage pushes a fresh host control message to the bottom of the
// host's chat. The pressed message may be the old host message or a listing;
// either way its controls are stripped so stale buttons cannot linger.
func (d *Dispatcher) resendMainMessage(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	stored := surface.Address{}
	if jio.HostChatID != nil && jio.HostMessageID != nil {
		stored = surface.Address{ChatID: *jio.HostChatID, MessageID: *jio.HostMessageID}
	}
	if press.Message != stored {
		if err := d.Client.ClearControls(ctx, press.Message); err != nil {
			log.Error().Err(err).Int64("jio_id", jioID).Msg("unable to clear pressed message controls")
		}
	}

	if err := d.Syncer.ResendHost(ctx, jio, press.ChatID); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) createOrderingList(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	orders, err := d.Orders.List(ctx, jioID)
	if err != nil {
		return err
	}

	text := render.ConsolidatedText(orders)
	if err := d.Client.Edit(ctx, press.Message, text, render.ConsolidatedKeyboard(jioID)); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) backToHostView(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	orders, err := d.Orders.List(ctx, jioID)
	if err != nil {
		return err
	}
	d.Syncer.SyncHost(ctx, jio, orders)
	return d.Client.Answer(ctx, press.ID, "")
}

// pingUnpaid nudges every participant with an unpaid order and reports back
// to the host who could and could not be reached.
func (d *Dispatcher) pingUnpaid(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok {
		return d.Client.Answer(ctx, press.ID, "")
	}
	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	orders, err := d.Orders.List(ctx, jioID)
	if err != nil {
		return err
	}

	var pinged, notPinged []string
	for i := range orders {
		order := &orders[i]
		if order.HasPaid() {
			notPinged = append(notPinged, order.User.DisplayName)
			continue
		}
		if len(order.Items()) == 0 {
			continue
		}

		if order.MessageID != nil {
			old := surface.Address{ChatID: order.User.ChatID, MessageID: *order.MessageID}
			if err := d.Client.ClearControls(ctx, old); err != nil {
				log.Error().Err(err).
					Int64("user_id", order.UserID).
					Msg("unable to clear stale order surface before ping")
			}
		}

		if _, err := d.Client.Send(ctx, order.User.ChatID, "Reminder to pay for your food!", nil); err != nil {
			log.Error().Err(err).Int64("user_id", order.UserID).Msg("unable to ping participant")
			notPinged = append(notPinged, order.User.DisplayName+"(Error: Unable to send message)")
			continue
		}
		if err := d.Syncer.SendParticipant(ctx, jio, order); err != nil {
			log.Error().Err(err).Int64("user_id", order.UserID).Msg("unable to resend order surface after ping")
		}
		pinged = append(pinged, order.User.DisplayName)
	}

	if err := d.Client.Answer(ctx, press.ID, ""); err != nil {
		log.Error().Err(err).Msg("unable to answer ping press")
	}

	report := "Pinged users:\n" + orNone(pinged) +
		"\n\nUsers not pinged:\n" + orNone(notPinged)
	_, err = d.Client.Send(ctx, press.ChatID, report, nil)
	return err
}

func orNone(names []string) string {
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, "\n")
}

// handleShareQuery answers the inline share flow. Only the jio's owner gets
// a shareable result; everyone else sees nothing.
func (d *Dispatcher) handleShareQuery(ctx context.Context, q *surface.ShareQuery) error {
	jioID, ok := callback.ParseDeepLink(q.Query)
	if !ok {
		return nil
	}

	jio, err := d.Jios.Get(ctx, jioID)
	if err != nil || jio.OwnerID != q.From.ID {
		return d.Client.AnswerShare(ctx, q.ID, nil)
	}

	orders, err := d.Orders.List(ctx, jioID)
	if err != nil {
		return err
	}
	payload := callback.DeepLinkPayload(jioID)
	results := []surface.ShareResult{{
		ID:          payload,
		Title:       fmt.Sprintf("Order %d", jio.ID),
		Description: fmt.Sprintf("Jio for %s", jio.Restaurant),
		Text:        render.JioText(jio, orders),
		Keyboard:    render.SharedKeyboard(jio, d.Client.DeepLink(payload)),
	}}
	return d.Client.AnswerShare(ctx, q.ID, results)
}

// handleSharePublished records the opaque address a chosen share result
// landed at, so future resyncs reach the new copy.
func (d *Dispatcher) handleSharePublished(ctx context.Context, pub *surface.SharePublished) error {
	jioID, ok := callback.ParseDeepLink(pub.ResultID)
	if !ok {
		log.Warn().Str("result_id", pub.ResultID).Msg("share published with unparseable result id")
		return nil
	}
	return d.Syncer.RegisterShare(ctx, jioID, pub.SurfaceID)
}
