// Command and text-message handling. Commands are the discoverable entry
// points (/start, /help, /favourites); free text only means something while
// the sender has a collection flow in progress.
package dispatch

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/domain"
	"github.com/supperjio/jiobot/internal/flow"
	"github.com/supperjio/jiobot/internal/render"
	"github.com/supperjio/jiobot/internal/surface"
)

func (d *Dispatcher) handleCommand(ctx context.Context, cmd *surface.Command) error {
	switch cmd.Name {
	case "start":
		if cmd.Group {
			_, err := d.Client.Send(ctx, cmd.ChatID, "Please initialize me in direct messages!", nil)
			return err
		}
		if jioID, ok := callback.ParseDeepLink(cmd.Payload); ok {
			return d.interestedUser(ctx, cmd, jioID)
		}
		return d.mainMenu(ctx, cmd.From, cmd.ChatID)
	case "help":
		_, err := d.Client.Send(ctx, cmd.ChatID, "Use /start to use this bot!", nil)
		return err
	case "favourites":
		return d.favouritesOverview(ctx, cmd.From, cmd.ChatID, "")
	}
	log.Warn().Str("command", cmd.Name).Msg("unknown command ignored")
	return nil
}

// handleText feeds free text into the sender's collection flow. Text from a
// user with no flow in progress is dropped.
func (d *Dispatcher) handleText(ctx context.Context, msg *surface.TextMessage) error {
	st, ok := d.Flows.Get(msg.From.ID)
	if !ok {
		return nil
	}

	switch st.Stage {
	case flow.StageAwaitingRestaurant:
		return d.collectRestaurant(ctx, msg, st)
	case flow.StageAwaitingDetails:
		return d.collectDetails(ctx, msg, st)
	case flow.StageAwaitingDescription:
		return d.collectDescription(ctx, msg, st)
	case flow.StageAwaitingFood:
		return d.collectFood(ctx, msg, st)
	}
	return nil
}

func (d *Dispatcher) collectRestaurant(ctx context.Context, msg *surface.TextMessage, st flow.State) error {
	if msg.Text == render.CancelSentinel {
		d.Flows.Clear(msg.From.ID)
		_, err := d.Client.SendPrompt(ctx, msg.ChatID, "Supper Jio creation cancelled.", nil)
		return err
	}

	if utf8.RuneCountInString(msg.Text) > domain.MaxRestaurantLen {
		// Stay in this stage so the user can try again.
		_, err := d.Client.Send(ctx, msg.ChatID, "Restaurant name is too long. Please try again.", nil)
		return err
	}

	d.Flows.Advance(msg.From.ID, flow.State{Stage: flow.StageAwaitingDetails, Restaurant: msg.Text})
	_, err := d.Client.SendPrompt(ctx, msg.ChatID,
		"You are creating a supper jio order for restaurant: <b>"+msg.Text+"</b>\n\n"+
			"Please type any additional information (eg. Delivery fees, close off timing, etc)",
		nil)
	return err
}

func (d *Dispatcher) collectDetails(ctx context.Context, msg *surface.TextMessage, st flow.State) error {
	jio, err := d.Jios.Create(ctx, msg.From.ID, st.Restaurant, msg.Text)
	if err != nil {
		return err
	}
	d.Flows.Clear(msg.From.ID)
	return d.Syncer.ResendHost(ctx, jio, msg.ChatID)
}

func (d *Dispatcher) collectDescription(ctx context.Context, msg *surface.TextMessage, st flow.State) error {
	jio, err := d.Jios.EditDescription(ctx, st.JioID, msg.Text)
	if err != nil {
		return err
	}
	d.Flows.Clear(msg.From.ID)

	if st.PromptAddr != nil {
		if err := d.Client.ClearControls(ctx, *st.PromptAddr); err != nil {
			log.Error().Err(err).Int64("jio_id", jio.ID).Msg("unable to clear amend prompt")
		}
	}
	if err := d.Syncer.ResendHost(ctx, jio, msg.ChatID); err != nil {
		return err
	}
	d.Syncer.SyncConsolidated(ctx, jio)
	return nil
}

func (d *Dispatcher) collectFood(ctx context.Context, msg *surface.TextMessage, st flow.State) error {
	d.Flows.Clear(msg.From.ID)

	if msg.Text != render.CancelSentinel {
		if _, err := d.Orders.AddItem(ctx, st.JioID, msg.From.ID, msg.Text); err != nil {
			return err
		}
	}

	jio, err := d.Jios.Get(ctx, st.JioID)
	if err != nil {
		return err
	}
	order, err := d.Orders.Get(ctx, st.JioID, msg.From.ID)
	if err != nil {
		return err
	}

	// The suggested-reply layout from the prompt is still on screen; an
	// empty prompt clears it before the fresh order surface arrives.
	if _, err := d.Client.SendPrompt(ctx, msg.ChatID, "Please wait while the message loads...", nil); err != nil {
		log.Error().Err(err).Msg("unable to clear reply layout")
	}
	if err := d.Syncer.SendParticipant(ctx, jio, order); err != nil {
		return err
	}

	if msg.Text != render.CancelSentinel {
		d.Syncer.SyncConsolidated(ctx, jio)
	}
	return nil
}

func flowStateAwaitingRestaurant() flow.State {
	return flow.State{Stage: flow.StageAwaitingRestaurant}
}

func flowStateAwaitingDescription(jioID int64, prompt surface.Address) flow.State {
	return flow.State{Stage: flow.StageAwaitingDescription, JioID: jioID, PromptAddr: &prompt}
}

func flowStateAwaitingFood(jioID int64) flow.State {
	return flow.State{Stage: flow.StageAwaitingFood, JioID: jioID}
}
