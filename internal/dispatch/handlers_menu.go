// Main menu and favourites: the /start menu, the created/joined jio
// listings, and both favourite-item surfaces (the in-jio toggle menu and the
// standalone /favourites browser).
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/render"
	"github.com/supperjio/jiobot/internal/surface"
)

func (d *Dispatcher) mainMenu(ctx context.Context, from surface.Sender, chatID int64) error {
	if _, err := d.Orders.RegisterParticipant(ctx, from.ID, from.DisplayName, chatID); err != nil {
		return err
	}

	message := "Welcome to the Supper Jio bot!\n\n" +
		"Just click the buttons below to create a supper jio!"
	keyboard := surface.Column(
		surface.Button{Label: "🆕 Create Supper Jio", Callback: callback.Encode(callback.CreateJio)},
		surface.Button{Label: "📖 View Your Created Jios", Callback: callback.Encode(callback.ViewCreatedJios)},
		surface.Button{Label: "📑 View Joined Jios", Callback: callback.Encode(callback.ViewJoinedJios)},
		surface.Button{Label: "🍿 View Favourite Items", Callback: callback.Encode(callback.MenuFavourites)},
	)
	_, err := d.Client.Send(ctx, chatID, message, keyboard)
	return err
}

func (d *Dispatcher) viewCreatedJios(ctx context.Context, press *surface.CallbackPress) error {
	jios, err := d.Jios.ListCreated(ctx, press.From.ID)
	if err != nil {
		return err
	}
	if len(jios) == 0 {
		if _, err := d.Client.Send(ctx, press.ChatID, "You have not created any jios.", nil); err != nil {
			return err
		}
		return d.Client.Answer(ctx, press.ID, "")
	}

	text := "Which of your jios do you want to view?\n" +
		"Only the most recent 50 jios can be viewed."
	buttons := []surface.Button{{Label: render.CancelSentinel, Callback: callback.Encode(callback.CancelView)}}
	for i := range jios {
		buttons = append(buttons, surface.Button{
			Label:    render.JioLabel(&jios[i]),
			Callback: callback.EncodeJio(callback.ResendMainMessage, jios[i].ID),
		})
	}

	if _, err := d.Client.Send(ctx, press.ChatID, text, surface.Column(buttons...)); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) viewJoinedJios(ctx context.Context, press *surface.CallbackPress) error {
	jios, err := d.Jios.ListJoined(ctx, press.From.ID)
	if err != nil {
		return err
	}
	if len(jios) == 0 {
		if _, err := d.Client.Send(ctx, press.ChatID, "You have not joined any jios.", nil); err != nil {
			return err
		}
		return d.Client.Answer(ctx, press.ID, "")
	}

	text := "Which of the jios do you want to view?\n" +
		"Only the most recent 50 jios can be viewed."
	buttons := []surface.Button{{Label: render.CancelSentinel, Callback: callback.Encode(callback.CancelView)}}
	for i := range jios {
		buttons = append(buttons, surface.Button{
			Label:    render.JioLabel(&jios[i]),
			Callback: callback.EncodeJio(callback.OwnerAddOrder, jios[i].ID),
		})
	}

	if _, err := d.Client.Send(ctx, press.ChatID, text, surface.Column(buttons...)); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

func (d *Dispatcher) cancelView(ctx context.Context, press *surface.CallbackPress) error {
	if err := d.Client.ClearControls(ctx, press.Message); err != nil {
		return err
	}
	if err := d.mainMenu(ctx, press.From, press.ChatID); err != nil {
		return err
	}
	return d.Client.Answer(ctx, press.ID, "")
}

// ----- In-jio favourite toggle menu -----

// favouriteMenu replaces the participant's order surface with a toggle list:
// items already favourited carry a star and remove on press, the rest add.
func (d *Dispatcher) favouriteMenu(ctx context.Context, press *surface.CallbackPress, args []string) error {
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

	items := order.Items()
	if len(items) == 0 {
		if _, err := d.Client.Send(ctx, press.ChatID,
			"You have yet to make any order. Please add an order to choose a favourite item.", nil); err != nil {
			return err
		}
		return d.Client.Answer(ctx, press.ID, "")
	}

	favourites, err := d.Favourites.ListByRestaurant(ctx, press.From.ID, jio.Restaurant)
	if err != nil {
		return err
	}
	favIDByFood := make(map[string]int64, len(favourites))
	for _, f := range favourites {
		favIDByFood[f.Food] = f.ID
	}

	text := "Please select your current orders below to toggle between being in your " +
		"favourites for this restaurant.\n\n" +
		"Your favourite orders are saved per restaurant, and will be shown when you " +
		"are adding an order for a jio to that restaurant.\n\n" +
		"You can also view your favourites through /favourites.\n\n" +
		"Orders which are already favourite'd are marked with a ⭐."

	buttons := []surface.Button{{
		Label:    render.CancelSentinel,
		Callback: callback.EncodeJio(callback.CancelOrderAction, jioID),
	}}
	for idx, food := range items {
		if favID, ok := favIDByFood[food]; ok {
			buttons = append(buttons, surface.Button{
				Label:    "⭐ " + food,
				Callback: callback.EncodeJio(callback.RemoveFavourite, jioID, strconv.FormatInt(favID, 10)),
			})
			continue
		}
		buttons = append(buttons, surface.Button{
			Label:    food,
			Callback: callback.EncodeJio(callback.ConfirmFavourite, jioID, jio.Restaurant, strconv.Itoa(idx)),
		})
	}

	if err := d.Client.Answer(ctx, press.ID, ""); err != nil {
		return err
	}
	return d.Client.Edit(ctx, press.Message, text, surface.Column(buttons...))
}

func (d *Dispatcher) confirmFavourite(ctx context.Context, press *surface.CallbackPress, args []string) error {
	jioID, ok := callback.JioArg(args)
	if !ok || len(args) < 3 {
		return d.Client.Answer(ctx, press.ID, "")
	}
	// The restaurant may itself contain the token separator; the position
	// index is always the final argument.
	restaurant := strings.Join(args[1:len(args)-1], ":")
	idx, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	order, err := d.Orders.Get(ctx, jioID, press.From.ID)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}
	items := order.Items()
	if idx < 0 || idx >= len(items) {
		return d.Client.Answer(ctx, press.ID, "")
	}

	ok, err = d.Favourites.Add(ctx, press.From.ID, restaurant, items[idx])
	if err != nil {
		return err
	}
	if !ok {
		if _, err := d.Client.Send(ctx, press.ChatID,
			"You have too many favourite items for this restaurant. "+
				"Please remove some by going to /start and viewing your favourite orders.", nil); err != nil {
			return err
		}
		return d.Client.Answer(ctx, press.ID, "")
	}

	return d.favouriteMenu(ctx, press, args[:1])
}

func (d *Dispatcher) removeFavourite(ctx context.Context, press *surface.CallbackPress, args []string) error {
	if len(args) < 2 {
		return d.Client.Answer(ctx, press.ID, "")
	}
	favID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	if err := d.Favourites.Remove(ctx, favID, press.From.ID); err != nil {
		return err
	}
	return d.favouriteMenu(ctx, press, args[:1])
}

// ----- Standalone favourites browser -----

// favouritesOverview lists the restaurants the user has favourites for.
// Reached via /favourites or the main menu; callbackID is empty for the
// command path.
func (d *Dispatcher) favouritesOverview(ctx context.Context, from surface.Sender, chatID int64, callbackID string) error {
	if callbackID != "" {
		if err := d.Client.Answer(ctx, callbackID, ""); err != nil {
			return err
		}
	}

	restaurants, err := d.Favourites.ListRestaurants(ctx, from.ID)
	if err != nil {
		return err
	}

	buttons := []surface.Button{{Label: render.CancelSentinel, Callback: callback.Encode(callback.CancelView)}}
	for _, r := range restaurants {
		buttons = append(buttons, surface.Button{
			Label:    r,
			Callback: callback.Encode(callback.ViewFavouriteItems, r),
		})
	}

	message := "You can view your favourite items for each of the restaurants below.\n\n" +
		"Favourite items can be added by joining a Jio and adding your items there."
	_, err = d.Client.Send(ctx, chatID, message, surface.Column(buttons...))
	return err
}

func (d *Dispatcher) viewRestaurantFavourites(ctx context.Context, press *surface.CallbackPress, args []string) error {
	if err := d.Client.Answer(ctx, press.ID, ""); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	restaurant := strings.Join(args, ":")

	favourites, err := d.Favourites.ListByRestaurant(ctx, press.From.ID, restaurant)
	if err != nil {
		return err
	}

	buttons := []surface.Button{{Label: render.CancelSentinel, Callback: callback.Encode(callback.CancelView)}}
	for _, f := range favourites {
		buttons = append(buttons, surface.Button{
			Label:    f.Food,
			Callback: callback.Encode(callback.MenuRemoveFavourite, restaurant, strconv.FormatInt(f.ID, 10)),
		})
	}

	message := "The following are your favourite items from past orders.\n\n" +
		"You can remove them by clicking on them."
	return d.Client.Edit(ctx, press.Message, message, surface.Column(buttons...))
}

func (d *Dispatcher) confirmDeleteFavourite(ctx context.Context, press *surface.CallbackPress, args []string) error {
	if err := d.Client.Answer(ctx, press.ID, ""); err != nil {
		return err
	}
	if len(args) < 2 {
		return nil
	}
	restaurant := strings.Join(args[:len(args)-1], ":")
	favID, err := strconv.ParseInt(args[len(args)-1], 10, 64)
	if err != nil {
		return nil
	}

	fav, err := d.Favourites.Get(ctx, favID)
	if err != nil {
		return nil
	}

	message := fmt.Sprintf(
		"You are about to delete <b>%s</b> from <b>%s</b>. Are you sure?",
		fav.Food, restaurant,
	)
	keyboard := surface.Row(
		surface.Button{
			Label:    "✅ Yes",
			Callback: callback.Encode(callback.MenuConfirmDeleteFavourite, restaurant, strconv.FormatInt(favID, 10)),
		},
		surface.Button{
			Label:    "❌ No",
			Callback: callback.Encode(callback.ViewFavouriteItems, restaurant),
		},
	)
	return d.Client.Edit(ctx, press.Message, message, keyboard)
}

func (d *Dispatcher) deleteMenuFavourite(ctx context.Context, press *surface.CallbackPress, args []string) error {
	if len(args) < 2 {
		return d.Client.Answer(ctx, press.ID, "")
	}
	favID, err := strconv.ParseInt(args[len(args)-1], 10, 64)
	if err != nil {
		return d.Client.Answer(ctx, press.ID, "")
	}

	if err := d.Favourites.Remove(ctx, favID, press.From.ID); err != nil {
		return err
	}
	return d.viewRestaurantFavourites(ctx, press, args[:len(args)-1])
}
