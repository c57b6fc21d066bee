// Package render builds the message texts and keyboards shown on every
// surface of a jio. All functions are pure: output depends only on the
// persisted state passed in, so any two surfaces rendered from the same
// state display the same content.
package render

import (
	"fmt"
	"strings"

	"github.com/supperjio/jiobot/internal/callback"
	"github.com/supperjio/jiobot/internal/domain"
	"github.com/supperjio/jiobot/internal/surface"
)

// CancelSentinel is the reply-keyboard label that aborts a conversational flow.
const CancelSentinel = "↩ Cancel"

const closedBanner = "🛑 Jio is closed! 🛑"

// JioText renders the consolidated order text shown on the host surface and
// on every shared group surface. Participants with no items are omitted;
// paid lines are struck through.
func JioText(jio *domain.Jio, orders []domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Supper Jio Order #%d: <b>%s</b>\n", jio.ID, jio.Restaurant)
	fmt.Fprintf(&b, "Additional Information: \n%s\n\n", jio.Description)
	b.WriteString("Current Orders:\n")

	var lines []string
	for _, o := range orders {
		items := o.Items()
		if len(items) == 0 {
			continue
		}
		line := o.User.DisplayName + " -- " + strings.Join(items, "; ")
		if o.HasPaid() {
			line = "<s>" + line + "</s> Paid"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(lines, "\n"))
	}

	if jio.IsClosed() {
		b.WriteString("\n" + closedBanner)
	}
	return b.String()
}

// HostKeyboard renders the control panel attached to the host surface.
// The open and closed states expose entirely different controls.
func HostKeyboard(jio *domain.Jio) surface.Keyboard {
	id := jio.ID

	if jio.IsClosed() {
		return surface.Column(
			surface.Button{Label: "🔓 Reopen the jio", Callback: callback.EncodeJio(callback.ReopenJio, id)},
			surface.Button{Label: "✍️Create Ordering List", Callback: callback.EncodeJio(callback.CreateOrderingList, id)},
			surface.Button{Label: "🔔 Ping Unpaid", Callback: callback.EncodeJio(callback.PingAllUnpaid, id)},
			surface.Button{Label: "♻ Refresh Message", Callback: callback.EncodeJio(callback.ResendMainMessage, id)},
		)
	}

	return surface.Keyboard{
		{
			{Label: "📢 Share this Jio!", SwitchInline: callback.DeepLinkPayload(id)},
		},
		{
			{Label: "Add Order", Callback: callback.EncodeJio(callback.OwnerAddOrder, id)},
			{Label: "🔒 Close the Jio", Callback: callback.EncodeJio(callback.CloseJio, id)},
		},
		{
			{Label: "🗒️ Edit Description", Callback: callback.EncodeJio(callback.AmendDescription, id)},
			{Label: "♻ Refresh Message", Callback: callback.EncodeJio(callback.ResendMainMessage, id)},
		},
	}
}

// SharedKeyboard renders the join control attached to shared group surfaces.
// deepLink is the URL that opens a direct conversation carrying the jio's
// deep-link payload. A closed jio has no controls at all.
func SharedKeyboard(jio *domain.Jio, deepLink string) surface.Keyboard {
	if jio.IsClosed() {
		return nil
	}
	return surface.Column(surface.Button{Label: "Add Order", URL: deepLink})
}

// OrderText renders a participant's private order surface.
func OrderText(jio *domain.Jio, order *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Supper Jio Order #%d: <b>%s</b>\n", jio.ID, jio.Restaurant)
	fmt.Fprintf(&b, "Additional Information: \n%s\n\n", jio.Description)
	b.WriteString("Your Orders:\n")

	items := order.Items()
	if len(items) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(items, "\n"))
	}

	if order.HasPaid() {
		b.WriteString("\n\n💰 You have declared payment! 💰")
	}
	if jio.IsClosed() {
		b.WriteString("\n\n" + closedBanner)
	}
	return b.String()
}

// OrderKeyboard renders the controls on a participant's private surface.
// While the jio is open the participant can mutate their order; once closed
// the only action left is toggling their payment declaration, and a
// participant with no items gets no controls at all.
func OrderKeyboard(jio *domain.Jio, order *domain.Order) surface.Keyboard {
	id := jio.ID

	if !jio.IsClosed() {
		return surface.Keyboard{
			{
				{Label: "➕ Add Order", Callback: callback.EncodeJio(callback.AddOrder, id)},
				{Label: "❌ Delete Order", Callback: callback.EncodeJio(callback.DeleteOrder, id)},
			},
			{
				{Label: "⭐ Favourite Item", Callback: callback.EncodeJio(callback.FavouriteItem, id)},
			},
		}
	}

	if len(order.Items()) == 0 {
		return nil
	}

	var toggle surface.Button
	if order.HasPaid() {
		toggle = surface.Button{Label: "Undo Payment Declaration", Callback: callback.EncodeJio(callback.UndoPayment, id)}
	} else {
		toggle = surface.Button{Label: "Declare Payment", Callback: callback.EncodeJio(callback.DeclarePayment, id)}
	}
	return surface.Column(
		toggle,
		surface.Button{Label: "⭐ Favourite Item", Callback: callback.EncodeJio(callback.FavouriteItem, id)},
	)
}

// ConsolidatedText renders the host-only tally of items across all orders,
// case-folded so "Fries" and "fries" count together. Lines are ordered by
// first appearance.
func ConsolidatedText(orders []domain.Order) string {
	counts := make(map[string]int)
	var firstSeen []string
	for _, o := range orders {
		for _, item := range o.Items() {
			key := strings.ToLower(item)
			if counts[key] == 0 {
				firstSeen = append(firstSeen, key)
			}
			counts[key]++
		}
	}

	var b strings.Builder
	b.WriteString("Orders:\n\n")
	var lines []string
	for _, key := range firstSeen {
		lines = append(lines, fmt.Sprintf("%s: %d", key, counts[key]))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// ConsolidatedKeyboard is the single Back control under the ordering list.
func ConsolidatedKeyboard(jioID int64) surface.Keyboard {
	return surface.Column(surface.Button{Label: "Back", Callback: callback.EncodeJio(callback.Back, jioID)})
}

// JioLabel renders the one-line button label used in jio listings.
func JioLabel(jio *domain.Jio) string {
	closed := ""
	if jio.IsClosed() {
		closed = "Closed, "
	}
	return fmt.Sprintf("Order %d: %s (%s%s)", jio.ID, jio.Restaurant, closed, jio.CreatedAt.Format("2006-01-02"))
}

// FavouriteRows chunks favourite foods into reply-keyboard rows of two,
// headed by the cancel sentinel.
func FavouriteRows(favourites []string) surface.Reply {
	rows := surface.Reply{{CancelSentinel}}
	for i := 0; i < len(favourites); i += 2 {
		end := i + 2
		if end > len(favourites) {
			end = len(favourites)
		}
		rows = append(rows, favourites[i:end])
	}
	return rows
}
