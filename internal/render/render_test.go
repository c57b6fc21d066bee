package render

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/supperjio/jiobot/internal/domain"
)

func testJio(closed bool) *domain.Jio {
	status := domain.JioOpen
	if closed {
		status = domain.JioClosed
	}
	return &domain.Jio{
		ID:          7,
		OwnerID:     10,
		Restaurant:  "McDonalds",
		Description: "closes 10pm",
		Status:      status,
		CreatedAt:   time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC),
	}
}

func order(userID int64, name string, paid domain.PaidStatus, items ...string) domain.Order {
	return domain.Order{
		JioID:  7,
		UserID: userID,
		Food:   domain.JoinItems(items),
		Paid:   paid,
		User:   domain.User{ID: userID, DisplayName: name},
	}
}

func TestJioText(t *testing.T) {
	jio := testJio(false)
	orders := []domain.Order{
		order(1, "Alice", domain.NotPaid, "fries", "coke"),
		order(2, "Bob", domain.NotPaid), // no items, omitted
		order(3, "Carol", domain.Paid, "nuggets"),
	}

	got := JioText(jio, orders)
	want := "Supper Jio Order #7: <b>McDonalds</b>\n" +
		"Additional Information: \ncloses 10pm\n\n" +
		"Current Orders:\n" +
		"Alice -- fries; coke\n" +
		"<s>Carol -- nuggets</s> Paid"
	if got != want {
		t.Fatalf("JioText:\n%q\nwant:\n%q", got, want)
	}

	if got := JioText(jio, nil); !strings.HasSuffix(got, "Current Orders:\nNone") {
		t.Fatalf("empty jio text = %q", got)
	}

	closed := testJio(true)
	if got := JioText(closed, nil); !strings.HasSuffix(got, "\n🛑 Jio is closed! 🛑") {
		t.Fatalf("closed banner missing: %q", got)
	}
}

// Rendering is a pure function of persisted state: repeated calls with the
// same inputs yield identical output.
func TestRenderIsPure(t *testing.T) {
	jio := testJio(false)
	orders := []domain.Order{order(1, "Alice", domain.Paid, "fries")}

	first := JioText(jio, orders)
	kb := HostKeyboard(jio)
	for i := 0; i < 3; i++ {
		if JioText(jio, orders) != first {
			t.Fatal("JioText output varied across calls")
		}
		if !reflect.DeepEqual(HostKeyboard(jio), kb) {
			t.Fatal("HostKeyboard output varied across calls")
		}
	}
}

func TestHostKeyboard_OpenVsClosed(t *testing.T) {
	open := HostKeyboard(testJio(false))
	if len(open) != 3 || open[0][0].SwitchInline != "jio7" {
		t.Fatalf("open keyboard = %+v", open)
	}
	if open[1][1].Callback != "020:7" {
		t.Fatalf("close button callback = %q", open[1][1].Callback)
	}

	closed := HostKeyboard(testJio(true))
	if len(closed) != 4 {
		t.Fatalf("closed keyboard = %+v", closed)
	}
	if closed[0][0].Callback != "200:7" || closed[0][0].Label != "🔓 Reopen the jio" {
		t.Fatalf("reopen button = %+v", closed[0][0])
	}
}

func TestSharedKeyboard(t *testing.T) {
	kb := SharedKeyboard(testJio(false), "https://example.test/start?jio7")
	if len(kb) != 1 || kb[0][0].URL == "" {
		t.Fatalf("shared keyboard = %+v", kb)
	}
	if SharedKeyboard(testJio(true), "url") != nil {
		t.Fatal("closed jio should strip shared controls")
	}
}

func TestOrderText(t *testing.T) {
	jio := testJio(false)
	o := order(1, "Alice", domain.NotPaid, "fries", "coke")

	got := OrderText(jio, &o)
	want := "Supper Jio Order #7: <b>McDonalds</b>\n" +
		"Additional Information: \ncloses 10pm\n\n" +
		"Your Orders:\n" +
		"fries\ncoke"
	if got != want {
		t.Fatalf("OrderText:\n%q\nwant:\n%q", got, want)
	}

	empty := order(1, "Alice", domain.NotPaid)
	if got := OrderText(jio, &empty); !strings.HasSuffix(got, "Your Orders:\nNone") {
		t.Fatalf("empty order text = %q", got)
	}

	paid := order(1, "Alice", domain.Paid, "fries")
	if got := OrderText(testJio(true), &paid); !strings.Contains(got, "💰 You have declared payment! 💰") ||
		!strings.Contains(got, "🛑 Jio is closed! 🛑") {
		t.Fatalf("paid closed text = %q", got)
	}
}

func TestOrderKeyboard(t *testing.T) {
	o := order(1, "Alice", domain.NotPaid, "fries")

	open := OrderKeyboard(testJio(false), &o)
	if len(open) != 2 || open[0][0].Callback != "100:7" || open[0][1].Callback != "120:7" {
		t.Fatalf("open order keyboard = %+v", open)
	}

	closedUnpaid := OrderKeyboard(testJio(true), &o)
	if closedUnpaid[0][0].Label != "Declare Payment" || closedUnpaid[0][0].Callback != "300:7" {
		t.Fatalf("closed unpaid keyboard = %+v", closedUnpaid)
	}

	o.Paid = domain.Paid
	closedPaid := OrderKeyboard(testJio(true), &o)
	if closedPaid[0][0].Label != "Undo Payment Declaration" || closedPaid[0][0].Callback != "310:7" {
		t.Fatalf("closed paid keyboard = %+v", closedPaid)
	}

	// No items on a closed jio: no payment controls at all.
	empty := order(1, "Alice", domain.NotPaid)
	if OrderKeyboard(testJio(true), &empty) != nil {
		t.Fatal("closed empty order should have no keyboard")
	}
}

func TestConsolidatedText_CaseFoldsAndCounts(t *testing.T) {
	orders := []domain.Order{
		order(1, "Alice", domain.NotPaid, "Fries", "coke"),
		order(2, "Bob", domain.NotPaid, "fries", "FRIES"),
	}
	got := ConsolidatedText(orders)
	want := "Orders:\n\nfries: 3\ncoke: 1"
	if got != want {
		t.Fatalf("ConsolidatedText = %q, want %q", got, want)
	}
}

func TestJioLabel(t *testing.T) {
	if got := JioLabel(testJio(false)); got != "Order 7: McDonalds (2025-03-01)" {
		t.Fatalf("open label = %q", got)
	}
	if got := JioLabel(testJio(true)); got != "Order 7: McDonalds (Closed, 2025-03-01)" {
		t.Fatalf("closed label = %q", got)
	}
}

func TestFavouriteRows(t *testing.T) {
	rows := FavouriteRows([]string{"fries", "coke", "nuggets"})
	if len(rows) != 3 || rows[0][0] != CancelSentinel {
		t.Fatalf("rows = %+v", rows)
	}
	if !reflect.DeepEqual(rows[1], []string{"fries", "coke"}) || !reflect.DeepEqual(rows[2], []string{"nuggets"}) {
		t.Fatalf("chunking = %+v", rows)
	}
}
