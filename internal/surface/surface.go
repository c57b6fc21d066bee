// Package surface abstracts the chat transport ("Messaging Surface") the bot
// core renders into. The core never talks to a concrete chat platform; it
// depends only on the Client capability below: send a message, edit one in
// place by address, edit a broadcast-shared message by its opaque address,
// strip the control layout from a message, answer a pressed control with an
// ephemeral notice, and construct deep-link URLs.
//
// Every remote mutation can fail recoverably: the target message may have
// been deleted, expired past the transport's edit window, or the recipient
// may have blocked the bot. Callers are expected to log and continue.
package surface

import "context"

// Address identifies one directly-addressable message: a chat plus a message
// within it.
type Address struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// Button is a single interactive control. Exactly one of Callback, URL, or
// SwitchInline should be set: Callback carries an encoded action token back
// to the core, URL opens a link (deep links), and SwitchInline prompts the
// user to share content into another chat.
type Button struct {
	Label        string `json:"label"`
	Callback     string `json:"callback,omitempty"`
	URL          string `json:"url,omitempty"`
	SwitchInline string `json:"switch_inline,omitempty"`
}

// Keyboard is a control layout: rows of buttons. A nil Keyboard means the
// message carries no controls.
type Keyboard [][]Button

// Column lays buttons out one per row.
func Column(buttons ...Button) Keyboard {
	kb := make(Keyboard, 0, len(buttons))
	for _, b := range buttons {
		kb = append(kb, []Button{b})
	}
	return kb
}

// Row lays buttons out on a single row.
func Row(buttons ...Button) Keyboard { return Keyboard{buttons} }

// Reply is a suggested-reply layout shown next to the participant's text
// input during a collection flow. Unlike Keyboard it produces ordinary text
// messages, not callback tokens.
type Reply [][]string

// Client is the outbound Messaging Surface capability.
type Client interface {
	// Send delivers a new message with optional controls and returns the
	// address of the created message.
	Send(ctx context.Context, chatID int64, text string, kb Keyboard) (Address, error)

	// SendPrompt delivers a new message with a suggested-reply layout,
	// used by text-collection flows. An empty Reply clears any layout the
	// chat currently shows.
	SendPrompt(ctx context.Context, chatID int64, text string, replies Reply) (Address, error)

	// Edit replaces the text and controls of an existing message in place.
	Edit(ctx context.Context, addr Address, text string, kb Keyboard) error

	// EditShared edits a broadcast-shared message by its opaque address.
	EditShared(ctx context.Context, surfaceID string, text string, kb Keyboard) error

	// ClearControls removes the control layout of a message, leaving its
	// text untouched.
	ClearControls(ctx context.Context, addr Address) error

	// Answer acknowledges a pressed control; notice, when non-empty, is
	// shown to the presser as a transient ephemeral message.
	Answer(ctx context.Context, callbackID, notice string) error

	// AnswerShare responds to a share query with zero or more shareable
	// results. An empty result list shows the presser nothing.
	AnswerShare(ctx context.Context, queryID string, results []ShareResult) error

	// DeepLink builds a URL that starts a conversation with the bot,
	// handing it payload as start arguments.
	DeepLink(payload string) string
}

// Commands registers the bot's discoverable command list. Split from Client
// because it is used once at bootstrap, not during steady-state dispatch.
type Commands interface {
	SetCommands(ctx context.Context, commands []CommandSpec) error
}

// CommandSpec is one discoverable command.
type CommandSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
