package surface

// Sender identifies the remote actor behind an inbound event, with the fresh
// display name used to upsert the participant record.
type Sender struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

// TextMessage is a plain text message from a participant, consumed by the
// conversational flow controller.
type TextMessage struct {
	From   Sender `json:"from"`
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// Command is a discoverable command invocation such as /start, optionally
// carrying a deep-link payload. Group marks commands issued outside a direct
// message.
type Command struct {
	From    Sender `json:"from"`
	ChatID  int64  `json:"chat_id"`
	Name    string `json:"name"`
	Payload string `json:"payload,omitempty"`
	Group   bool   `json:"group,omitempty"`
}

// CallbackPress is a pressed control: Data carries the encoded action token,
// Message addresses the message the control was attached to, and ID is the
// transport handle used to Answer the press.
type CallbackPress struct {
	ID      string  `json:"id"`
	From    Sender  `json:"from"`
	ChatID  int64   `json:"chat_id"`
	Message Address `json:"message"`
	Data    string  `json:"data"`
}

// ShareQuery asks for on-the-fly shareable content (the inline share flow).
type ShareQuery struct {
	ID    string `json:"id"`
	From  Sender `json:"from"`
	Query string `json:"query"`
}

// SharePublished is the follow-up notification reporting the concrete opaque
// address a chosen share result was published to.
type SharePublished struct {
	ResultID  string `json:"result_id"`
	SurfaceID string `json:"surface_id"`
}

// ShareResult is one answer to a ShareQuery: a preview card that, when
// chosen, publishes Text with the given controls into the target chat.
type ShareResult struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Text        string   `json:"text"`
	Keyboard    Keyboard `json:"keyboard,omitempty"`
}

// Event is one inbound transport event. Exactly one payload field is set;
// UpdateID is the transport's monotonically increasing delivery identifier,
// used for webhook-redelivery dedup.
type Event struct {
	UpdateID       int64           `json:"update_id"`
	Text           *TextMessage    `json:"text,omitempty"`
	Command        *Command        `json:"command,omitempty"`
	Callback       *CallbackPress  `json:"callback,omitempty"`
	ShareQuery     *ShareQuery     `json:"share_query,omitempty"`
	SharePublished *SharePublished `json:"share_published,omitempty"`
}
