package surface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnreachable reports a recoverable push failure: the transport bridge
// refused the edit or send, typically because the target message is gone or
// past the edit window. The sync engine logs it and moves on.
var ErrUnreachable = errors.New("surface unreachable")

// HTTPClient talks JSON over HTTP to a transport bridge that owns the actual
// chat-platform connection. It implements Client and Commands.
type HTTPClient struct {
	base    string
	botName string
	http    *http.Client
}

// NewHTTPClient builds an HTTPClient for the bridge at baseURL. botName is
// used when constructing deep-link URLs.
func NewHTTPClient(baseURL, botName string) *HTTPClient {
	return &HTTPClient{
		base:    baseURL,
		botName: botName,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type sendRequest struct {
	ChatID   int64    `json:"chat_id"`
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
	Replies  Reply    `json:"replies,omitempty"`
}

type editRequest struct {
	Address   *Address `json:"address,omitempty"`
	SurfaceID string   `json:"surface_id,omitempty"`
	Text      string   `json:"text"`
	Keyboard  Keyboard `json:"keyboard,omitempty"`
}

type answerRequest struct {
	CallbackID string `json:"callback_id"`
	Notice     string `json:"notice,omitempty"`
}

type answerShareRequest struct {
	QueryID string        `json:"query_id"`
	Results []ShareResult `json:"results"`
}

// Send implements Client.
func (c *HTTPClient) Send(ctx context.Context, chatID int64, text string, kb Keyboard) (Address, error) {
	var addr Address
	err := c.post(ctx, "/messages", sendRequest{ChatID: chatID, Text: text, Keyboard: kb}, &addr)
	return addr, err
}

// SendPrompt implements Client.
func (c *HTTPClient) SendPrompt(ctx context.Context, chatID int64, text string, replies Reply) (Address, error) {
	var addr Address
	err := c.post(ctx, "/messages", sendRequest{ChatID: chatID, Text: text, Replies: replies}, &addr)
	return addr, err
}

// Edit implements Client.
func (c *HTTPClient) Edit(ctx context.Context, addr Address, text string, kb Keyboard) error {
	return c.post(ctx, "/messages/edit", editRequest{Address: &addr, Text: text, Keyboard: kb}, nil)
}

// EditShared implements Client.
func (c *HTTPClient) EditShared(ctx context.Context, surfaceID, text string, kb Keyboard) error {
	return c.post(ctx, "/messages/edit", editRequest{SurfaceID: surfaceID, Text: text, Keyboard: kb}, nil)
}

// ClearControls implements Client.
func (c *HTTPClient) ClearControls(ctx context.Context, addr Address) error {
	return c.post(ctx, "/messages/clear", editRequest{Address: &addr}, nil)
}

// Answer implements Client.
func (c *HTTPClient) Answer(ctx context.Context, callbackID, notice string) error {
	return c.post(ctx, "/answers", answerRequest{CallbackID: callbackID, Notice: notice}, nil)
}

// AnswerShare implements Client.
func (c *HTTPClient) AnswerShare(ctx context.Context, queryID string, results []ShareResult) error {
	if results == nil {
		results = []ShareResult{}
	}
	return c.post(ctx, "/answers/share", answerShareRequest{QueryID: queryID, Results: results}, nil)
}

// DeepLink implements Client.
func (c *HTTPClient) DeepLink(payload string) string {
	return "https://t.me/" + c.botName + "?start=" + url.QueryEscape(payload)
}

// SetCommands implements Commands.
func (c *HTTPClient) SetCommands(ctx context.Context, commands []CommandSpec) error {
	return c.post(ctx, "/commands", commands, nil)
}

// Poll long-polls the bridge for inbound events past offset. It returns the
// (possibly empty) batch; the caller advances its offset from the returned
// events' UpdateIDs.
func (c *HTTPClient) Poll(ctx context.Context, offset int64, timeout time.Duration) ([]Event, error) {
	u := fmt.Sprintf("%s/updates?offset=%s&timeout=%d",
		c.base, strconv.FormatInt(offset, 10), int(timeout.Seconds()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poll: unexpected status %d", resp.StatusCode)
	}
	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	// 4xx means the target message is gone, stale, or not editable; the
	// caller treats it as a recoverable per-surface failure.
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnreachable, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
