// Package botapi talks to the messaging transport's HTTP API. The rest of
// the application only sees the Messenger interface; message delivery,
// payload rendering, and update polling all terminate here.
package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/haidarz/remitbot/internal/domain/model"
)

// ErrMessageGone indicates the referenced message no longer exists or is
// not accessible, so edits and deletes against it can be skipped.
var ErrMessageGone = errors.New("message not available")

// TooManyRequestsError represents a rate limiting signal from the transport.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Button is one interactive action attached to a message.
type Button struct {
	Label   string `json:"text"`
	Payload string `json:"callback_data"`
}

// Update is one inbound transport event.
type Update struct {
	ID            int64
	From          int64
	Text          string
	MediaRef      string
	ActionPayload string
}

// Messenger exposes outbound messaging operations consumed by the core.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, buttons [][]Button) (model.Handle, error)
	SendMedia(ctx context.Context, chatID int64, mediaRef, caption string) (model.Handle, error)
	Edit(ctx context.Context, handle model.Handle, text string, buttons [][]Button) error
	Delete(ctx context.Context, handle model.Handle) error
}

// UpdateSource streams inbound events.
type UpdateSource interface {
	Updates(ctx context.Context, offset int64) ([]Update, error)
}

// HTTPClient implements Messenger and UpdateSource over the bot HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates the transport client with a default timeout.
func NewHTTPClient(baseURL, token string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse bot api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("bot api url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			// Above the long-poll timeout used by Updates.
			Timeout: 40 * time.Second,
		},
	}, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

type messageResult struct {
	MessageID int `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type updateResult struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Text  string `json:"text"`
		Photo []struct {
			FileID string `json:"file_id"`
		} `json:"photo"`
		Document *struct {
			FileID string `json:"file_id"`
		} `json:"document"`
	} `json:"message"`
	CallbackQuery *struct {
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

// Send delivers a text message and returns its handle.
func (c *HTTPClient) Send(ctx context.Context, chatID int64, text string, buttons [][]Button) (model.Handle, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if len(buttons) > 0 {
		payload["reply_markup"] = map[string]any{"inline_keyboard": buttons}
	}

	var result messageResult
	if err := c.call(ctx, "sendMessage", payload, &result); err != nil {
		return model.Handle{}, err
	}
	return model.Handle{ChatID: result.Chat.ID, MessageID: result.MessageID}, nil
}

// SendMedia delivers a photo by opaque media reference.
func (c *HTTPClient) SendMedia(ctx context.Context, chatID int64, mediaRef, caption string) (model.Handle, error) {
	payload := map[string]any{
		"chat_id": chatID,
		"photo":   mediaRef,
	}
	if caption != "" {
		payload["caption"] = caption
	}

	var result messageResult
	if err := c.call(ctx, "sendPhoto", payload, &result); err != nil {
		return model.Handle{}, err
	}
	return model.Handle{ChatID: result.Chat.ID, MessageID: result.MessageID}, nil
}

// Edit replaces text and button set of a previously sent message.
func (c *HTTPClient) Edit(ctx context.Context, handle model.Handle, text string, buttons [][]Button) error {
	payload := map[string]any{
		"chat_id":    handle.ChatID,
		"message_id": handle.MessageID,
		"text":       text,
	}
	if len(buttons) > 0 {
		payload["reply_markup"] = map[string]any{"inline_keyboard": buttons}
	}
	return c.call(ctx, "editMessageText", payload, nil)
}

// Delete removes a previously sent message.
func (c *HTTPClient) Delete(ctx context.Context, handle model.Handle) error {
	payload := map[string]any{
		"chat_id":    handle.ChatID,
		"message_id": handle.MessageID,
	}
	return c.call(ctx, "deleteMessage", payload, nil)
}

// Updates long-polls the transport for inbound events past the given offset.
func (c *HTTPClient) Updates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": 30,
	}

	var results []updateResult
	if err := c.call(ctx, "getUpdates", payload, &results); err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(results))
	for _, r := range results {
		u := Update{ID: r.UpdateID}
		switch {
		case r.CallbackQuery != nil:
			u.From = r.CallbackQuery.From.ID
			u.ActionPayload = r.CallbackQuery.Data
		case r.Message != nil:
			u.From = r.Message.From.ID
			u.Text = r.Message.Text
			if n := len(r.Message.Photo); n > 0 {
				u.MediaRef = r.Message.Photo[n-1].FileID
			} else if r.Message.Document != nil {
				u.MediaRef = r.Message.Document.FileID
			}
		default:
			continue
		}
		updates = append(updates, u)
	}
	return updates, nil
}

func (c *HTTPClient) call(ctx context.Context, method string, payload any, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "bot"+c.token, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	switch {
	case parsed.OK:
		if out != nil && len(parsed.Result) > 0 {
			if err := json.Unmarshal(parsed.Result, out); err != nil {
				return fmt.Errorf("decode %s result: %w", method, err)
			}
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 5 * time.Second
		if parsed.Parameters != nil && parsed.Parameters.RetryAfter > 0 {
			retryAfter = time.Duration(parsed.Parameters.RetryAfter) * time.Second
		} else if header := resp.Header.Get("Retry-After"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return TooManyRequestsError{RetryAfter: retryAfter}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
		c.logger.Warn("bot api rejected call",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("description", parsed.Description))
		desc := strings.ToLower(parsed.Description)
		switch {
		case strings.Contains(desc, "message is not modified"):
			// An edit with identical content leaves the message in place.
			return nil
		case resp.StatusCode == http.StatusForbidden,
			strings.Contains(desc, "not found"),
			strings.Contains(desc, "can't be"):
			return fmt.Errorf("%s: %s: %w", method, parsed.Description, ErrMessageGone)
		default:
			return fmt.Errorf("bot api %s: %s", method, parsed.Description)
		}
	default:
		c.logger.Error("bot api call failed",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("description", parsed.Description))
		return fmt.Errorf("bot api %s: %s", method, resp.Status)
	}
}
