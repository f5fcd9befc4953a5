package botapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/haidarz/remitbot/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func handleFor(chatID int64, messageID int) model.Handle {
	return model.Handle{ChatID: chatID, MessageID: messageID}
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "t", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "t", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "test-token", testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, server
}

func TestSendReturnsHandle(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 15, "chat": map[string]any{"id": 99}},
		})
	})

	handle, err := client.Send(context.Background(), 99, "hello", [][]Button{{{Label: "Go", Payload: "go:1"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handle.ChatID != 99 || handle.MessageID != 15 {
		t.Fatalf("unexpected handle %+v", handle)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if _, ok := gotBody["reply_markup"]; !ok {
		t.Fatal("expected reply markup in payload")
	}
}

func TestEditAndDelete(t *testing.T) {
	var methods []string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/sendPhoto") {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":     true,
				"result": map[string]any{"message_id": 1, "chat": map[string]any{"id": 5}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": true})
	})

	handle, err := client.SendMedia(context.Background(), 5, "file-abc", "proof")
	if err != nil {
		t.Fatalf("send media: %v", err)
	}
	_ = handle

	if err := client.Edit(context.Background(), handleFor(5, 1), "updated", nil); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := client.Delete(context.Background(), handleFor(5, 1)); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{"/bottest-token/sendPhoto", "/bottest-token/editMessageText", "/bottest-token/deleteMessage"}
	if len(methods) != len(want) {
		t.Fatalf("unexpected calls: %v", methods)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s", i, want[i], methods[i])
		}
	}
}

func TestRateLimitError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Too Many Requests",
			"parameters":  map[string]any{"retry_after": 7},
		})
	})

	_, err := client.Send(context.Background(), 1, "x", nil)
	var rateErr TooManyRequestsError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if rateErr.RetryAfter != 7*time.Second {
		t.Fatalf("expected 7s retry, got %v", rateErr.RetryAfter)
	}
}

func TestGoneMessageError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "message to delete not found",
		})
	})

	err := client.Delete(context.Background(), handleFor(1, 44))
	if !errors.Is(err, ErrMessageGone) {
		t.Fatalf("expected gone-message error, got %v", err)
	}
}

func TestEditUnchangedContentIsNotAnError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Bad Request: message is not modified",
		})
	})

	if err := client.Edit(context.Background(), handleFor(1, 44), "same text", nil); err != nil {
		t.Fatalf("expected identical edit to succeed in place, got %v", err)
	}
}

func TestBlockedRecipientIsGone(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Forbidden: bot was blocked by the user",
		})
	})

	err := client.Edit(context.Background(), handleFor(1, 44), "text", nil)
	if !errors.Is(err, ErrMessageGone) {
		t.Fatalf("expected gone-message error, got %v", err)
	}
}

func TestMalformedRequestIsNotGone(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Bad Request: text must be non-empty",
		})
	})

	err := client.Edit(context.Background(), handleFor(1, 44), "", nil)
	if err == nil || errors.Is(err, ErrMessageGone) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestUpdatesDecoding(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 10,
					"message": map[string]any{
						"from": map[string]any{"id": 1},
						"text": "hello",
					},
				},
				{
					"update_id": 11,
					"message": map[string]any{
						"from":  map[string]any{"id": 2},
						"photo": []map[string]any{{"file_id": "small"}, {"file_id": "big"}},
					},
				},
				{
					"update_id": 12,
					"callback_query": map[string]any{
						"from": map[string]any{"id": 3},
						"data": "cancel:7",
					},
				},
				{"update_id": 13},
			},
		})
	})

	updates, err := client.Updates(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("expected 3 decoded updates, got %d", len(updates))
	}
	if updates[0].From != 1 || updates[0].Text != "hello" {
		t.Fatalf("unexpected text update %+v", updates[0])
	}
	if updates[1].MediaRef != "big" {
		t.Fatalf("expected largest photo ref, got %+v", updates[1])
	}
	if updates[2].ActionPayload != "cancel:7" {
		t.Fatalf("unexpected action update %+v", updates[2])
	}
}
