package test

import (
	"context"
	"sync"

	"github.com/haidarz/remitbot/internal/adapter/botapi"
	"github.com/haidarz/remitbot/internal/domain/model"
)

// SentMessage records one outbound send or edit observed by the stub.
type SentMessage struct {
	ChatID  int64
	Text    string
	Buttons [][]botapi.Button
	Media   string
	Edited  bool
	Handle  model.Handle
}

// MessengerStub implements the Messenger interface in memory, recording
// every outbound operation and optionally failing on demand.
type MessengerStub struct {
	mu     sync.Mutex
	nextID int

	Sent    []SentMessage
	Deleted []model.Handle

	SendErr   error
	EditErr   error
	DeleteErr error
	// SendErrFor fails sends to specific chats only.
	SendErrFor map[int64]error
	// DeleteErrFor fails deletion for specific message ids only.
	DeleteErrFor map[int]error
}

// NewMessengerStub constructs the stub.
func NewMessengerStub() *MessengerStub {
	return &MessengerStub{nextID: 1}
}

func (m *MessengerStub) Send(ctx context.Context, chatID int64, text string, buttons [][]botapi.Button) (model.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.SendErrFor[chatID]; ok {
		return model.Handle{}, err
	}
	if m.SendErr != nil {
		return model.Handle{}, m.SendErr
	}
	handle := model.Handle{ChatID: chatID, MessageID: m.nextID}
	m.nextID++
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: text, Buttons: buttons, Handle: handle})
	return handle, nil
}

func (m *MessengerStub) SendMedia(ctx context.Context, chatID int64, mediaRef, caption string) (model.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return model.Handle{}, m.SendErr
	}
	handle := model.Handle{ChatID: chatID, MessageID: m.nextID}
	m.nextID++
	m.Sent = append(m.Sent, SentMessage{ChatID: chatID, Text: caption, Media: mediaRef, Handle: handle})
	return handle, nil
}

func (m *MessengerStub) Edit(ctx context.Context, handle model.Handle, text string, buttons [][]botapi.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EditErr != nil {
		return m.EditErr
	}
	m.Sent = append(m.Sent, SentMessage{ChatID: handle.ChatID, Text: text, Buttons: buttons, Edited: true, Handle: handle})
	return nil
}

func (m *MessengerStub) Delete(ctx context.Context, handle model.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.DeleteErrFor[handle.MessageID]; ok {
		return err
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, handle)
	return nil
}

// LastTo returns the most recent message recorded for the chat, if any.
func (m *MessengerStub) LastTo(chatID int64) (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Sent) - 1; i >= 0; i-- {
		if m.Sent[i].ChatID == chatID {
			return m.Sent[i], true
		}
	}
	return SentMessage{}, false
}

// SentTo returns every message recorded for the chat.
func (m *MessengerStub) SentTo(chatID int64) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []SentMessage
	for _, msg := range m.Sent {
		if msg.ChatID == chatID {
			result = append(result, msg)
		}
	}
	return result
}

// SentCount returns the number of recorded outbound operations.
func (m *MessengerStub) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
