package services

import (
	"io"
	"log/slog"
	"sync"

	"github.com/CharfiNour/enstarobots-server/realtime"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeHub records broadcasts for assertions.
type fakeHub struct {
	mu       sync.Mutex
	messages []realtime.Message
}

func (h *fakeHub) BroadcastToCategory(category string, message realtime.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	message.Category = category
	h.messages = append(h.messages, message)
}

func (h *fakeHub) BroadcastAll(message realtime.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message)
}

func (h *fakeHub) typesSent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.messages))
	for i, m := range h.messages {
		types[i] = m.Type
	}
	return types
}
