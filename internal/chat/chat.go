// Package chat keeps one assistant conversation per user. The remote session
// lives at the collaborator; this side keeps the transcript so the client can
// rerender it and so a lost remote session can be detected.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"genieus-backend/internal/genai"
)

// Message is one transcript entry, either side of the conversation.
type Message struct {
	Role  string           `json:"role"` // "user" or "assistant"
	Text  string           `json:"text,omitempty"`
	Cards []genai.IdeaCard `json:"cards,omitempty"`
	At    time.Time        `json:"at"`
}

type thread struct {
	mu         sync.Mutex
	remoteID   string
	transcript []Message
}

// Manager hands out chat threads keyed by user id. Threads are in-memory
// only; a restart starts every conversation fresh.
type Manager struct {
	gen *genai.Client

	mu      sync.Mutex
	threads map[uuid.UUID]*thread
}

func NewManager(gen *genai.Client) *Manager {
	return &Manager{
		gen:     gen,
		threads: make(map[uuid.UUID]*thread),
	}
}

func (m *Manager) threadFor(userID uuid.UUID) *thread {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.threads[userID]
	if !ok {
		t = &thread{}
		m.threads[userID] = t
	}
	return t
}

// Send delivers one user turn and returns the assistant's reply. The remote
// session is created lazily on the first message.
func (m *Manager) Send(ctx context.Context, userID uuid.UUID, text string, images []genai.ImageInput) (*genai.ChatReply, error) {
	t := m.threadFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remoteID == "" {
		id, err := m.gen.CreateChatSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open chat session: %w", err)
		}
		t.remoteID = id
	}

	reply, err := m.gen.SendChatMessage(ctx, t.remoteID, text, images)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t.transcript = append(t.transcript,
		Message{Role: "user", Text: text, At: now},
		Message{Role: "assistant", Text: reply.Text, Cards: reply.Cards, At: now},
	)
	return reply, nil
}

// Transcript returns a copy of the user's conversation so far.
func (m *Manager) Transcript(userID uuid.UUID) []Message {
	t := m.threadFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.transcript))
	copy(out, t.transcript)
	return out
}

// Reset drops the transcript and the remote session binding.
func (m *Manager) Reset(userID uuid.UUID) {
	t := m.threadFor(userID)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remoteID = ""
	t.transcript = nil
}
