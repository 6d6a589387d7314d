package genai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"genieus-backend/internal/genai"
)

func chatServer(t *testing.T, reply map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/sessions":
			json.NewEncoder(w).Encode(map[string]any{"session_id": "sess-1"})
		case "/chat/sessions/sess-1/messages":
			json.NewEncoder(w).Encode(reply)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestSendChatMessage_PlainText(t *testing.T) {
	server := chatServer(t, map[string]any{"text": "Try a sunset palette."})
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	sessionID, err := client.CreateChatSession(context.Background())
	require.NoError(t, err)

	reply, err := client.SendChatMessage(context.Background(), sessionID, "color ideas?", nil)
	require.NoError(t, err)
	assert.Equal(t, genai.ReplyText, reply.Kind)
	assert.Equal(t, "Try a sunset palette.", reply.Text)
	assert.Empty(t, reply.Cards)
}

func TestSendChatMessage_StructuredCards(t *testing.T) {
	server := chatServer(t, map[string]any{
		"text": "Here are two directions.",
		"cards": []map[string]any{
			{"title": "Minimal", "description": "clean studio shot", "prompt": "minimal studio ad"},
			{"title": "Bold", "prompt": "vivid color blocking"},
		},
	})
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	reply, err := client.SendChatMessage(context.Background(), "sess-1", "ideas", nil)
	require.NoError(t, err)
	assert.Equal(t, genai.ReplyIdeaCards, reply.Kind)
	require.Len(t, reply.Cards, 2)
	assert.Equal(t, "Minimal", reply.Cards[0].Title)
}

func TestSendChatMessage_LegacyDelimitedCards(t *testing.T) {
	server := chatServer(t, map[string]any{
		"text": "Some thoughts first. %%%IDEAS%%%[{\"title\":\"Retro\",\"prompt\":\"70s print ad\"}]%%%IDEAS%%% And a closing note.",
	})
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	reply, err := client.SendChatMessage(context.Background(), "sess-1", "ideas", nil)
	require.NoError(t, err)
	assert.Equal(t, genai.ReplyIdeaCards, reply.Kind)
	require.Len(t, reply.Cards, 1)
	assert.Equal(t, "Retro", reply.Cards[0].Title)
	// Prose around the block is kept, the block itself is not.
	assert.NotContains(t, reply.Text, "%%%IDEAS%%%")
	assert.Contains(t, reply.Text, "Some thoughts first.")
	assert.Contains(t, reply.Text, "And a closing note.")
}

func TestSendChatMessage_UnterminatedCardBlock(t *testing.T) {
	server := chatServer(t, map[string]any{
		"text": "Ideas: %%%IDEAS%%%[{\"title\":\"Broken\"}]",
	})
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	_, err := client.SendChatMessage(context.Background(), "sess-1", "ideas", nil)
	assert.ErrorContains(t, err, "unterminated")
}

func TestSendChatMessage_CardWithoutTitle(t *testing.T) {
	server := chatServer(t, map[string]any{
		"text":  "ideas",
		"cards": []map[string]any{{"description": "no title"}},
	})
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	_, err := client.SendChatMessage(context.Background(), "sess-1", "ideas", nil)
	assert.ErrorContains(t, err, "without a title")
}

func TestSendChatMessage_EmptyReply(t *testing.T) {
	server := chatServer(t, map[string]any{"text": "   "})
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	_, err := client.SendChatMessage(context.Background(), "sess-1", "hello", nil)
	assert.ErrorContains(t, err, "empty")
}
