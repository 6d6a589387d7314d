package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ReplyKind tags the chat reply variant.
type ReplyKind string

const (
	ReplyText      ReplyKind = "text"
	ReplyIdeaCards ReplyKind = "idea_cards"
)

// IdeaCard is a rich suggestion the assistant can return alongside or
// instead of plain prose.
type IdeaCard struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}

// ChatReply is the tagged chat response variant: plain text or a list of
// idea cards, validated at the collaborator boundary.
type ChatReply struct {
	Kind  ReplyKind
	Text  string
	Cards []IdeaCard
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type chatMessageRequest struct {
	Text   string       `json:"text"`
	Images []ImageInput `json:"images,omitempty"`
}

type chatMessageResponse struct {
	Text  string     `json:"text"`
	Cards []IdeaCard `json:"cards,omitempty"`
}

// cardDelimiter is the legacy convention where the model embeds a JSON card
// array inside its prose between two markers. Tolerated on input; new
// responses carry cards in a structured field instead.
const cardDelimiter = "%%%IDEAS%%%"

// CreateChatSession opens a stateful conversation and returns its id.
func (c *Client) CreateChatSession(ctx context.Context) (string, error) {
	var result createSessionResponse
	if err := c.post(ctx, "/chat/sessions", struct{}{}, &result); err != nil {
		return "", err
	}
	if result.SessionID == "" {
		return "", fmt.Errorf("chat session response has no session id")
	}
	return result.SessionID, nil
}

// SendChatMessage sends one text+image turn in an existing session.
func (c *Client) SendChatMessage(ctx context.Context, sessionID, text string, images []ImageInput) (*ChatReply, error) {
	var result chatMessageResponse
	req := chatMessageRequest{Text: text, Images: images}
	if err := c.post(ctx, "/chat/sessions/"+sessionID+"/messages", req, &result); err != nil {
		return nil, err
	}
	return parseReply(result.Text, result.Cards)
}

// parseReply builds the tagged variant, extracting delimiter-embedded cards
// when the collaborator still uses the legacy convention.
func parseReply(text string, cards []IdeaCard) (*ChatReply, error) {
	if len(cards) == 0 {
		var err error
		text, cards, err = extractDelimitedCards(text)
		if err != nil {
			return nil, err
		}
	}
	if len(cards) > 0 {
		for _, card := range cards {
			if card.Title == "" {
				return nil, fmt.Errorf("chat reply contains an idea card without a title")
			}
		}
		return &ChatReply{Kind: ReplyIdeaCards, Text: text, Cards: cards}, nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chat reply is empty")
	}
	return &ChatReply{Kind: ReplyText, Text: text}, nil
}

func extractDelimitedCards(text string) (string, []IdeaCard, error) {
	start := strings.Index(text, cardDelimiter)
	if start < 0 {
		return text, nil, nil
	}
	rest := text[start+len(cardDelimiter):]
	end := strings.Index(rest, cardDelimiter)
	if end < 0 {
		return "", nil, fmt.Errorf("chat reply has an unterminated idea card block")
	}

	var cards []IdeaCard
	if err := json.Unmarshal([]byte(strings.TrimSpace(rest[:end])), &cards); err != nil {
		return "", nil, fmt.Errorf("failed to decode idea card block: %w", err)
	}

	prose := strings.TrimSpace(text[:start] + rest[end+len(cardDelimiter):])
	return prose, cards, nil
}
