package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"genieus-backend/internal/chat"
	"genieus-backend/internal/genai"
	"genieus-backend/internal/models"
	"genieus-backend/internal/store"
)

type ChatHandler struct {
	chats *chat.Manager
	store store.Store
}

func NewChatHandler(chats *chat.Manager, st store.Store) *ChatHandler {
	return &ChatHandler{chats: chats, store: st}
}

// SendMessage godoc
// @Summary     Send a chat message
// @Description Sends one message to the creative assistant, optionally attaching previously uploaded assets as image context. Chat does not cost credits.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ChatMessageRequest true "Message text and optional asset ids"
// @Success     200 {object} models.ChatMessageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "text is required"})
		return
	}

	var images []genai.ImageInput
	for _, id := range req.AssetIDs {
		a, err := h.store.Asset(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown asset " + id})
			return
		}
		images = append(images, genai.ImageInput{MimeType: a.MimeType, Data: a.Data})
	}

	reply, err := h.chats.Send(c.Request.Context(), userID, req.Text, images)
	if err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "chat failed", Message: err.Error()})
		return
	}

	resp := models.ChatMessageResponse{
		Role: "assistant",
		Text: reply.Text,
		Kind: string(reply.Kind),
	}
	if len(reply.Cards) > 0 {
		resp.Cards = reply.Cards
	}
	c.JSON(http.StatusOK, resp)
}

// GetTranscript godoc
// @Summary     Get the chat transcript
// @Description Returns the user's conversation so far, oldest first.
// @Tags        chat
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ChatTranscriptResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /chat/messages [get]
func (h *ChatHandler) GetTranscript(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	transcript := h.chats.Transcript(userID)
	messages := make([]models.ChatMessageResponse, len(transcript))
	for i, m := range transcript {
		kind := genai.ReplyText
		if len(m.Cards) > 0 {
			kind = genai.ReplyIdeaCards
		}
		messages[i] = models.ChatMessageResponse{
			Role: m.Role,
			Text: m.Text,
			Kind: string(kind),
		}
		if len(m.Cards) > 0 {
			messages[i].Cards = m.Cards
		}
	}

	c.JSON(http.StatusOK, models.ChatTranscriptResponse{Messages: messages})
}

// ResetChat godoc
// @Summary     Reset the conversation
// @Description Drops the transcript and starts a fresh remote session on the next message.
// @Tags        chat
// @Produce     json
// @Security    Bearer
// @Success     200 {object} map[string]string
// @Failure     401 {object} models.ErrorResponse
// @Router      /chat [delete]
func (h *ChatHandler) ResetChat(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	h.chats.Reset(userID)
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
