package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kommunelab/lovassistent/internal/pkg/errcode"
	"github.com/kommunelab/lovassistent/internal/pkg/response"
	"github.com/kommunelab/lovassistent/internal/retrieval"
	"github.com/kommunelab/lovassistent/internal/service"
)

type ChatHandler struct {
	chats *service.ChatService
}

func NewChatHandler(chats *service.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	Context   string `json:"context"`
	LawID     string `json:"law_id"`
}

type chatResponse struct {
	SessionID string              `json:"session_id"`
	Answer    string              `json:"answer"`
	Links     []retrieval.LawLink `json:"links,omitempty"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	reply, err := h.chats.Chat(c.Request.Context(), service.ChatRequest{
		SessionID: req.SessionID,
		Prompt:    req.Prompt,
		Context:   req.Context,
		LawID:     req.LawID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chatResponse{
		SessionID: reply.SessionID,
		Answer:    reply.Answer,
		Links:     reply.Links,
	})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Ctime   int64  `json:"ctime"`
}

func (h *ChatHandler) History(c *gin.Context) {
	messages, err := h.chats.History(c.Request.Context(), c.Param("session"))
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, chatMessage{Role: msg.Role, Content: msg.Content, Ctime: msg.Ctime})
	}
	response.Success(c, gin.H{"messages": out})
}
