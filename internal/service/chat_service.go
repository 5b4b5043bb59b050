package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/ai"
	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/pkg/errs"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
	"github.com/kommunelab/lovassistent/internal/retrieval"
)

const systemInstruction = `Du er en juridisk assistent for ansatte i en norsk kommune.
Svar alltid på norsk. Bruk lovutdragene under som grunnlag for svaret og vis til
paragrafnummer der det er relevant. Si tydelig ifra dersom lovutdragene ikke
dekker spørsmålet, og gjett aldri på lovinnhold.`

const defaultHistoryLimit = 20

// Retriever is the retrieval entry point the chat service depends on.
type Retriever interface {
	Retrieve(ctx context.Context, prompt string, opts retrieval.Options) (*retrieval.Result, error)
}

// ChatStore persists sessions and their messages.
type ChatStore interface {
	CreateSession(ctx context.Context, session *model.ChatSession) error
	AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error)
}

type ChatRequest struct {
	SessionID string
	Prompt    string
	// Context carries optional caller-supplied background, e.g. details of
	// the case the question concerns.
	Context string
	// LawID restricts retrieval to one law.
	LawID string
}

type ChatReply struct {
	SessionID string
	Answer    string
	Links     []retrieval.LawLink
}

type ChatService struct {
	retriever       Retriever
	generator       ai.IGenerator
	chats           ChatStore
	maxContextWords int
	threshold       float64
	historyLimit    int
}

func NewChatService(retriever Retriever, generator ai.IGenerator, chats ChatStore, maxContextWords int, threshold float64) *ChatService {
	return &ChatService{
		retriever:       retriever,
		generator:       generator,
		chats:           chats,
		maxContextWords: maxContextWords,
		threshold:       threshold,
		historyLimit:    defaultHistoryLimit,
	}
}

// Chat answers one user prompt grounded on retrieved law context and the
// session history, then persists both sides of the exchange.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", errs.ErrInvalid)
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", sessionID))
	now := time.Now().Unix()

	if err := s.chats.CreateSession(ctx, &model.ChatSession{SessionID: sessionID, Ctime: now}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	history, err := s.chats.ListMessages(ctx, sessionID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	result, err := s.retriever.Retrieve(ctx, req.Prompt, retrieval.Options{LawID: req.LawID})
	if err != nil {
		logger.Error("law retrieval failed", zap.Error(err))
		return nil, err
	}
	relevant := dropIrrelevant(result, s.threshold)
	contextBlock, links := retrieval.BuildContext(relevant, s.maxContextWords)
	logger.Info("assembled law context",
		zap.Int("paragraphs", len(relevant.Paragraphs)),
		zap.Int("included", len(links)))

	answer, err := s.generator.Generate(ctx, buildPrompt(history, contextBlock, req.Context, req.Prompt))
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return nil, err
	}
	if rendered := retrieval.RenderLinks(links); rendered != "" {
		answer = answer + "\n\n" + rendered
	}

	if err := s.chats.AppendMessage(ctx, &model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleUser,
		Content:   req.Prompt,
		Ctime:     now,
	}); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}
	if err := s.chats.AppendMessage(ctx, &model.ChatMessage{
		SessionID: sessionID,
		Role:      model.RoleAssistant,
		Content:   answer,
		Ctime:     time.Now().Unix(),
	}); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}
	return &ChatReply{SessionID: sessionID, Answer: answer, Links: links}, nil
}

// History returns the stored conversation of a session, oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", errs.ErrInvalid)
	}
	return s.chats.ListMessages(ctx, sessionID, 0)
}

// dropIrrelevant removes paragraphs whose cosine distance to the query
// exceeds the relevance threshold. The cutoff lives here rather than in the
// retriever so raw searches keep returning everything.
func dropIrrelevant(result *retrieval.Result, threshold float64) *retrieval.Result {
	if result == nil || threshold <= 0 {
		return result
	}
	kept := make([]model.ParagraphHit, 0, len(result.Paragraphs))
	for _, hit := range result.Paragraphs {
		if hit.Distance <= threshold {
			kept = append(kept, hit)
		}
	}
	return &retrieval.Result{
		Laws:           result.Laws,
		Paragraphs:     kept,
		ParagraphsText: result.ParagraphsText,
	}
}

func buildPrompt(history []model.ChatMessage, lawContext, extraContext, prompt string) string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	if lawContext != "" {
		b.WriteString("\n\nLovutdrag:\n")
		b.WriteString(lawContext)
	}
	if extraContext != "" {
		b.WriteString("\n\nBakgrunn fra bruker:\n")
		b.WriteString(extraContext)
	}
	if len(history) > 0 {
		b.WriteString("\n\nTidligere samtale:\n")
		for _, msg := range history {
			role := "Bruker"
			if msg.Role == model.RoleAssistant {
				role = "Assistent"
			}
			b.WriteString(role)
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\nSpørsmål: ")
	b.WriteString(prompt)
	return b.String()
}
