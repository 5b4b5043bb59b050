package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/pkg/errs"
	"github.com/kommunelab/lovassistent/internal/retrieval"
)

type fakeRetriever struct {
	result *retrieval.Result
	err    error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, prompt string, opts retrieval.Options) (*retrieval.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeChatStore struct {
	sessions []*model.ChatSession
	messages []*model.ChatMessage
	history  []model.ChatMessage
}

func (f *fakeChatStore) CreateSession(ctx context.Context, session *model.ChatSession) error {
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeChatStore) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeChatStore) ListMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	return f.history, nil
}

func retrieved() *retrieval.Result {
	return &retrieval.Result{
		Laws: []model.LawHit{{LawID: "nl-20180615-038", Metadata: model.Metadata{"Tittel": "Hundeloven"}}},
		Paragraphs: []model.ParagraphHit{
			{ParagraphNumber: "§ 2", Text: "Hunder skal holdes i bånd.", LawID: "nl-20180615-038", Distance: 0.10},
			{ParagraphNumber: "§ 9", Text: "Unntak fra sikringsreglene.", LawID: "nl-20180615-038", Distance: 0.40},
		},
	}
}

func TestChatRejectsBlankPrompt(t *testing.T) {
	svc := NewChatService(&fakeRetriever{}, &fakeGenerator{}, &fakeChatStore{}, 400, 0.27)
	if _, err := svc.Chat(context.Background(), ChatRequest{Prompt: "   "}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestChatDropsParagraphsPastThreshold(t *testing.T) {
	gen := &fakeGenerator{answer: "Svar."}
	svc := NewChatService(&fakeRetriever{result: retrieved()}, gen, &fakeChatStore{}, 400, 0.27)

	reply, err := svc.Chat(context.Background(), ChatRequest{Prompt: "båndtvang"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(gen.prompt, "Hunder skal holdes i bånd.") {
		t.Fatalf("relevant paragraph missing from prompt:\n%s", gen.prompt)
	}
	if strings.Contains(gen.prompt, "Unntak fra sikringsreglene.") {
		t.Fatalf("paragraph past the threshold leaked into prompt:\n%s", gen.prompt)
	}
	if len(reply.Links) != 1 || reply.Links[0].Label != "2" {
		t.Fatalf("unexpected links: %v", reply.Links)
	}
}

func TestChatAppendsRenderedLinks(t *testing.T) {
	svc := NewChatService(&fakeRetriever{result: retrieved()}, &fakeGenerator{answer: "Svar."}, &fakeChatStore{}, 400, 0.27)
	reply, err := svc.Chat(context.Background(), ChatRequest{Prompt: "båndtvang"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.HasPrefix(reply.Answer, "Svar.") {
		t.Fatalf("answer = %q", reply.Answer)
	}
	if !strings.Contains(reply.Answer, retrieval.LinksHeading) {
		t.Fatalf("law links not appended: %q", reply.Answer)
	}
	if !strings.Contains(reply.Answer, "[Hundeloven §2](https://lovdata.no/lov/2018-06-15-38/§2)") {
		t.Fatalf("link missing: %q", reply.Answer)
	}
}

func TestChatPersistsBothMessages(t *testing.T) {
	store := &fakeChatStore{}
	svc := NewChatService(&fakeRetriever{result: &retrieval.Result{}}, &fakeGenerator{answer: "Svar."}, store, 400, 0.27)

	reply, err := svc.Chat(context.Background(), ChatRequest{Prompt: "spørsmål"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a generated session id")
	}
	if len(store.sessions) != 1 || store.sessions[0].SessionID != reply.SessionID {
		t.Fatalf("sessions = %v", store.sessions)
	}
	if len(store.messages) != 2 {
		t.Fatalf("messages = %d", len(store.messages))
	}
	if store.messages[0].Role != model.RoleUser || store.messages[0].Content != "spørsmål" {
		t.Fatalf("first message = %+v", store.messages[0])
	}
	if store.messages[1].Role != model.RoleAssistant || store.messages[1].Content != reply.Answer {
		t.Fatalf("second message = %+v", store.messages[1])
	}
}

func TestChatStampsSessionAndMessages(t *testing.T) {
	store := &fakeChatStore{}
	svc := NewChatService(&fakeRetriever{result: &retrieval.Result{}}, &fakeGenerator{answer: "Svar."}, store, 400, 0.27)

	before := time.Now().Unix()
	if _, err := svc.Chat(context.Background(), ChatRequest{Prompt: "spørsmål"}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(store.sessions) != 1 || store.sessions[0].Ctime < before {
		t.Fatalf("session ctime = %d, want >= %d", store.sessions[0].Ctime, before)
	}
	for i, msg := range store.messages {
		if msg.Ctime < before {
			t.Errorf("message %d (%s) ctime = %d, want >= %d", i, msg.Role, msg.Ctime, before)
		}
	}
}

func TestChatIncludesHistoryAndContext(t *testing.T) {
	gen := &fakeGenerator{answer: "Svar."}
	store := &fakeChatStore{history: []model.ChatMessage{
		{Role: model.RoleUser, Content: "Hva sier hundeloven?"},
		{Role: model.RoleAssistant, Content: "Hundeloven regulerer hundehold."},
	}}
	svc := NewChatService(&fakeRetriever{result: &retrieval.Result{}}, gen, store, 400, 0.27)

	_, err := svc.Chat(context.Background(), ChatRequest{
		SessionID: "abc",
		Prompt:    "Gjelder det også i byen?",
		Context:   "Kommunen vurderer lokal forskrift.",
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	for _, want := range []string{
		"Bruker: Hva sier hundeloven?",
		"Assistent: Hundeloven regulerer hundehold.",
		"Kommunen vurderer lokal forskrift.",
		"Spørsmål: Gjelder det også i byen?",
	} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChatPropagatesGeneratorFailure(t *testing.T) {
	store := &fakeChatStore{}
	svc := NewChatService(&fakeRetriever{result: &retrieval.Result{}}, &fakeGenerator{err: errors.New("quota")}, store, 400, 0.27)
	if _, err := svc.Chat(context.Background(), ChatRequest{Prompt: "spørsmål"}); err == nil {
		t.Fatal("expected generator failure to propagate")
	}
	if len(store.messages) != 0 {
		t.Fatal("no messages must be stored when generation fails")
	}
}
