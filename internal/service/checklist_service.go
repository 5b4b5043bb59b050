package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/ai"
	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/pkg/errs"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
	"github.com/kommunelab/lovassistent/internal/retrieval"
)

const checklistInstruction = `Du er en juridisk assistent for ansatte i en norsk kommune.
Lag en praktisk sjekkliste for temaet under, basert på lovutdragene.
Svar kun med en markdown-punktliste, ett punkt per linje, uten innledning
eller avslutning.`

type ChecklistService struct {
	retriever       Retriever
	generator       ai.IGenerator
	maxContextWords int
	threshold       float64
}

func NewChecklistService(retriever Retriever, generator ai.IGenerator, maxContextWords int, threshold float64) *ChecklistService {
	return &ChecklistService{
		retriever:       retriever,
		generator:       generator,
		maxContextWords: maxContextWords,
		threshold:       threshold,
	}
}

// Generate builds a checklist for a topic grounded on retrieved law context.
func (s *ChecklistService) Generate(ctx context.Context, topic string) ([]model.ChecklistItem, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("%w: topic is required", errs.ErrInvalid)
	}
	logger := logutil.GetLogger(ctx)

	result, err := s.retriever.Retrieve(ctx, topic, retrieval.Options{})
	if err != nil {
		logger.Error("law retrieval failed", zap.Error(err))
		return nil, err
	}
	contextBlock, _ := retrieval.BuildContext(dropIrrelevant(result, s.threshold), s.maxContextWords)

	var b strings.Builder
	b.WriteString(checklistInstruction)
	if contextBlock != "" {
		b.WriteString("\n\nLovutdrag:\n")
		b.WriteString(contextBlock)
	}
	b.WriteString("\n\nTema: ")
	b.WriteString(topic)

	answer, err := s.generator.Generate(ctx, b.String())
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return nil, err
	}
	items := ParseChecklist(answer)
	logger.Info("generated checklist", zap.String("topic", topic), zap.Int("items", len(items)))
	return items, nil
}

// ParseChecklist extracts the list items of a markdown document. Task list
// markers carry over into Done, surrounding prose is ignored.
func ParseChecklist(markdown string) []model.ChecklistItem {
	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var items []model.ChecklistItem
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		li, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}
		if item, ok := parseListItem(li, source); ok {
			items = append(items, item)
		}
		return ast.WalkContinue, nil
	})
	return items
}

func parseListItem(li *ast.ListItem, source []byte) (model.ChecklistItem, bool) {
	var item model.ChecklistItem
	var b strings.Builder
	_ = ast.Walk(li, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.List:
			// Nested lists become items of their own.
			return ast.WalkSkipChildren, nil
		case *east.TaskCheckBox:
			item.Done = node.IsChecked
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	item.Text = strings.TrimSpace(b.String())
	return item, item.Text != ""
}
