// Package retrieval implements the two-stage embedding search over the law
// corpus and the assembly of a word-budgeted context block for the LLM.
package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/ai"
	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
	"github.com/kommunelab/lovassistent/internal/textnorm"
)

const (
	DefaultKLaws       = 5
	DefaultKParagraphs = 20
)

// Opening purpose-and-scope sections are too generic to be useful context.
var sectionOneRe = regexp.MustCompile(`^§\s*1$`)

type LawSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, k int) ([]model.LawHit, error)
}

type ParagraphSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, lawIDs []string, k int) ([]model.ParagraphHit, error)
}

// Options steer one retrieval call. LawID restricts the paragraph search to
// a single law; SkipLawSearch searches paragraphs across the whole corpus.
type Options struct {
	KLaws         int
	KParagraphs   int
	LawID         string
	SkipLawSearch bool
}

// Result is the transient outcome of one retrieval. Paragraph distances are
// raw cosine distances; no relevance threshold is applied here, callers cut
// off downstream.
type Result struct {
	Laws           []model.LawHit       `json:"laws"`
	Paragraphs     []model.ParagraphHit `json:"paragraphs"`
	ParagraphsText string               `json:"paragraphs_text,omitempty"`
}

type Retriever struct {
	embedder   ai.IEmbedder
	laws       LawSearcher
	paragraphs ParagraphSearcher

	// KLaws and KParagraphs override the package defaults for calls that
	// leave Options zero. Left at zero they fall back to DefaultKLaws and
	// DefaultKParagraphs.
	KLaws       int
	KParagraphs int
}

func NewRetriever(embedder ai.IEmbedder, laws LawSearcher, paragraphs ParagraphSearcher) *Retriever {
	return &Retriever{embedder: embedder, laws: laws, paragraphs: paragraphs}
}

// Retrieve embeds the prompt once and reuses the vector for both search
// stages. A blank prompt returns an empty result without touching the
// embedder or the database.
func (r *Retriever) Retrieve(ctx context.Context, prompt string, opts Options) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return &Result{}, nil
	}
	if opts.KLaws <= 0 {
		opts.KLaws = r.KLaws
	}
	if opts.KLaws <= 0 {
		opts.KLaws = DefaultKLaws
	}
	if opts.KParagraphs <= 0 {
		opts.KParagraphs = r.KParagraphs
	}
	if opts.KParagraphs <= 0 {
		opts.KParagraphs = DefaultKParagraphs
	}
	logger := logutil.GetLogger(ctx)

	queryVec, err := r.embedder.Embed(ctx, prompt, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed prompt: %w", err)
	}

	if opts.SkipLawSearch {
		hits, err := r.paragraphs.SearchByEmbedding(ctx, queryVec, nil, opts.KParagraphs)
		if err != nil {
			return nil, fmt.Errorf("search paragraphs: %w", err)
		}
		return buildResult([]model.LawHit{}, hits), nil
	}

	if opts.LawID != "" {
		hits, err := r.paragraphs.SearchByEmbedding(ctx, queryVec, []string{opts.LawID}, opts.KParagraphs)
		if err != nil {
			return nil, fmt.Errorf("search paragraphs: %w", err)
		}
		return buildResult([]model.LawHit{{LawID: opts.LawID}}, dropSectionOne(hits)), nil
	}

	lawHits, err := r.laws.SearchByEmbedding(ctx, queryVec, opts.KLaws)
	if err != nil {
		return nil, fmt.Errorf("search laws: %w", err)
	}
	if len(lawHits) == 0 {
		logger.Debug("no laws matched prompt")
		return &Result{Laws: []model.LawHit{}, Paragraphs: []model.ParagraphHit{}}, nil
	}

	lawIDs := make([]string, 0, len(lawHits))
	for _, hit := range lawHits {
		lawIDs = append(lawIDs, hit.LawID)
	}
	paragraphHits, err := r.paragraphs.SearchByEmbedding(ctx, queryVec, lawIDs, opts.KParagraphs)
	if err != nil {
		return nil, fmt.Errorf("search paragraphs: %w", err)
	}
	logger.Debug("retrieval complete",
		zap.Int("laws", len(lawHits)),
		zap.Int("paragraphs", len(paragraphHits)),
	)
	return buildResult(lawHits, dropSectionOne(paragraphHits)), nil
}

func dropSectionOne(hits []model.ParagraphHit) []model.ParagraphHit {
	kept := make([]model.ParagraphHit, 0, len(hits))
	for _, hit := range hits {
		if sectionOneRe.MatchString(strings.TrimSpace(hit.ParagraphNumber)) {
			continue
		}
		kept = append(kept, hit)
	}
	return kept
}

func buildResult(laws []model.LawHit, paragraphs []model.ParagraphHit) *Result {
	blocks := make([]string, 0, len(paragraphs))
	for _, hit := range paragraphs {
		blocks = append(blocks, fmt.Sprintf("%s: %s", hit.ParagraphNumber, textnorm.Clean(hit.Text)))
	}
	return &Result{
		Laws:           laws,
		Paragraphs:     paragraphs,
		ParagraphsText: strings.Join(blocks, "\n\n"),
	}
}
