package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/ai"
	"github.com/kommunelab/lovassistent/internal/filestore"
	"github.com/kommunelab/lovassistent/internal/lovdata"
	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
)

// Fetcher lists and downloads publisher archives.
type Fetcher interface {
	ListFiles(ctx context.Context) ([]lovdata.FileInfo, error)
	DownloadFile(ctx context.Context, filename string, outDir string) (string, error)
}

type LawStore interface {
	Insert(ctx context.Context, law *model.Law) error
}

type ParagraphStore interface {
	Insert(ctx context.Context, p *model.Paragraph) error
}

// Config wires a corpus rebuild.
type Config struct {
	Fetcher    Fetcher
	Embedder   ai.IEmbedder
	Laws       LawStore
	Paragraphs ParagraphStore
	// Clear truncates the corpus tables before reinsertion.
	Clear func(ctx context.Context) error
	// Archive, when set, receives each source document before it is
	// removed from the work directory.
	Archive filestore.Store
	WorkDir string
	LawIDs  []string
}

// Report summarizes one corpus rebuild. A missing source file is not a
// failure, the shortfall is reported and ingestion proceeds with the rest.
type Report struct {
	Wanted     int
	Found      int
	Missing    []string
	Laws       int
	Paragraphs int
	Errors     int
}

type Pipeline struct {
	cfg Config
}

func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run rebuilds the corpus: fetch the publisher archives, extract the wanted
// documents, truncate the tables and reinsert every law with its paragraph
// records. Per-record failures are logged and counted, not fatal.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	logger := logutil.GetLogger(ctx)

	wanted, err := lovdata.FormatLawIDs(p.cfg.LawIDs)
	if err != nil {
		return nil, err
	}
	report := &Report{Wanted: len(wanted)}
	if err := os.MkdirAll(p.cfg.WorkDir, 0o755); err != nil {
		return nil, err
	}

	if err := p.fetchArchives(ctx, wanted, report); err != nil {
		return nil, err
	}
	available := p.availableFiles(wanted)
	report.Found = len(available)
	report.Missing = missingFiles(wanted, available)
	logger.Info("fetched source documents",
		zap.Int("found", report.Found),
		zap.Int("wanted", report.Wanted))
	for _, name := range report.Missing {
		logger.Warn("source document not found", zap.String("filename", name))
	}

	if err := p.cfg.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear corpus: %w", err)
	}
	for _, name := range available {
		p.ingestDocument(ctx, name, report)
	}
	logger.Info("corpus rebuild finished",
		zap.Int("laws", report.Laws),
		zap.Int("paragraphs", report.Paragraphs),
		zap.Int("errors", report.Errors))
	return report, nil
}

func (p *Pipeline) fetchArchives(ctx context.Context, wanted map[string]struct{}, report *Report) error {
	logger := logutil.GetLogger(ctx)
	files, err := p.cfg.Fetcher.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("list publisher files: %w", err)
	}
	for _, file := range files {
		if !strings.HasSuffix(file.Filename, ".tar.bz2") {
			continue
		}
		path := filepath.Join(p.cfg.WorkDir, file.Filename)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			downloaded, err := p.cfg.Fetcher.DownloadFile(ctx, file.Filename, p.cfg.WorkDir)
			if err != nil {
				logger.Error("download archive failed", zap.String("filename", file.Filename), zap.Error(err))
				report.Errors++
				continue
			}
			path = downloaded
		}
		if _, err := lovdata.ExtractSelected(path, wanted, p.cfg.WorkDir); err != nil {
			logger.Error("extract archive failed", zap.String("filename", file.Filename), zap.Error(err))
			report.Errors++
		}
		os.Remove(path)
	}
	return nil
}

func (p *Pipeline) availableFiles(wanted map[string]struct{}) []string {
	var available []string
	for name := range wanted {
		if _, err := os.Stat(filepath.Join(p.cfg.WorkDir, name)); err == nil {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}

func missingFiles(wanted map[string]struct{}, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[name] = struct{}{}
	}
	var missing []string
	for name := range wanted {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func (p *Pipeline) ingestDocument(ctx context.Context, filename string, report *Report) {
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename))
	path := filepath.Join(p.cfg.WorkDir, filename)
	lawID := strings.TrimSuffix(filename, filepath.Ext(filename))

	f, err := os.Open(path)
	if err != nil {
		logger.Error("open source document failed", zap.Error(err))
		report.Errors++
		return
	}
	doc, err := lovdata.ParseDocument(f)
	f.Close()
	if err != nil {
		logger.Error("parse source document failed", zap.Error(err))
		report.Errors++
		return
	}

	lawText := buildLawText(doc)
	if strings.TrimSpace(lawText) == "" {
		logger.Warn("no text found in source document")
		return
	}
	embedding, err := p.cfg.Embedder.Embed(ctx, lawText, "RETRIEVAL_DOCUMENT")
	if err != nil {
		logger.Error("embed law failed", zap.Error(err))
		report.Errors++
		return
	}
	if err := p.cfg.Laws.Insert(ctx, &model.Law{
		LawID:     lawID,
		Text:      lawText,
		Metadata:  doc.Metadata,
		Embedding: embedding,
	}); err != nil {
		// The paragraphs are still usable without the law record, the
		// retriever tolerates the dangling reference.
		logger.Error("store law failed", zap.Error(err))
		report.Errors++
	} else {
		report.Laws++
	}

	count := 0
	for idx, article := range doc.Articles {
		number := article.Title
		if number == "" {
			number = fmt.Sprintf("§%d", idx+1)
		}
		for pIdx, text := range article.Paragraphs {
			if strings.TrimSpace(text) == "" {
				continue
			}
			if err := p.insertParagraph(ctx, lawID, number, article.Title, idx+1, pIdx+1, text); err != nil {
				logger.Error("store paragraph failed",
					zap.String("paragraph_number", number), zap.Error(err))
				report.Errors++
				continue
			}
			count++
		}
	}
	report.Paragraphs += count
	logger.Info("ingested source document", zap.Int("paragraphs", count))

	p.archiveAndRemove(ctx, filename, path)
}

func (p *Pipeline) insertParagraph(ctx context.Context, lawID, number, articleTitle string, idx, pIdx int, text string) error {
	embedding, err := p.cfg.Embedder.Embed(ctx, text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return fmt.Errorf("embed paragraph: %w", err)
	}
	return p.cfg.Paragraphs.Insert(ctx, &model.Paragraph{
		ParagraphID:     fmt.Sprintf("%s_p%d_%d", lawID, idx, pIdx),
		LawID:           lawID,
		ParagraphNumber: number,
		Text:            text,
		Metadata: model.Metadata{
			"article_title":   articleTitle,
			"paragraph_index": pIdx,
		},
		Embedding: embedding,
	})
}

// archiveAndRemove moves a processed source document out of the work
// directory, through the archive store when one is configured.
func (p *Pipeline) archiveAndRemove(ctx context.Context, filename, path string) {
	logger := logutil.GetLogger(ctx)
	if p.cfg.Archive != nil {
		f, err := os.Open(path)
		if err == nil {
			err = p.cfg.Archive.Save(ctx, filename, f)
			f.Close()
		}
		if err != nil {
			logger.Error("archive source document failed",
				zap.String("filename", filename), zap.Error(err))
			return
		}
	}
	os.Remove(path)
}

// buildLawText folds a document into the single text the law embedding is
// built from: the title followed by every distinct paragraph.
func buildLawText(doc *lovdata.Document) string {
	var parts []string
	seen := map[string]struct{}{}
	if title := doc.Metadata.Title(); title != "" {
		parts = append(parts, title)
		seen[title] = struct{}{}
	}
	for _, article := range doc.Articles {
		for _, text := range article.Paragraphs {
			if text == "" {
				continue
			}
			if _, ok := seen[text]; ok {
				continue
			}
			seen[text] = struct{}{}
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
