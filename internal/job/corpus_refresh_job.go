package job

import (
	"context"

	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/ingest"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
)

// CorpusRefreshJob rebuilds the law corpus from the publisher on a schedule,
// so amendments show up without a redeploy.
type CorpusRefreshJob struct {
	pipeline *ingest.Pipeline
}

func NewCorpusRefreshJob(pipeline *ingest.Pipeline) *CorpusRefreshJob {
	return &CorpusRefreshJob{pipeline: pipeline}
}

func (j *CorpusRefreshJob) Name() string {
	return "corpus_refresh"
}

func (j *CorpusRefreshJob) Run(ctx context.Context) error {
	report, err := j.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("corpus refresh report",
		zap.Int("wanted", report.Wanted),
		zap.Int("found", report.Found),
		zap.Strings("missing", report.Missing),
		zap.Int("laws", report.Laws),
		zap.Int("paragraphs", report.Paragraphs),
		zap.Int("errors", report.Errors))
	return nil
}
