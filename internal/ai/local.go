package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
)

// localEmbedder runs a sentence-transformer ONNX model in-process through
// hugot. Loading the weights is expensive, so the pipeline is built exactly
// once under sync.Once; concurrent first calls block until it is ready and
// later calls share the read-only pipeline.
type localEmbedder struct {
	model    string
	modelDir string
	dim      int

	once    sync.Once
	loadErr error
	embed   func(text string) ([]float32, error)
}

func (e *localEmbedder) ModelName() string {
	return e.model
}

func (e *localEmbedder) Dimension() int {
	return e.dim
}

func (e *localEmbedder) load() {
	modelPath, err := prepareModel(e.model, e.modelDir)
	if err != nil {
		e.loadErr = err
		return
	}
	session, err := hugot.NewGoSession()
	if err != nil {
		e.loadErr = fmt.Errorf("create hugot session: %w", err)
		return
	}
	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "law-embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			e.loadErr = fmt.Errorf("create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
			return
		}
		e.loadErr = fmt.Errorf("create embedding pipeline: %w", err)
		return
	}
	e.embed = func(text string) ([]float32, error) {
		result, err := pipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, err
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}
}

func (e *localEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	_ = taskType // the local model has no task-specific heads
	e.once.Do(e.load)
	if e.loadErr != nil {
		return nil, e.loadErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	embedding, err := e.embed(text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(embedding) != e.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(embedding), e.dim)
	}
	return embedding, nil
}

// prepareModel downloads the ONNX model on first use and returns its path.
func prepareModel(modelName, modelDir string) (string, error) {
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0o755); err != nil {
			return "", fmt.Errorf("create model directory: %w", err)
		}
		opts := hugot.NewDownloadOptions()
		opts.OnnxFilePath = "onnx/model.onnx"
		downloaded, err := hugot.DownloadModel(modelName, modelDir, opts)
		if err != nil {
			return "", fmt.Errorf("download model %s: %w", modelName, err)
		}
		modelPath = downloaded
	}
	return modelPath, nil
}

func createLocalEmbedder(args EmbedderArgs) (IEmbedder, error) {
	if args.Model == "" {
		return nil, fmt.Errorf("embedding.model is required for the local provider")
	}
	return &localEmbedder{
		model:    args.Model,
		modelDir: args.ModelDir,
		dim:      args.Dimension,
	}, nil
}

func init() {
	RegisterEmbedder("local", createLocalEmbedder)
}
