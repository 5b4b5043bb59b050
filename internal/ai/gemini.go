package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiProvider struct {
	apiKey string
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

type geminiEmbedder struct {
	apiKey string
	model  string
	dim    int
}

func (p *geminiEmbedder) ModelName() string {
	return p.model
}

func (p *geminiEmbedder) Dimension() int {
	return p.dim
}

func (p *geminiEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	dim := int32(p.dim)
	cfg := &genai.EmbedContentConfig{OutputDimensionality: &dim}
	if taskType != "" {
		cfg.TaskType = taskType
	}
	resp, err := client.Models.EmbedContent(
		ctx,
		p.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		cfg,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding values returned")
	}
	values := resp.Embeddings[0].Values
	if len(values) != p.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(values), p.dim)
	}
	return values, nil
}

func createGeminiProvider(args interface{}) (IProvider, error) {
	cfg := &geminiConfig{}
	if args != nil {
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return &geminiProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func createGeminiEmbedder(args EmbedderArgs) (IEmbedder, error) {
	cfg := &geminiConfig{}
	if args.Extra != nil {
		if err := decodeConfig(args.Extra, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return &geminiEmbedder{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  args.Model,
		dim:    args.Dimension,
	}, nil
}

func init() {
	Register("gemini", createGeminiProvider)
	RegisterEmbedder("gemini", createGeminiEmbedder)
}
