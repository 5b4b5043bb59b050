package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Port        int              `json:"port"`
	Database    DatabaseConfig   `json:"database"`
	Log         LogConfig        `json:"log"`
	AI          AIConfig         `json:"ai"`
	Embedding   EmbeddingConfig  `json:"embedding"`
	Lovdata     LovdataConfig    `json:"lovdata"`
	Retrieval   RetrievalConfig  `json:"retrieval"`
	Archive     ArchiveConfig    `json:"archive"`
	RefreshCron string           `json:"refresh_cron"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type LogConfig struct {
	Level   string `json:"level"`
	Console bool   `json:"console"`
	File    string `json:"file"`
}

type AIConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Timeout  int         `json:"timeout"`
	Args     interface{} `json:"args"`
}

type EmbeddingConfig struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	ModelDir  string      `json:"model_dir"`
	Dimension int         `json:"dimension"`
	CacheSize int         `json:"cache_size"`
	CacheTTL  int         `json:"cache_ttl_minutes"`
	Args      interface{} `json:"args"`
}

type LovdataConfig struct {
	BaseURL string   `json:"base_url"`
	WorkDir string   `json:"work_dir"`
	Laws    []string `json:"laws"`
}

type RetrievalConfig struct {
	KLaws             int     `json:"k_laws"`
	KParagraphs       int     `json:"k_paragraphs"`
	MaxContextWords   int     `json:"max_context_words"`
	DistanceThreshold float64 `json:"distance_threshold"`
}

type ArchiveConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.0-flash"
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "local"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "sentence-transformers/all-MiniLM-L6-v2"
	}
	if cfg.Embedding.ModelDir == "" {
		cfg.Embedding.ModelDir = "./models"
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = 384
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 4096
	}
	if cfg.Embedding.CacheTTL == 0 {
		cfg.Embedding.CacheTTL = 120
	}
	if cfg.Lovdata.BaseURL == "" {
		cfg.Lovdata.BaseURL = "https://api.lovdata.no/v1/publicData"
	}
	if cfg.Lovdata.WorkDir == "" {
		cfg.Lovdata.WorkDir = "./lovdataxml"
	}
	if cfg.Retrieval.KLaws == 0 {
		cfg.Retrieval.KLaws = 5
	}
	if cfg.Retrieval.KParagraphs == 0 {
		cfg.Retrieval.KParagraphs = 20
	}
	if cfg.Retrieval.MaxContextWords == 0 {
		cfg.Retrieval.MaxContextWords = 400
	}
	if cfg.Retrieval.DistanceThreshold == 0 {
		cfg.Retrieval.DistanceThreshold = 0.27
	}
	return &cfg, nil
}
