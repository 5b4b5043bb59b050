package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kommunelab/lovassistent/internal/ai"
	"github.com/kommunelab/lovassistent/internal/config"
	"github.com/kommunelab/lovassistent/internal/db"
	"github.com/kommunelab/lovassistent/internal/embedcache"
	"github.com/kommunelab/lovassistent/internal/filestore"
	"github.com/kommunelab/lovassistent/internal/handler"
	"github.com/kommunelab/lovassistent/internal/ingest"
	"github.com/kommunelab/lovassistent/internal/job"
	"github.com/kommunelab/lovassistent/internal/lovdata"
	"github.com/kommunelab/lovassistent/internal/pkg/logutil"
	"github.com/kommunelab/lovassistent/internal/repo"
	"github.com/kommunelab/lovassistent/internal/retrieval"
	"github.com/kommunelab/lovassistent/internal/schedule"
	"github.com/kommunelab/lovassistent/internal/service"
)

func main() {
	_ = godotenv.Load()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lovassistent",
		Short: "municipal legal assistant backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dbConn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer dbConn.Close()
			return runServer(cfg, dbConn)
		},
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "rebuild the law corpus from the publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dbConn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			pipeline, err := buildPipeline(cfg, dbConn)
			if err != nil {
				return err
			}
			report, err := pipeline.Run(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("found %d of %d wanted files, stored %d laws and %d paragraphs (%d errors)\n",
				report.Found, report.Wanted, report.Laws, report.Paragraphs, report.Errors)
			for _, name := range report.Missing {
				fmt.Printf("missing: %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, ingestCmd)
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logutil.Init(cfg.Log.Level, cfg.Log.Console, cfg.Log.File); err != nil {
		return nil, nil, err
	}
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(dbConn); err != nil {
		dbConn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, dbConn, nil
}

func buildEmbedder(cfg *config.Config) (ai.IEmbedder, error) {
	embedder, err := ai.NewEmbedder(cfg.Embedding.Provider, ai.EmbedderArgs{
		Model:     cfg.Embedding.Model,
		ModelDir:  cfg.Embedding.ModelDir,
		Dimension: cfg.Embedding.Dimension,
		Extra:     cfg.Embedding.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	return embedcache.WrapLRU(embedder, cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTL)*time.Minute), nil
}

func buildPipeline(cfg *config.Config, dbConn *sqlx.DB) (*ingest.Pipeline, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	var archive filestore.Store
	if cfg.Archive.Type != "" {
		archive, err = filestore.New(cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("init archive store: %w", err)
		}
	}
	return ingest.New(ingest.Config{
		Fetcher:    lovdata.NewClient(cfg.Lovdata.BaseURL),
		Embedder:   embedder,
		Laws:       repo.NewLawRepo(dbConn),
		Paragraphs: repo.NewParagraphRepo(dbConn),
		Clear: func(ctx context.Context) error {
			return repo.ClearCorpus(ctx, dbConn)
		},
		Archive: archive,
		WorkDir: cfg.Lovdata.WorkDir,
		LawIDs:  cfg.Lovdata.Laws,
	}), nil
}

func runServer(cfg *config.Config, dbConn *sqlx.DB) error {
	logger := logutil.GetLogger(context.Background())

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Args)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	generator := ai.NewGenerator(provider, cfg.AI.Model, time.Duration(cfg.AI.Timeout)*time.Second)

	lawRepo := repo.NewLawRepo(dbConn)
	paragraphRepo := repo.NewParagraphRepo(dbConn)
	chatRepo := repo.NewChatRepo(dbConn)
	retriever := retrieval.NewRetriever(embedder, lawRepo, paragraphRepo)
	retriever.KLaws = cfg.Retrieval.KLaws
	retriever.KParagraphs = cfg.Retrieval.KParagraphs

	chatService := service.NewChatService(retriever, generator, chatRepo,
		cfg.Retrieval.MaxContextWords, cfg.Retrieval.DistanceThreshold)
	checklistService := service.NewChecklistService(retriever, generator,
		cfg.Retrieval.MaxContextWords, cfg.Retrieval.DistanceThreshold)

	router := handler.NewRouter(handler.RouterDeps{
		Chat:       handler.NewChatHandler(chatService),
		Checklists: handler.NewChecklistHandler(checklistService),
		Search:     handler.NewSearchHandler(retriever),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RefreshCron != "" {
		pipeline, err := buildPipeline(cfg, dbConn)
		if err != nil {
			return err
		}
		scheduler := schedule.NewScheduler()
		if err := scheduler.AddJob(job.NewCorpusRefreshJob(pipeline), cfg.RefreshCron); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: router}
	logger.Info("http server listening", zap.String("addr", addr))
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
