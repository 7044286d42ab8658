package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uditb/resumesculpt/internal/ats"
	"github.com/uditb/resumesculpt/internal/config"
	"github.com/uditb/resumesculpt/internal/db"
	"github.com/uditb/resumesculpt/internal/llm"
	"github.com/uditb/resumesculpt/internal/logger"
	"github.com/uditb/resumesculpt/internal/pdftext"
	"github.com/uditb/resumesculpt/internal/pipeline"
	"github.com/uditb/resumesculpt/internal/quota"
	"github.com/uditb/resumesculpt/internal/resume"
	"github.com/uditb/resumesculpt/internal/server"
)

var serveCfgFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes resume scoring and optimization endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveCfgFile, "config", "", "optional config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServerConfig(serveCfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := cmd.Context()

	llmConfig := llm.DefaultConfig()
	if cfg.ModelLite != "" {
		llmConfig = llmConfig.WithModel(llm.TierLite, cfg.ModelLite)
	}
	if cfg.ModelStandard != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.ModelStandard)
	}
	if cfg.ModelAdvanced != "" {
		llmConfig = llmConfig.WithModel(llm.TierAdvanced, cfg.ModelAdvanced)
	}

	client, err := llm.NewClient(ctx, llmConfig, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close()
	client = llm.WithBreaker(client, llm.DefaultBreakerSettings(), log)

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}

	normalizer := ats.NewNormalizer(client, log)
	scorer := ats.NewScorer(client, log)
	serializer := resume.NewSerializer(client, log)
	optimizer := resume.NewOptimizer(client, log)
	orchestrator := pipeline.NewOrchestrator(normalizer, scorer, optimizer, database, log)

	srv := server.New(server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.Origins(),
		ModelName:      llmConfig.GetModel(llm.TierStandard),
		DBClient:       database,
		JWTService:     server.NewJWTService(jwtConfig),
		UserService:    server.NewUserService(database, passwordConfig),
		Normalizer:     normalizer,
		Scorer:         scorer,
		Serializer:     serializer,
		Extractor:      pdftext.NewPopplerExtractor(),
		Orchestrator:   orchestrator,
		QuotaGate:      quota.NewGate(database),
		Logger:         log,
	})

	return srv.Start()
}
