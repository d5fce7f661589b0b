package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguiz/internal/catalog"
	"github.com/abhisek/linguiz/internal/config"
	"github.com/abhisek/linguiz/internal/grading"
	"github.com/abhisek/linguiz/internal/llm"
	"github.com/abhisek/linguiz/internal/logging"
	"github.com/abhisek/linguiz/internal/server"
	"github.com/abhisek/linguiz/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the exercise and verification API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.Server.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("seed") {
			cfg.Server.SeedPath, _ = flags.GetString("seed")
		}
		if flags.Changed("judge") {
			cfg.Server.Judge, _ = flags.GetBool("judge")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.NewJSON(os.Stderr, cfg.Log.Level)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cmd, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listen port (overrides LINGUIZ_PORT)")
	serveCmd.Flags().String("seed", "", "YAML catalog to upsert at startup")
	serveCmd.Flags().Bool("judge", false, "Let an LLM accept near-miss text answers")
}

func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("database opened", "path", dbPath)

	repo := st.ExerciseRepo()
	if err := catalog.Bootstrap(ctx, repo, cfg.Server.SeedPath, logger); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if cfg.Cache.Enabled() {
		rc, err := store.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rc.Close()
		repo = store.WithCache(repo, store.NewRedisCache(rc), cfg.Cache.TTL, logger)
		logger.Info("exercise cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
	}

	opts := []grading.Option{grading.WithLogger(logger)}
	if cfg.Server.Judge {
		provider, err := llm.NewProviderFromEnv(ctx, logger)
		if err != nil {
			logger.Warn("LLM judge unavailable, using exact grading", "error", err)
		} else {
			opts = append(opts, grading.WithJudge(grading.NewLLMJudge(provider)))
			logger.Info("LLM judge enabled", "model", provider.ModelID())
		}
	}

	svc := grading.NewService(repo, grading.New(opts...), logger)
	return server.NewServer(cfg.Server, svc, logger).Run(ctx)
}
