package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguiz/internal/api"
	"github.com/abhisek/linguiz/internal/app"
	"github.com/abhisek/linguiz/internal/catalog"
	"github.com/abhisek/linguiz/internal/config"
	"github.com/abhisek/linguiz/internal/grading"
	"github.com/abhisek/linguiz/internal/logging"
	"github.com/abhisek/linguiz/internal/screen"
	"github.com/abhisek/linguiz/internal/screens/home"
	"github.com/abhisek/linguiz/internal/screens/quiz"
	"github.com/abhisek/linguiz/internal/session"
	"github.com/abhisek/linguiz/internal/store"
	"github.com/abhisek/linguiz/internal/verify"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addFilterFlags(playCmd)
	addPlayFlags(playCmd)
}

func addPlayFlags(c *cobra.Command) {
	c.Flags().String("api", "", "Verification service URL (overrides LINGUIZ_API_URL)")
	c.Flags().Bool("offline", false, "Grade locally against the SQLite catalog instead of a server")
	c.Flags().String("seed", "", "YAML catalog to load before an offline session")
	c.Flags().String("log-file", "", "Write client logs here instead of the default state dir")
}

// backend is where a quiz gets its exercises and verdicts.
type backend struct {
	source  string
	store   session.ExerciseStore
	service verify.Service
	health  func(ctx context.Context) error
	closer  io.Closer
}

func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api") {
		cfg.Client.APIURL, _ = cmd.Flags().GetString("api")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, closeLog, err := clientLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var b *backend
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		b, err = localBackend(ctx, cmd, cfg, logger)
	} else {
		b = remoteBackend(cfg, logger)
	}
	if err != nil {
		return err
	}
	if b.closer != nil {
		defer b.closer.Close()
	}

	verifier := verify.NewAdapter(b.service,
		verify.WithTimeout(cfg.Client.VerifyTimeout),
		verify.WithLogger(logger))

	logger.Info("starting quiz client", "source", b.source, "filter", cfg.Client.Filter())

	return app.Run(home.Config{
		Source: b.source,
		Filter: cfg.Client.Filter(),
		Health: b.health,
		NewQuiz: func() screen.Screen {
			return quiz.New(quiz.Deps{
				Store:    b.store,
				Verifier: verifier,
				Filter:   cfg.Client.Filter(),
				Logger:   logger,
			})
		},
	})
}

// clientLogger logs to a file since the TUI owns the terminal.
func clientLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		path = cfg.Log.File
	}
	if path == "" {
		p, err := logging.DefaultFilePath()
		if err != nil {
			return logging.Discard(), func() {}, nil
		}
		path = p
	}

	logger, f, err := logging.OpenFile(path, cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return logger, func() { f.Close() }, nil
}

func remoteBackend(cfg *config.Config, logger *slog.Logger) *backend {
	client := api.New(cfg.Client.APIURL,
		api.WithTimeout(cfg.Client.VerifyTimeout),
		api.WithLogger(logger))

	return &backend{
		source:  client.BaseURL(),
		store:   client,
		service: client,
		health: func(ctx context.Context) error {
			h, err := client.Health(ctx)
			if err != nil {
				return err
			}
			return api.CheckCompatible(h.APIVersion)
		},
	}
}

func localBackend(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	seed, _ := cmd.Flags().GetString("seed")
	if seed == "" {
		seed = cfg.Server.SeedPath
	}
	repo := st.ExerciseRepo()
	if err := catalog.Bootstrap(ctx, repo, seed, logger); err != nil {
		st.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	svc := grading.NewService(repo, grading.New(grading.WithLogger(logger)), logger)
	return &backend{
		source:  "local " + dbPath,
		store:   svc,
		service: svc,
		closer:  st,
	}, nil
}
