package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguiz/internal/config"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "linguiz",
	Short: "French grammar quiz for the terminal",
	Long:  "Linguiz: timed fill-in-the-blank grammar exercises, scored by a verification service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("env-file", "", "Load settings from this .env file")
	pf.String("db", "", "Path to SQLite database file (overrides LINGUIZ_DB env var)")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	addFilterFlags(rootCmd)
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exercisesCmd)
	rootCmd.AddCommand(versionCmd)
}

func addFilterFlags(c *cobra.Command) {
	c.Flags().String("category", "", "Only exercises of this category")
	c.Flags().String("difficulty", "", "Only exercises of this CEFR level (A1-C2)")
	c.Flags().Int("limit", 0, "Number of exercises per session")
}

// loadConfig reads the environment, then applies the flags that were set
// on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var envFiles []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		envFiles = append(envFiles, f)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("category") {
		cfg.Client.Category, _ = flags.GetString("category")
	}
	if flags.Changed("difficulty") {
		d, _ := flags.GetString("difficulty")
		cfg.Client.Difficulty = exercise.Level(strings.ToUpper(d))
	}
	if flags.Changed("limit") {
		cfg.Client.FetchLimit, _ = flags.GetInt("limit")
	}
	if flags.Changed("log-level") {
		lvl, _ := flags.GetString("log-level")
		if err := cfg.Log.Level.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", lvl)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Server.DBPath != "" {
		return cfg.Server.DBPath, store.EnsureDir(cfg.Server.DBPath)
	}
	return store.DefaultDBPath()
}
