package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguiz/internal/catalog"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/store"
)

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "Inspect and load the local exercise catalog",
}

var exercisesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}

		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		filter := cfg.Client.Filter()
		if !cmd.Flags().Changed("limit") {
			filter.Limit = 0
		}
		exs, err := s.ExerciseRepo().List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("list exercises: %w", err)
		}

		if len(exs) == 0 {
			fmt.Println("No exercises found.")
			return nil
		}

		fmt.Printf("%-24s  %-5s  %-4s  %-5s  %-4s  %s\n",
			"ID", "Type", "Lvl", "Pts", "Secs", "Category")
		fmt.Println(strings.Repeat("─", 80))

		for _, ex := range exs {
			id := ex.ID
			if len(id) > 24 {
				id = id[:24]
			}
			category := ex.Category
			if ex.Subcategory != "" {
				category += " / " + ex.Subcategory
			}
			fmt.Printf("%-24s  %-5s  %-4s  %-5d  %-4d  %s\n",
				id,
				kindLabel(ex.Kind()),
				ex.Level,
				ex.Points,
				ex.TimeLimit,
				category,
			)
		}
		return nil
	},
}

var exercisesCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a YAML catalog without loading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exs, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d valid exercise(s)\n", args[0], len(exs))
		return nil
	},
}

var exercisesSeedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Upsert a YAML catalog into the local database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exs, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		n, err := catalog.Seed(cmd.Context(), s.ExerciseRepo(), exs)
		if err != nil {
			return fmt.Errorf("seed after %d exercise(s): %w", n, err)
		}
		fmt.Printf("Loaded %d exercise(s) into %s\n", n, dbPath)
		return nil
	},
}

func init() {
	addFilterFlags(exercisesListCmd)

	exercisesCmd.AddCommand(exercisesListCmd)
	exercisesCmd.AddCommand(exercisesCheckCmd)
	exercisesCmd.AddCommand(exercisesSeedCmd)
}

func kindLabel(k exercise.Kind) string {
	switch k {
	case exercise.KindMCQ:
		return "mcq"
	case exercise.KindTextInput:
		return "text"
	}
	return string(k)
}
