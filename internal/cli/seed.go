package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/infra/memory"
	"trivia-quiz-service/internal/infra/postgres"
)

// NewSeedCmd imports the JSON question bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the Postgres question bank with a JSON question file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if file == "" {
				file = cfg.Questions.Path
			}

			records, err := memory.NewFileQuestionLoader(file).LoadQuestions(ctx)
			if err != nil {
				return err
			}
			// Reject a bank the server would refuse to start with.
			if _, err := app.NewBank(records); err != nil {
				return fmt.Errorf("validate %s: %w", file, err)
			}

			if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
				return err
			}
			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.SeedQuestions(ctx, db, records); err != nil {
				return err
			}
			logger.Info("question bank seeded", "file", file, "questions", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "question JSON file (defaults to questions.path)")
	return cmd
}
