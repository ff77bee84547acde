package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/clubware/taskhub/internal/config"
	"github.com/clubware/taskhub/internal/database"
	"github.com/clubware/taskhub/internal/repository"
	"github.com/clubware/taskhub/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the club roster from a YAML file",
		Long: `Seed upserts members from a roster file into the database, matching
existing members by email. Members without a password in the file get a
generated temporary one, printed exactly once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "roster.yml", "path to the roster file")
	return cmd
}

func runSeed(path string) error {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	roster, err := seed.ParseRosterFile(path)
	if err != nil {
		return err
	}

	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := repository.NewUserRepository(database.GetDB())
	seeder := seed.NewSeeder(userRepo, nil, logger)

	result, err := seeder.Apply(roster)
	if err != nil {
		return err
	}

	fmt.Printf("Roster applied: %d created, %d updated\n", result.Created, result.Updated)

	if len(result.GeneratedPasswords) > 0 {
		emails := make([]string, 0, len(result.GeneratedPasswords))
		for email := range result.GeneratedPasswords {
			emails = append(emails, email)
		}
		sort.Strings(emails)

		fmt.Println("Generated initial passwords (shown only once):")
		for _, email := range emails {
			fmt.Printf("  %-40s %s\n", email, result.GeneratedPasswords[email])
		}
	}

	return nil
}
