package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/aja5jo/ggoggolist-backend/internal/database"
	"github.com/aja5jo/ggoggolist-backend/internal/embedding"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/recommend"
	"github.com/aja5jo/ggoggolist-backend/internal/repository"
	"github.com/aja5jo/ggoggolist-backend/internal/seed"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// recsctl is the operational CLI for the recommendation backend: schema
// migration, dev seeding, offline embedding warm-up, and profile cache
// invalidation.
func main() {
	rootCmd := &cobra.Command{
		Use:   "recsctl",
		Short: "Admin CLI for the ggoggolist recommendation backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("Warning: .env file not found, using system environment variables")
			}
			if err := logger.Initialize(os.Getenv("LOG_LEVEL"), "recsctl.log"); err != nil {
				return err
			}
			return database.Initialize()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(backfillCmd())
	rootCmd.AddCommand(invalidateProfileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate()
		},
	}
}

func seedCmd() *cobra.Command {
	var users, stores, events, popups int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the development database with fake marketplace data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(); err != nil {
				return err
			}
			s := seed.NewSeeder(database.DB)
			return s.SeedDev(seed.Counts{
				Users:  users,
				Stores: stores,
				Events: events,
				Popups: popups,
			})
		},
	}
	cmd.Flags().IntVar(&users, "users", 50, "number of users to create")
	cmd.Flags().IntVar(&stores, "stores", 120, "number of stores to create")
	cmd.Flags().IntVar(&events, "events", 60, "number of events to create")
	cmd.Flags().IntVar(&popups, "popups", 40, "number of pop-ups to create")
	return cmd
}

// backfillCmd pre-materializes item embeddings offline so live requests
// rarely pay hydration cost.
func backfillCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "backfill-embeddings",
		Short: "Create missing item embeddings for all items",
		RunE: func(cmd *cobra.Command, args []string) error {
			dimension, err := strconv.Atoi(envOrDefault("EMBEDDING_DIMENSION", "1536"))
			if err != nil {
				return fmt.Errorf("invalid EMBEDDING_DIMENSION: %w", err)
			}
			provider := embedding.NewClient(
				envOrDefault("EMBEDDING_API_URL", "https://api.openai.com"),
				os.Getenv("EMBEDDING_API_KEY"),
				envOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
				dimension,
			)

			items := repository.NewItemRepository(database.DB)
			embeddings := embedding.NewStore(database.DB)
			backfiller := recommend.NewBackfiller(provider, embeddings, items)

			created, err := backfiller.Run(context.Background(), limit)
			if err != nil {
				return err
			}
			fmt.Printf("created %d embeddings\n", created)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max embeddings to create (0 = unlimited)")
	return cmd
}

func invalidateProfileCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "invalidate-profile",
		Short: "Drop a user's cached taste vector so it is rebuilt on next request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user is required")
			}
			embeddings := embedding.NewStore(database.DB)
			if err := embeddings.InvalidateUserVector(context.Background(), userID); err != nil {
				return err
			}
			fmt.Printf("invalidated profile for user %d\n", userID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	return cmd
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
