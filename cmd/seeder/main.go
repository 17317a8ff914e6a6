// Package main implements the seeder, which loads the sample bootcamps,
// courses and users into the database or removes them.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/devcamper-api/internal/config"
	"github.com/phrazzld/devcamper-api/internal/platform/geocoder"
	"github.com/phrazzld/devcamper-api/internal/platform/logger"
	"github.com/phrazzld/devcamper-api/internal/platform/postgres"
	"github.com/phrazzld/devcamper-api/internal/seed"
	"github.com/phrazzld/devcamper-api/internal/service"
	"github.com/phrazzld/devcamper-api/internal/service/auth"
	"github.com/spf13/cobra"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:          "seeder",
	Short:        "Load or remove the DevCamper sample data",
	SilenceUsage: true,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users, bootcamps and courses from the data directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := seed.Load(dataDir)
		if err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}
		return withSeeder(cmd.Context(), func(s *seed.Seeder) error {
			return s.Import(cmd.Context(), data)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every user, bootcamp and course",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSeeder(cmd.Context(), func(s *seed.Seeder) error {
			return s.Destroy(cmd.Context())
		})
	},
}

var hashCost int

// hashCmd prints bcrypt hashes, for writing accounts straight into the database.
var hashCmd = &cobra.Command{
	Use:   "hash <password>...",
	Short: "Print the bcrypt hash of each password",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hasher := auth.NewBcryptVerifier(hashCost)
		for _, password := range args {
			hash, err := hasher.Hash(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&dataDir, "dir", "data", "directory holding users.json, bootcamps.json and courses.json")
	hashCmd.Flags().IntVar(&hashCost, "cost", 10, "bcrypt cost")
	rootCmd.AddCommand(importCmd, deleteCmd, hashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withSeeder connects to the configured database and runs fn with a Seeder.
func withSeeder(ctx context.Context, fn func(*seed.Seeder) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var geo service.Geocoder
	if g := geocoder.New(cfg.Geocoder, log); g != nil {
		geo = g
	}

	seeder := seed.NewSeeder(
		db,
		postgres.NewPostgresUserStore(db, log),
		postgres.NewPostgresBootcampStore(db, log),
		postgres.NewPostgresCourseStore(db, log),
		auth.NewBcryptVerifier(cfg.Auth.BCryptCost),
		geo,
		log.With(slog.String("command", "seeder")),
	)
	return fn(seeder)
}
