package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clientkit/internal/app"
	"clientkit/internal/config"
	"clientkit/internal/repository/snapshot"
	"clientkit/internal/seed"
	"clientkit/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const envFilePath = ".env"

var (
	cfg *config.Config
	log *zap.Logger

	seedFile  string
	seedForce bool
)

var rootCmd = &cobra.Command{
	Use:   "clientkit",
	Short: "ClientKit backend for freelancer client onboarding",
	Long: `ClientKit serves the freelancer dashboard API, the public onboarding
wizard for clients and the freelancer/client chat.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.Log.Level, cfg.Log.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo projects and chat rooms into the store",
	Long: `Writes the demo fixtures into the configured store. An existing store is
left alone unless --force is given.

Example:
  clientkit seed --file fixtures.yaml --force`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "fixtures YAML file (defaults to the built-in demo data)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "overwrite existing data")

	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	// The environment still applies when no .env file exists.
	_ = godotenv.Load(envFilePath)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, err := app.NewService(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize service", zap.Error(err))
		return err
	}
	defer func() {
		if err := service.Close(); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
	}()

	if err := service.Run(ctx); err != nil {
		log.Error("server error", zap.Error(err))
		return err
	}

	log.Info("server exited gracefully")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fixtures, err := loadFixtures(seedFile)
	if err != nil {
		return err
	}

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	db := snapshot.New(store)
	defer db.Close()

	res, err := seed.Seed(ctx, db, fixtures, seed.Options{
		PublicBaseURL: cfg.App.PublicBaseURL,
		Force:         seedForce,
	})
	if err != nil {
		return err
	}

	if res.Skipped {
		log.Info("store already has data, use --force to overwrite")
		return nil
	}
	log.Info("seeded store",
		zap.String("store", cfg.Store.Driver),
		zap.Int("projects", res.Projects),
		zap.Int("rooms", res.Rooms),
		zap.Int("messages", res.Messages),
	)
	return nil
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()

	return seed.Read(f)
}
