package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"modelhub-backend/config"
	"modelhub-backend/internal/api"
	"modelhub-backend/internal/database"
	"modelhub-backend/internal/services"
	"modelhub-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelhub",
		Short: "Generative model catalog service",
		Long:  "Syncs the remote model catalog into the local store and serves it over HTTP.",
	}

	rootCmd.AddCommand(
		serveCmd(),
		syncCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config and brings up logging, postgres and redis.
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if _, err := database.Connect(cfg.DSN()); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.ConnectRedis(cfg); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			router := api.NewRouter(cfg)
			zap.L().Info("starting server", zap.String("addr", ":8080"))
			if err := router.Run(":8080"); err != nil {
				log.Fatalf("failed to run server: %v", err)
			}
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one catalog sync pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			result, err := services.RunSyncPass(cmd.Context(), cfg)
			if err != nil {
				if errors.Is(err, services.ErrSyncInProgress) {
					fmt.Println("A sync pass is already running, try again later.")
					return nil
				}
				return err
			}

			fmt.Printf("Sync finished in %s\n", result.Duration)
			fmt.Printf("  models added:     %d\n", result.ModelsAdded)
			fmt.Printf("  models updated:   %d\n", result.ModelsUpdated)
			fmt.Printf("  parameters added: %d\n", result.ParametersAdded)
			fmt.Printf("  pricing updated:  %d\n", result.PricingUpdated)
			if len(result.Errors) > 0 {
				fmt.Printf("  errors:           %d\n", len(result.Errors))
				for _, e := range result.Errors {
					fmt.Printf("    %s: %s\n", e.Model, e.Error)
				}
			}
			return nil
		},
	}
}
