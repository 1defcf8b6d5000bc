package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/analysis"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/api"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/config"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/logging"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/monitor"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/repository"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/snapshot"
	"github.com/vynnydev/hospital-management-web-platform-sub011/internal/stream"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "hospital-network",
		Short:         "Hospital network shortage detection and transfer planning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		logging.Fatalf("%v", err)
	}
}

// loadConfig reads the environment and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic analysis loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	slog.Info("server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	levels, err := cfg.MinimumLevels()
	if err != nil {
		return err
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := stream.NewBroadcaster()

	mgr := monitor.NewManager(cfg, db, levels, broadcaster)
	mgr.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(db, mgr, levels, broadcaster)
	router := api.NewRouter(handler, cfg.Server.RateLimitRPS)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // ends open SSE streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a JSON snapshot once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("snapshot")
			workers, _ := cmd.Flags().GetInt("workers")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			levels, err := cfg.MinimumLevels()
			if err != nil {
				return err
			}

			f, err := snapshot.Load(path)
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = cfg.Analysis.Workers
			}
			res, err := analysis.Analyze(cmd.Context(), f.Snapshot(levels, cfg.Analysis.MaxTransferDistanceKm), analysis.WithWorkers(workers))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*analysis.Result
				Summary analysis.Summary `json:"summary"`
			}{res, res.Summary()})
		},
	}

	cmd.Flags().String("snapshot", "", "path to a JSON network snapshot")
	cmd.Flags().Int("workers", 0, "hospitals analyzed concurrently (default ANALYSIS_WORKERS)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a JSON snapshot into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("snapshot")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			f, err := snapshot.Load(path)
			if err != nil {
				return err
			}

			db, err := repository.NewSQLiteDB(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer db.Close()

			stats, err := f.Seed(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("seeding database: %w", err)
			}

			slog.Info("snapshot imported",
				"path", path,
				"hospitals", stats.Hospitals,
				"resources", stats.Resources,
				"suppliers", stats.Suppliers,
			)
			return nil
		},
	}

	cmd.Flags().String("snapshot", "", "path to a JSON network snapshot")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}
