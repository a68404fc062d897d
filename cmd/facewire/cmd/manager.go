package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/facewire/facewire/internal/core/config"
	"github.com/facewire/facewire/internal/core/db"
	"github.com/facewire/facewire/internal/core/manager"
	"github.com/facewire/facewire/internal/core/server"
)

var managerCmd = &cobra.Command{
	Use:   "manager",
	Short: "Start the update manager service",
	RunE:  runManager,
}

func init() {
	rootCmd.AddCommand(managerCmd)
	managerCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	managerCmd.Flags().Int("port", 50062, "gRPC server port")
}

func runManager(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger("facewire-manager")

	cfg, err := config.LoadManagerConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	applied, err := db.Applied(database)
	if err != nil {
		return fmt.Errorf("failed to check migrations: %w", err)
	}
	if !applied["001_initial_schema.sql"] {
		return fmt.Errorf("schema not migrated - run 'facewire migrate' first")
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	service, err := manager.NewService(queries, log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg.Host, cfg.Port, func(s *grpc.Server) {
		server.RegisterManager(s, service)
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info().Str("version", Version).Str("host", cfg.Host).Int("port", cfg.Port).
		Msg("starting update manager")

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Info().Msg("shutting down gracefully")
		return grpcServer.Shutdown(ctx)
	}
}
