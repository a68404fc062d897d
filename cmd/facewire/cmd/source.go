package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/facewire/facewire/internal/complication"
	"github.com/facewire/facewire/internal/core/auth"
	"github.com/facewire/facewire/internal/core/config"
	"github.com/facewire/facewire/internal/core/db"
	"github.com/facewire/facewire/internal/core/server"
	"github.com/facewire/facewire/internal/source"
	"github.com/facewire/facewire/internal/types"
)

const Version = "0.1.0"

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Start the demo clock complication source",
	RunE:  runSource,
}

func init() {
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	sourceCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runSource(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger("facewire-source")

	cfg, err := config.LoadSourceConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	manager, err := server.DialManager(cfg.ManagerAddr)
	if err != nil {
		return fmt.Errorf("failed to dial update manager: %w", err)
	}
	defer manager.Close()

	dispatcher, err := source.NewDispatcher(&clockSource{}, manager, source.DispatcherConfig{
		ResponseTimeout: cfg.RequestTimeout,
		APIVersion:      cfg.APIVersion,
		Logger:          log,
	})
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	defer dispatcher.Close()

	service, err := server.NewSourceService(dispatcher, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	// API-key auth requires both HMAC secrets and a key database. Without
	// them the source still resolves safety tiers from caller metadata.
	interceptor, err := buildInterceptor(cfg)
	if err != nil {
		return err
	}

	grpcServer, err := server.NewGRPCServer(cfg.Host, cfg.Port, func(s *grpc.Server) {
		server.RegisterSource(s, service)
	}, interceptor)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info().Str("version", Version).Str("host", cfg.Host).Int("port", cfg.Port).
		Strs("supported_types", cfg.SupportedTypes).Msg("starting complication source")

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

func buildInterceptor(cfg *config.SourceConfig) (grpc.UnaryServerInterceptor, error) {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return auth.SafetyInterceptor(cfg.SafeWatchFaces), nil
	}

	if dbURL == "" {
		return nil, fmt.Errorf("--db-url required when FW_HMAC_SECRET is set")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return auth.NewAuthenticator(secrets, queries, cfg.SafeWatchFaces).UnaryInterceptor(), nil
}

// clockSource is the built-in demo: a SHORT_TEXT clock that overrides its
// default payload with a one-minute precise window around each request.
type clockSource struct{}

func (c *clockSource) OnComplicationRequest(ctx context.Context, req source.Request, respond source.Responder) {
	now := time.Now().UTC()
	minute := now.Truncate(time.Minute)

	window := complication.MustTimeInterval(minute, minute.Add(time.Minute))
	entry := complication.NewTimelineEntry(window, complication.NewShortText(minute.Format("15:04")))

	timeline, err := complication.NewTimeline(
		complication.NewShortText(now.Format("15:04")),
		[]complication.TimelineEntry{entry},
	)
	if err != nil {
		respond(source.NoUpdate())
		return
	}
	respond(source.TimelineResponse(timeline))
}

func (c *clockSource) OnComplicationActivated(instanceID types.InstanceID, t types.ComplicationType) {}
func (c *clockSource) OnComplicationDeactivated(instanceID types.InstanceID)                         {}
func (c *clockSource) OnStartImmediateRequests(instanceID types.InstanceID)                          {}
func (c *clockSource) OnStopImmediateRequests(instanceID types.InstanceID)                           {}

func (c *clockSource) PreviewData(t types.ComplicationType) *complication.Data {
	if t != types.TypeShortText {
		return nil
	}
	return complication.NewShortText("10:09")
}
