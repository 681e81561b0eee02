package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/MaksimYurchanka/pump-monitor/internal/clients/dexclient"
	"github.com/MaksimYurchanka/pump-monitor/internal/config"
	"github.com/MaksimYurchanka/pump-monitor/internal/db"
	dbmodel "github.com/MaksimYurchanka/pump-monitor/internal/db/model"
	"github.com/MaksimYurchanka/pump-monitor/internal/notifier"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/metrics"
	"github.com/MaksimYurchanka/pump-monitor/internal/observability/tracing"
	"github.com/MaksimYurchanka/pump-monitor/internal/services"
	"github.com/MaksimYurchanka/pump-monitor/internal/source"
)

func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Starts the token monitoring engine",
		Args:  cobra.ExactArgs(0),
		RunE:  start,
	}

	return cmd
}

func start(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}

	dexClient := dexclient.New(&cfg.Dexscreener)
	reader := source.NewReader(dexClient, &cfg.Monitor)

	tgNotifier, err := notifier.New(&cfg.Telegram)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating telegram notifier")
	}

	service := services.NewService(cfg, dbClient, dexClient, reader, tgNotifier)

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	if err := service.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while initializing service")
	}
	if err := service.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while starting service")
	}

	// block until a shutdown signal arrives
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	service.Stop()
	if err := dbClient.Close(ctx); err != nil {
		log.Error().Err(err).Msg("error while closing db client")
	}

	return nil
}
