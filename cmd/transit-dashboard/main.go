package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	transit "github.com/anish3343/transit-dashboard"
	"github.com/anish3343/transit-dashboard/config"
	"github.com/anish3343/transit-dashboard/gtfsrt"
	"github.com/anish3343/transit-dashboard/gtfsstatic"
	"github.com/anish3343/transit-dashboard/internal/metrics"
	"github.com/anish3343/transit-dashboard/refstore"
)

func main() {
	if os.Getenv("TRANSIT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	if os.Getenv("TRANSIT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	configFlag := &cli.StringFlag{
		Name:  "config",
		Value: "config.yml",
		Usage: "path to the YAML configuration file",
	}

	app := &cli.App{
		Name:        "transit-dashboard",
		Description: "Realtime transit arrivals and alerts service",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the dashboard API server",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return runServe(c.Context, c.String("config"))
				},
			},
			{
				Name:  "update-gtfs",
				Usage: "Download static GTFS bundles into the reference store",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return runUpdateGTFS(c.Context, c.String("config"))
				},
			},
			{
				Name:  "update-protos",
				Usage: "Download the GTFS-Realtime schema files",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return runUpdateProtos(c.Context, c.String("config"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := refstore.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	m := metrics.New()
	pipeline := transit.NewPipeline(
		cfg,
		gtfsrt.NewFetcher(config.Feeds),
		gtfsrt.NewResolver(cfg.Proto.Dir),
		refstore.NewGateway(store),
		m,
	)
	loader := gtfsstatic.NewLoader(store, config.StaticGTFSURLs)

	server := transit.NewServer(cfg, pipeline, loader, store, m)
	server.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runUpdateGTFS(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := refstore.Open(ctx, cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, res := range gtfsstatic.NewLoader(store, config.StaticGTFSURLs).Refresh(ctx) {
		if res.Error != "" {
			err = cli.Exit("one or more static GTFS bundles failed", 1)
		}
	}
	return err
}

func runUpdateProtos(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, res := range gtfsrt.UpdateProtos(ctx, cfg.Proto.Dir) {
		if res.Error != "" {
			err = cli.Exit("one or more schema downloads failed", 1)
		}
	}
	return err
}
