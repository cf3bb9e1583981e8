package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tracepipe/internal/api"
	"github.com/samcharles93/tracepipe/internal/collector"
	"github.com/samcharles93/tracepipe/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr           string
		traceDir       string
		blockCapacity  int
		queueSize      int
		samplingRateNs int
		readTimeout    time.Duration
		logLevel       string
		logFormat      string
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the trace collection REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "trace-dir",
				Usage:       "directory trace files are written to",
				Value:       ".",
				Destination: &traceDir,
			},
			&cli.IntFlag{
				Name:        "block-capacity",
				Usage:       "event block capacity in bytes (0 = default)",
				Destination: &blockCapacity,
			},
			&cli.IntFlag{
				Name:        "queue-size",
				Usage:       "drain queue depth for queued sessions (0 = default)",
				Destination: &queueSize,
			},
			&cli.IntFlag{
				Name:        "sampling-rate-ns",
				Usage:       "sampling rate recorded in trace headers, in nanoseconds",
				Destination: &samplingRateNs,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (pretty, text, json)",
				Value:       "pretty",
				Destination: &logFormat,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			if cfg.TraceDir != "" && !cmd.IsSet("trace-dir") {
				traceDir = cfg.TraceDir
			}
			if cfg.BlockCapacity > 0 && !cmd.IsSet("block-capacity") {
				blockCapacity = cfg.BlockCapacity
			}
			if cfg.QueueSize > 0 && !cmd.IsSet("queue-size") {
				queueSize = cfg.QueueSize
			}
			if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
				logLevel = cfg.LogLevel
			}
			if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
				logFormat = cfg.LogFormat
			}

			log := buildLogger(logFormat, logLevel)

			manager := collector.NewManager(collector.Config{
				Dir:            traceDir,
				BlockCapacity:  blockCapacity,
				QueueSize:      queueSize,
				SamplingRateNs: uint32(samplingRateNs),
			}, log)
			defer func() {
				if err := manager.Shutdown(); err != nil {
					log.Error("session shutdown failed", "error", err)
				}
			}()

			server := api.NewServer(manager, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting collector", "address", addr, "trace_dir", traceDir)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

func buildLogger(format, level string) logger.Logger {
	lvl := logger.ParseLevel(level)
	switch format {
	case "json":
		return logger.JSON(os.Stderr, lvl)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	default:
		return logger.Pretty(os.Stderr, lvl)
	}
}
