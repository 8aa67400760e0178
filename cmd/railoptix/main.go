package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/config"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/app"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/bootstrap"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/dashboard"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "railoptix",
		Usage: "RailOptiX live railway dashboard client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend-url", Usage: "RailOptiX backend base URL (overrides RAILOPTIX_BACKEND_URL)"},
		},
		Commands: []*cli.Command{
			dashboardCommand(),
			serveCommand(),
			snapshotCommand(),
			acceptCommand(),
			statusCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx, args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the environment and applies command line overrides
func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("backend-url") {
		cfg.Backend.URL = c.String("backend-url")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "Open the live terminal dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Value: "railoptix.log", Usage: "log destination; the terminal is owned by the dashboard"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel, c.String("log-file"))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := app.New(ctx, cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			go func() {
				if err := a.Run(ctx); err != nil {
					logger.Error("realtime sync stopped", zap.Error(err))
				}
			}()

			return dashboard.Run(ctx, a.Store, dashboard.Callbacks{
				Accept:   a.Actions.AcceptSuggestion,
				Simulate: a.Actions.RunSimulation,
			})
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the reconciled state over HTTP and Server-Sent Events",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "HTTP listen port (overrides PORT)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel, "")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			bootstrap.SetGinMode(cfg.App.Environment)
			return runServer(ctx, cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := a.Run(ctx); err != nil {
			errCh <- fmt.Errorf("realtime sync: %w", err)
		}
	}()
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Connect, wait for the first full update and print the reconciled state",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "json or yaml"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			format := c.String("format")
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q", format)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.App.Environment, "error", "")
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			runErr := make(chan error, 1)
			go func() { runErr <- a.Run(ctx) }()

			timer := time.NewTimer(c.Duration("timeout"))
			defer timer.Stop()
			select {
			case <-a.FirstData():
			case err := <-runErr:
				if err == nil {
					err = ctx.Err()
				}
				return fmt.Errorf("no data received: %w", err)
			case <-timer.C:
				return fmt.Errorf("no data received within %s", c.Duration("timeout"))
			}

			snap := a.Store.Snapshot()
			if format == "yaml" {
				return printYAML(snap)
			}
			return printJSON(snap)
		},
	}
}

func acceptCommand() *cli.Command {
	return &cli.Command{
		Name:  "accept",
		Usage: "Accept an AI suggestion for a conflict",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "suggestion", Required: true, Usage: "suggestion id"},
			&cli.StringFlag{Name: "conflict", Required: true, Usage: "conflict id"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.App.Environment, "error", "")
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			sid, cid := c.String("suggestion"), c.String("conflict")
			if err := a.Actions.AcceptSuggestion(ctx, sid, cid); err != nil {
				return err
			}
			printKV([][2]string{{"suggestion", sid}, {"conflict", cid}, {"status", "accepted"}})
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check the backend health endpoint",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.App.Environment, "error", "")
			if err != nil {
				return err
			}

			a, err := app.New(ctx, cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			health, err := a.Backend.Health(ctx)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(health)
			}
			printKV([][2]string{
				{"backend", cfg.Backend.URL},
				{"service", health.Service},
				{"status", health.Status},
				{"version", health.Version},
			})
			return nil
		},
	}
}
