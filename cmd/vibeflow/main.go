package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	vibeflow "github.com/vibeflow/site"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "vibeflow",
		Usage:   "Vibe Flow content service",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "Path to a .env file", Value: ".env"},
			&cli.StringFlag{Name: "addr", Usage: "Listen address (overrides ADDR)"},
		},
		Action: func(c *cli.Context) error {
			if err := godotenv.Load(c.String("env-file")); err != nil {
				slog.Info("skipping .env", "path", c.String("env-file"))
			}

			cfg, err := vibeflow.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr := c.String("addr"); addr != "" {
				cfg.Addr = addr
			}

			app := vibeflow.New(cfg)
			slog.Info("starting server", "addr", cfg.Addr, "site", cfg.URL)
			return app.Start()
		},
	}
}
