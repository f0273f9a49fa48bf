package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/terminalart/internal"
	"github.com/starford/terminalart/internal/artifact"
	"github.com/starford/terminalart/internal/render"
	pkgconfig "github.com/starford/terminalart/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return []internal.Option{internal.WithConfig(cfg)}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func syncMirror(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	n, err := internal.SyncMirror(ctx, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "indexed %d records\n", n)
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func preview(_ context.Context, cmd *cli.Command) error {
	format, ok := render.ParseFormat(cmd.String("format"))
	if !ok {
		return fmt.Errorf("unsupported format %q", cmd.String("format"))
	}

	var out io.Writer = os.Stdout
	if path := cmd.String("out"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	msg := artifact.Message{
		Username:  cmd.String("username"),
		Text:      cmd.String("text"),
		Timestamp: int64(cmd.Int("timestamp")),
		Color:     cmd.String("color"),
	}
	return internal.Preview(out, msg, cmd.Bool("feed"), format)
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "terminalart",
		Usage:  "Render Public Terminal records as artifacts, feed cards and receipts",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "sync",
				Usage:  "Import the record spool into the SQLite mirror once",
				Action: syncMirror,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdin/stdout",
				Action: serveMCP,
			},
			{
				Name:   "preview",
				Usage:  "Render a message or the sample feed without a ledger",
				Action: preview,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "feed", Usage: "Render the sample feed instead of a message"},
					&cli.StringFlag{Name: "username", Usage: "Author label"},
					&cli.StringFlag{Name: "text", Usage: "Message text"},
					&cli.IntFlag{Name: "timestamp", Usage: "Unix seconds, default now"},
					&cli.StringFlag{Name: "color", Usage: "Label color #rrggbb"},
					&cli.StringFlag{Name: "format", Value: "svg", Usage: "svg or png"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "-", Usage: "Output file, - for stdout"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
