package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/bryanpdl/briefly/internal"
	"github.com/bryanpdl/briefly/internal/brief"
	"github.com/bryanpdl/briefly/internal/inline"
	pkgconfig "github.com/bryanpdl/briefly/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

type parseOutput struct {
	Sections []brief.Section          `json:"sections"`
	Rendered []inline.RenderedSection `json:"rendered,omitempty"`
}

func runParse(_ context.Context, cmd *cli.Command) error {
	var (
		data []byte
		err  error
	)
	switch name := cmd.Args().First(); name {
	case "", "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("read brief: %w", err)
	}

	mode, err := brief.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}
	out := parseOutput{Sections: brief.Parse(string(data), mode)}
	if cmd.Bool("render") {
		out.Rendered = inline.RenderSections(out.Sections)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	cmd := &cli.Command{
		Name:   "briefly",
		Usage:  "Project brief generator with section regeneration, export and public links",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:      "parse",
				Usage:     "Split a brief into sections and print them as JSON",
				ArgsUsage: "[file]",
				Action:    runParse,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Content mode (trimmed or raw)",
						Value: string(brief.ModeTrimmed),
					},
					&cli.BoolFlag{
						Name:  "render",
						Usage: "Include rendered text, link and image nodes",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
