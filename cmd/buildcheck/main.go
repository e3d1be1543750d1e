// buildcheck analyzes a PC build offline with the same engine the service runs.
//
// Usage:
//
//	buildcheck analyze --build build.json [--resolution 1440p] [--output json]
//	buildcheck compare --price 1200 --fps 144
//	buildcheck value-tier --category gpu --benchmark 22000 --price 599
//	buildcheck platforms
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/siliconsage/build-engine/internal/engine"
	"github.com/siliconsage/build-engine/internal/models"
	"github.com/siliconsage/build-engine/internal/normalizer"
	"github.com/siliconsage/build-engine/internal/services"
	"github.com/siliconsage/build-engine/internal/utils"
)

const (
	exitOK       = 0
	exitUsage    = 1
	exitInvalid  = 2
	exitInternal = 3
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "buildcheck",
		Usage:     "Score a PC build for bottlenecks, frame rate and stability",
		Version:   version,
		Reader:    os.Stdin,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SILICONSAGE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "platforms",
				Usage:   "Path to a YAML platform pack extending the built-in socket tables",
				EnvVars: []string{"SILICONSAGE_PLATFORMS_PATH"},
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			compareCommand(),
			valueTierCommand(),
			platformsCommand(),
		},
	}
}

// exitCode maps command errors onto the documented process exit codes.
func exitCode(err error) int {
	var fieldErr *normalizer.FieldError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &fieldErr):
		return exitInvalid
	case errors.Is(err, engine.ErrInvariant):
		return exitInternal
	case utils.Op(err) != "":
		return exitInternal
	default:
		return exitUsage
	}
}

func newService(c *cli.Context) (*services.AnalysisService, error) {
	logger := utils.NewLoggerTo(c.App.ErrWriter, c.String("log-level"), false)
	platforms, err := engine.LoadPlatformTable(c.String("platforms"), logger)
	if err != nil {
		return nil, utils.NewAppError("load platforms", c.String("platforms"), err)
	}
	return services.NewAnalysisService(logger, engine.NewEngine(logger, platforms)), nil
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze a build description (flat fields or catalog records)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "build",
				Aliases:  []string{"b"},
				Usage:    "Path to the build JSON, or - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "resolution",
				Aliases: []string{"r"},
				Usage:   "Override the target resolution (1080p, 1440p, 4k)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "text",
				Usage:   "Output format (text, json)",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	output := c.String("output")
	if output != "text" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	raw, err := readBuild(c)
	if err != nil {
		return err
	}
	if resolution := c.String("resolution"); resolution != "" {
		raw["target_resolution"] = resolution
	}

	service, err := newService(c)
	if err != nil {
		return err
	}
	result, err := service.Analyze(context.Background(), raw)
	if err != nil {
		return err
	}

	if output == "json" {
		return writeJSON(c.App.Writer, result)
	}
	writeAnalysis(c.App.Writer, result)
	return nil
}

func readBuild(c *cli.Context) (map[string]any, error) {
	path := c.String("build")
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read build %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, &normalizer.FieldError{Field: "build", Value: path, Reason: "must be a JSON object"}
	}
	return raw, nil
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Compare a build's price and 1080p frame rate against consoles and laptops",
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:     "price",
				Usage:    "Build price in USD",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "fps",
				Usage:    "Build frame rate at 1080p",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "text",
				Usage:   "Output format (text, json)",
			},
		},
		Action: func(c *cli.Context) error {
			service, err := newService(c)
			if err != nil {
				return err
			}
			comparison, err := service.Compare(context.Background(), c.Float64("price"), c.Float64("fps"))
			if err != nil {
				return err
			}
			if c.String("output") == "json" {
				return writeJSON(c.App.Writer, comparison)
			}
			writeComparison(c.App.Writer, comparison)
			return nil
		},
	}
}

func valueTierCommand() *cli.Command {
	return &cli.Command{
		Name:  "value-tier",
		Usage: "Place a single part in a market tier and score its performance per dollar",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "category",
				Aliases:  []string{"c"},
				Usage:    "Part category (cpu, gpu, ram)",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "benchmark",
				Usage:    "Benchmark score (PassMark for CPUs and GPUs, MHz for memory)",
				Required: true,
			},
			&cli.Float64Flag{
				Name:  "price",
				Usage: "Part price in USD",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Part name, excluded from the similar parts list",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "text",
				Usage:   "Output format (text, json)",
			},
		},
		Action: func(c *cli.Context) error {
			service, err := newService(c)
			if err != nil {
				return err
			}
			result, err := service.ValueTier(context.Background(), map[string]any{
				"name":            c.String("name"),
				"category":        c.String("category"),
				"benchmark_score": c.Float64("benchmark"),
				"price":           c.Float64("price"),
			})
			if err != nil {
				return err
			}
			if c.String("output") == "json" {
				return writeJSON(c.App.Writer, result)
			}
			writeValueTier(c.App.Writer, result)
			return nil
		},
	}
}

func platformsCommand() *cli.Command {
	return &cli.Command{
		Name:  "platforms",
		Usage: "Print the effective microarchitecture and socket tables",
		Action: func(c *cli.Context) error {
			service, err := newService(c)
			if err != nil {
				return err
			}
			table := service.Platforms()
			w := c.App.Writer

			fmt.Fprintln(w, "SOCKET     MEMORY")
			for _, sock := range table.Sockets() {
				generations := make([]string, len(sock.Memory))
				for i, gen := range sock.Memory {
					generations[i] = fmt.Sprintf("DDR%d", gen)
				}
				fmt.Fprintf(w, "%-10s %s\n", sock.Name, strings.Join(generations, ", "))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "MICROARCHITECTURE     SOCKET     ALIASES")
			for _, arch := range table.Microarchitectures() {
				fmt.Fprintf(w, "%-21s %-10s %s\n", arch.Name, arch.Socket, strings.Join(arch.Aliases, ", "))
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeAnalysis(w io.Writer, result models.AnalysisResult) {
	fmt.Fprintf(w, "Predicted FPS:  %.1f\n", result.PredictedFPS)
	fmt.Fprintf(w, "Bottleneck:     %s (%s)\n", result.BottleneckComponent, result.BottleneckSeverity)
	fmt.Fprintf(w, "                %s\n", result.BottleneckRecommendation)
	fmt.Fprintf(w, "Integrity:      %d/100 %s\n", result.IntegrityScore, result.IntegrityStatus)
	writeList(w, "Warnings", result.IntegrityWarnings)
	writeList(w, "Notes", result.IntegrityNotes)
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func writeComparison(w io.Writer, comparison models.EcosystemComparison) {
	build := comparison.YourBuild
	fmt.Fprintf(w, "Your build: $%.2f, %.1f FPS at 1080p, value score %.2f\n",
		build.Price, build.FPS1080p, build.ValueScore)
	for _, system := range comparison.Comparisons {
		fmt.Fprintf(w, "  %-26s $%-7.0f %5.0f FPS  %+6.1f%%  %s\n",
			system.System, system.Price, system.FPS1080p, system.YourValueVsSystem, system.Recommendation)
	}
	if comparison.BestValueAlternative != nil {
		fmt.Fprintf(w, "Best value alternative: %s\n", *comparison.BestValueAlternative)
	}
}

func writeValueTier(w io.Writer, result models.ValueTierResult) {
	fmt.Fprintf(w, "Tier:           %s\n", result.Tier)
	fmt.Fprintf(w, "Value score:    %.1f/100\n", result.ValueScore)
	writeList(w, "Similar parts", result.SimilarParts)
}
