package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zahidhamidi/well-data-refine-62/internal/config"
	"github.com/zahidhamidi/well-data-refine-62/internal/exporter"
	"github.com/zahidhamidi/well-data-refine-62/internal/infrastructure"
	"github.com/zahidhamidi/well-data-refine-62/internal/services"
	"github.com/zahidhamidi/well-data-refine-62/internal/validation"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "input file (delimited text or xlsx)")
	format := flag.String("format", "", "decoder hint, defaults to the input filename")
	strategy := flag.String("strategy", string(domain.StrategyDepthInterval), "decimation strategy: depth_interval | bin_count")
	interval := flag.Float64("interval", 10, "depth interval in metres (depth_interval strategy)")
	bins := flag.Int("bins", 50, "number of bins (bin_count strategy)")
	filterMode := flag.String("filter", string(domain.FilterNone), "range filter: none | section | formation")
	rangeID := flag.String("range", "", "id of the section or formation to keep")
	sectionsPath := flag.String("sections", "", "JSON file with the drilling sections")
	formationsPath := flag.String("formations", "", "JSON file with the geological formations")
	out := flag.String("out", "decimated.csv", "output csv file path")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: refine -in <file> [-strategy depth_interval|bin_count] [-out file.csv]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	cfg.Logging.Output = "console"

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if err := run(cfg, logger, pipelineArgs{
		in:             *in,
		format:         *format,
		strategy:       *strategy,
		interval:       *interval,
		bins:           *bins,
		filterMode:     *filterMode,
		rangeID:        *rangeID,
		sectionsPath:   *sectionsPath,
		formationsPath: *formationsPath,
		out:            *out,
	}); err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type pipelineArgs struct {
	in             string
	format         string
	strategy       string
	interval       float64
	bins           int
	filterMode     string
	rangeID        string
	sectionsPath   string
	formationsPath string
	out            string
}

func run(cfg *config.Config, logger *slog.Logger, args pipelineArgs) error {
	// CLI runs never pass through the tracing middleware; attach a trace ID
	// so every log line of one invocation correlates.
	ctx := infrastructure.EnsureTraceID(context.Background())

	data, err := os.ReadFile(args.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	hint := args.format
	if hint == "" {
		hint = filepath.Base(args.in)
	}

	delimiter := ','
	if cfg.Dataset.Delimiter != "" {
		delimiter = rune(cfg.Dataset.Delimiter[0])
	}
	svc := services.NewDatasetService(delimiter, cfg.Dataset.FallbackRows, logger)

	if args.sectionsPath != "" {
		ranges, err := loadRanges(args.sectionsPath)
		if err != nil {
			return fmt.Errorf("load sections: %w", err)
		}
		if err := svc.SetSections(ctx, ranges); err != nil {
			return err
		}
	}
	if args.formationsPath != "" {
		ranges, err := loadRanges(args.formationsPath)
		if err != nil {
			return fmt.Errorf("load formations: %w", err)
		}
		if err := svc.SetFormations(ctx, ranges); err != nil {
			return err
		}
	}

	if err := svc.SetConfig(ctx, domain.DecimationConfig{
		Strategy:        domain.Strategy(args.strategy),
		DepthInterval:   args.interval,
		BinCount:        args.bins,
		FilterMode:      domain.FilterMode(args.filterMode),
		SelectedRangeID: args.rangeID,
	}); err != nil {
		return err
	}

	result, err := svc.LoadDataset(ctx, data, hint)
	if err != nil {
		return err
	}

	fmt.Printf("Records:      %d (dropped %d, fallback %v)\n", result.Records, result.Dropped, result.Fallback)
	fmt.Printf("Completeness: %d\n", result.Quality.Completeness)
	fmt.Printf("Conformity:   %d\n", result.Quality.Conformity)
	fmt.Printf("Statistics:   %d\n", result.Quality.Statistics)
	fmt.Printf("Overall:      %d\n", result.Quality.Overall)

	points, err := svc.Points(ctx)
	if err != nil {
		return err
	}

	validator := validation.NewUploadValidator(logger, cfg.Dataset.MaxUploadBytes)
	if err := validator.ValidateOutputDirectory(filepath.Dir(args.out)); err != nil {
		return err
	}

	writer := exporter.NewCSVWriter(logger)
	if err := writer.WriteFile(args.out, points); err != nil {
		return err
	}

	fmt.Printf("Wrote %d decimated points to %s\n", len(points), args.out)
	return nil
}

func loadRanges(path string) ([]domain.DepthRange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ranges []domain.DepthRange
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ranges, nil
}
