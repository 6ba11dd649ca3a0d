package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vanshika/linktrace/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		pages            = flag.Int("pages", cfg.NumPages, "number of pages to generate")
		minLinks         = flag.Int("min-links", cfg.MinLinks, "minimum outbound links per page")
		maxLinks         = flag.Int("max-links", cfg.MaxLinks, "maximum outbound links per page")
		reciprocalChance = flag.Float64("reciprocal-chance", cfg.ReciprocalChance, "probability that a link is mirrored back")
		orgChance        = flag.Float64("org-chance", cfg.OrgChance, "probability that a page is an organisation")
		seed             = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir        = flag.String("output-dir", "data", "directory to write "+generator.PagesFile)
		writeStdout      = flag.Bool("stdout", false, "write the pages to stdout instead of a file")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumPages:         *pages,
		MinLinks:         *minLinks,
		MaxLinks:         *maxLinks,
		ReciprocalChance: clampProbability(*reciprocalChance),
		OrgChance:        clampProbability(*orgChance),
		Seed:             *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dataset, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset.Pages); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d pages into %s\n", len(dataset.Pages), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
