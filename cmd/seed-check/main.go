package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cinefeed/cinefeed/internal/config"
	"github.com/cinefeed/cinefeed/internal/database"
	"github.com/cinefeed/cinefeed/internal/verify"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		maxMovies  = flag.Int("max-movies", 0, "Expected maximum movie count (defaults to the configured top N)")
		jsonOutput = flag.Bool("json", false, "Emit the report as JSON")
	)
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Printf("Warning: failed to load configuration: %v", err)
		log.Printf("Using default configuration")
	}
	cfg := config.Get()

	expected := cfg.Seed.TopN
	if *maxMovies > 0 {
		expected = *maxMovies
	}

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	report, err := verify.Check(database.GetDB(), expected)
	if err != nil {
		log.Fatalf("Consistency check failed: %v", err)
	}

	if *jsonOutput {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(report.Summary())
		fmt.Printf("  movies:      %d (max %d)\n", report.Movies, report.ExpectedMax)
		fmt.Printf("  genres:      %d\n", report.Genres)
		fmt.Printf("  directors:   %d\n", report.Directors)
		fmt.Printf("  genre links: %d\n", report.GenreLinks)
		fmt.Printf("  ratings:     %d\n", report.Ratings)
	}

	if !report.OK() {
		os.Exit(1)
	}
}
