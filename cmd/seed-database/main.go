package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cinefeed/cinefeed/internal/config"
	"github.com/cinefeed/cinefeed/internal/database"
	"github.com/cinefeed/cinefeed/internal/seeder"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		moviesCSV   = flag.String("movies", "", "Path to the movie metadata CSV (overrides config)")
		creditsCSV  = flag.String("credits", "", "Path to the credits CSV (overrides config)")
		topN        = flag.Int("top", 0, "Number of top-ranked movies to load (overrides config)")
		randomSeed  = flag.Int64("seed", 0, "Seed for rating synthesis; 0 means time-based")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("seed-database (cinefeed)")
		os.Exit(0)
	}

	if err := config.Load(*configPath); err != nil {
		log.Printf("Warning: failed to load configuration: %v", err)
		log.Printf("Using default configuration")
	}
	cfg := config.Get()

	opts := seeder.OptionsFromConfig(cfg.Seed)
	if *topN > 0 {
		opts.TopN = *topN
	}
	if *randomSeed != 0 {
		opts.RandomSeed = *randomSeed
	}

	moviesPath := cfg.Seed.MoviesCSV
	if *moviesCSV != "" {
		moviesPath = *moviesCSV
	}
	creditsPath := cfg.Seed.CreditsCSV
	if *creditsCSV != "" {
		creditsPath = *creditsCSV
	}
	if moviesPath == "" || creditsPath == "" {
		log.Fatal("Both a movies CSV and a credits CSV are required (via flags or config)")
	}

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	log.Printf("Seeding database from %s and %s (top %d)", moviesPath, creditsPath, opts.TopN)
	result, err := seeder.New(db, opts).Run(ctx, moviesPath, creditsPath)
	if err != nil {
		log.Printf("Seed run failed at stage %q (%s): %v", seeder.StageOf(err), seeder.KindOf(err), err)
		os.Exit(1)
	}

	fmt.Println("Seed run complete")
	fmt.Printf("  run id:        %s\n", result.RunID)
	fmt.Printf("  raw movies:    %d\n", result.RawMovies)
	fmt.Printf("  raw credits:   %d\n", result.RawCredits)
	fmt.Printf("  candidates:    %d\n", result.Candidates)
	fmt.Printf("  genres:        %d\n", result.Genres)
	fmt.Printf("  directors:     %d\n", result.Directors)
	fmt.Printf("  movies:        %d\n", result.Movies)
	fmt.Printf("  genre links:   %d\n", result.GenreLinks)
	fmt.Printf("  ratings:       %d\n", result.Ratings)
	fmt.Printf("  duration:      %s\n", result.Duration.Round(time.Millisecond))
}
