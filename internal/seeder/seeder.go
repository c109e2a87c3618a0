// Package seeder materializes the external movie dataset into the
// catalog schema: two CSV files (movie attributes and per-movie credits,
// both carrying JSON-encoded nested arrays inside tabular cells) are
// staged verbatim, reduced to Genre/Director dimensions, ranked into a
// bounded candidate window and inserted as movies, genre links and
// synthetic ratings.
//
// A run is one atomic unit. All previously derived rows are purged and
// identity counters reset before loading, and any failure rolls the
// whole run back, purge included, leaving the store exactly as it was.
// Runs must not execute concurrently; callers serialize them.
package seeder

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/config"
	"github.com/cinefeed/cinefeed/internal/database"
)

// Options bound the selection window and the synthetic rating generator
type Options struct {
	// TopN caps the number of selected candidates
	TopN int

	// Rating count drawn uniformly from [MinRatings, MaxRatings] per movie
	MinRatings int
	MaxRatings int

	// Scores drawn uniformly from [MinScore, MaxScore]
	MinScore int
	MaxScore int

	// DefaultYear substitutes a missing or unparseable release date
	DefaultYear int

	// CastSummaryLen caps the number of names in the cast summary
	CastSummaryLen int

	// RandomSeed fixes the rating generator when non-zero; zero means
	// time-seeded (non-reproducible) synthesis
	RandomSeed int64
}

// DefaultOptions returns the standard seeding bounds
func DefaultOptions() Options {
	return Options{
		TopN:           1000,
		MinRatings:     1,
		MaxRatings:     40,
		MinScore:       1,
		MaxScore:       10,
		DefaultYear:    2000,
		CastSummaryLen: 3,
	}
}

// OptionsFromConfig maps the seed section of the application config
// onto pipeline options
func OptionsFromConfig(cfg config.SeedConfig) Options {
	return Options{
		TopN:           cfg.TopN,
		MinRatings:     cfg.MinRatings,
		MaxRatings:     cfg.MaxRatings,
		MinScore:       cfg.MinScore,
		MaxScore:       cfg.MaxScore,
		DefaultYear:    cfg.DefaultYear,
		CastSummaryLen: cfg.CastSummaryLen,
		RandomSeed:     cfg.RandomSeed,
	}
}

// Result reports what a successful run inserted
type Result struct {
	RunID      string        `json:"run_id"`
	RawMovies  int           `json:"raw_movies"`
	RawCredits int           `json:"raw_credits"`
	Candidates int           `json:"candidates"`
	Genres     int           `json:"genres"`
	Directors  int           `json:"directors"`
	Movies     int           `json:"movies"`
	GenreLinks int           `json:"genre_links"`
	Ratings    int           `json:"ratings"`
	Duration   time.Duration `json:"duration"`
}

// Seeder runs the dataset seeding pipeline against one database
type Seeder struct {
	db    *gorm.DB
	tm    *database.TransactionManager
	log   hclog.Logger
	opts  Options
	rng   *rand.Rand
	state *stateMachine
}

// New creates a seeder with the given options
func New(db *gorm.DB, opts Options) *Seeder {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Seeder{
		db:    db,
		tm:    database.NewTransactionManager(db),
		log:   hclog.New(&hclog.LoggerOptions{Name: "seeder"}),
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
		state: newStateMachine(),
	}
}

// Stage returns the stage the current (or last) run reached
func (s *Seeder) Stage() Stage {
	return s.state.Current()
}

// Run executes the full pipeline inside one transaction. On success the
// five catalog tables are fully rebuilt and the returned result carries
// the per-table row counts; on failure the database is untouched and the
// error reports the failing stage and kind.
func (s *Seeder) Run(ctx context.Context, moviesPath, creditsPath string) (*Result, error) {
	started := time.Now()
	result := &Result{RunID: uuid.NewString()}
	s.state = newStateMachine()

	s.log.Info("starting seed run", "run_id", result.RunID,
		"movies", moviesPath, "credits", creditsPath, "top_n", s.opts.TopN)

	err := s.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.state.advance(StagePurging); err != nil {
			return err
		}
		if err := s.purge(tx); err != nil {
			return err
		}
		s.log.Debug("purged derived tables and staging relations")

		if err := s.state.advance(StageStaging); err != nil {
			return err
		}
		rawMovies, rawCredits, err := s.ingest(tx, moviesPath, creditsPath)
		if err != nil {
			return err
		}
		result.RawMovies = rawMovies
		result.RawCredits = rawCredits
		s.log.Info("staged raw datasets", "movies", rawMovies, "credits", rawCredits)

		if err := s.state.advance(StageExtracting); err != nil {
			return err
		}
		genres, err := s.extractGenres(tx)
		if err != nil {
			return err
		}
		directors, err := s.extractDirectors(tx)
		if err != nil {
			return err
		}
		result.Genres = len(genres)
		result.Directors = len(directors)
		s.log.Info("extracted dimensions", "genres", len(genres), "directors", len(directors))

		if err := s.state.advance(StageSelecting); err != nil {
			return err
		}
		selected, err := s.selectCandidates(tx)
		if err != nil {
			return err
		}
		result.Candidates = len(selected)
		s.log.Info("selected candidates", "count", len(selected))

		if err := s.state.advance(StageInsertingFacts); err != nil {
			return err
		}
		movieIDs, err := s.insertMovies(tx, directors)
		if err != nil {
			return err
		}
		result.Movies = len(movieIDs)

		if err := s.state.advance(StageInsertingAssociations); err != nil {
			return err
		}
		links, err := s.linkGenres(tx, movieIDs, genres)
		if err != nil {
			return err
		}
		result.GenreLinks = links

		if err := s.state.advance(StageSynthesizingRatings); err != nil {
			return err
		}
		var orderedMovieIDs []uint
		if err := tx.Model(&database.Movie{}).Order("id asc").Pluck("id", &orderedMovieIDs).Error; err != nil {
			return NewIngestError(StageSynthesizingRatings, "failed to list inserted movies", err)
		}
		ratings, err := s.synthesizeRatings(tx, orderedMovieIDs)
		if err != nil {
			return err
		}
		result.Ratings = ratings

		return s.state.advance(StageCommitted)
	})
	if err != nil {
		s.state.abort()
		s.log.Error("seed run aborted", "run_id", result.RunID,
			"stage", string(StageOf(err)), "kind", string(KindOf(err)), "error", err)
		return nil, err
	}

	result.Duration = time.Since(started)
	s.log.Info("seed run committed", "run_id", result.RunID,
		"movies", result.Movies, "genres", result.Genres, "directors", result.Directors,
		"genre_links", result.GenreLinks, "ratings", result.Ratings,
		"duration", result.Duration.String())
	return result, nil
}

// purge deletes every previously derived row, children before parents so
// foreign keys stay satisfied, drops stale staging tables and resets
// identity counters so surrogate ids restart from 1.
func (s *Seeder) purge(tx *gorm.DB) error {
	deletions := []string{
		"DELETE FROM movie_ratings",
		"DELETE FROM movie_genres",
		"DELETE FROM movies",
		"DELETE FROM directors",
		"DELETE FROM genres",
	}
	for _, stmt := range deletions {
		if err := tx.Exec(stmt).Error; err != nil {
			return NewIngestError(StagePurging, "failed to purge derived rows", err)
		}
	}

	if err := tx.Migrator().DropTable(&SelectedCandidate{}, &RawCredit{}, &RawMovie{}); err != nil {
		return NewIngestError(StagePurging, "failed to drop stale staging tables", err)
	}

	for _, table := range []string{"movie_ratings", "movies", "directors", "genres"} {
		if err := resetIdentity(tx, table); err != nil {
			return NewIngestError(StagePurging, "failed to reset identity counter of "+table, err)
		}
	}
	return nil
}

// resetIdentity restarts table's surrogate id counter at 1
func resetIdentity(tx *gorm.DB, table string) error {
	switch tx.Dialector.Name() {
	case "sqlite":
		// sqlite_sequence only exists once an AUTOINCREMENT insert happened
		var n int64
		if err := tx.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").Scan(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		return tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table).Error
	case "postgres":
		return tx.Exec("ALTER SEQUENCE IF EXISTS " + table + "_id_seq RESTART WITH 1").Error
	default:
		return nil
	}
}
