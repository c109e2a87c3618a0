// Package verify runs read-only consistency checks over the catalog
// schema produced by the seeding pipeline. It performs no writes.
package verify

import (
	"fmt"

	"gorm.io/gorm"
)

// Report holds row counts and every consistency violation found
type Report struct {
	Movies      int64 `json:"movies"`
	Genres      int64 `json:"genres"`
	Directors   int64 `json:"directors"`
	GenreLinks  int64 `json:"genre_links"`
	Ratings     int64 `json:"ratings"`
	ExpectedMax int   `json:"expected_max_movies"`

	OrphanedMovies     int64 `json:"orphaned_movies"`      // movies whose director is missing
	OrphanedLinkMovies int64 `json:"orphaned_link_movies"` // movie_genres rows with no movie
	OrphanedLinkGenres int64 `json:"orphaned_link_genres"` // movie_genres rows with no genre
	OrphanedRatings    int64 `json:"orphaned_ratings"`     // ratings with no movie
	OutOfRangeScores   int64 `json:"out_of_range_scores"`  // ratings outside [1,10]
}

// OK reports whether the catalog is internally consistent and, when an
// expected maximum is set, within the configured movie count
func (r *Report) OK() bool {
	if r.ExpectedMax > 0 && r.Movies > int64(r.ExpectedMax) {
		return false
	}
	return r.OrphanedMovies == 0 &&
		r.OrphanedLinkMovies == 0 &&
		r.OrphanedLinkGenres == 0 &&
		r.OrphanedRatings == 0 &&
		r.OutOfRangeScores == 0
}

// Summary renders a short human-readable verdict
func (r *Report) Summary() string {
	if r.OK() {
		return fmt.Sprintf("catalog consistent: %d movies, %d genres, %d directors, %d genre links, %d ratings",
			r.Movies, r.Genres, r.Directors, r.GenreLinks, r.Ratings)
	}
	return fmt.Sprintf("catalog inconsistent: %d orphaned movies, %d/%d orphaned links, %d orphaned ratings, %d bad scores",
		r.OrphanedMovies, r.OrphanedLinkMovies, r.OrphanedLinkGenres, r.OrphanedRatings, r.OutOfRangeScores)
}

// Check counts rows per table and scans for dangling foreign keys and
// out-of-range rating scores
func Check(db *gorm.DB, expectedMaxMovies int) (*Report, error) {
	report := &Report{ExpectedMax: expectedMaxMovies}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"movies", &report.Movies},
		{"genres", &report.Genres},
		{"directors", &report.Directors},
		{"movie_genres", &report.GenreLinks},
		{"movie_ratings", &report.Ratings},
	}
	for _, c := range counts {
		if err := db.Table(c.table).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	orphans := []struct {
		query string
		dest  *int64
	}{
		{`SELECT count(*) FROM movies m LEFT JOIN directors d ON d.id = m.director_id WHERE d.id IS NULL`, &report.OrphanedMovies},
		{`SELECT count(*) FROM movie_genres mg LEFT JOIN movies m ON m.id = mg.movie_id WHERE m.id IS NULL`, &report.OrphanedLinkMovies},
		{`SELECT count(*) FROM movie_genres mg LEFT JOIN genres g ON g.id = mg.genre_id WHERE g.id IS NULL`, &report.OrphanedLinkGenres},
		{`SELECT count(*) FROM movie_ratings r LEFT JOIN movies m ON m.id = r.movie_id WHERE m.id IS NULL`, &report.OrphanedRatings},
		{`SELECT count(*) FROM movie_ratings WHERE score < 1 OR score > 10`, &report.OutOfRangeScores},
	}
	for _, o := range orphans {
		if err := db.Raw(o.query).Scan(o.dest).Error; err != nil {
			return nil, fmt.Errorf("consistency scan failed: %w", err)
		}
	}

	return report, nil
}
