package seeder

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinefeed/cinefeed/internal/database"
)

func rankCandidate(sourceID int64, voteCount *int64, popularity, voteAverage *float64) candidate {
	return candidate{movie: RawMovie{
		SourceID:    sourceID,
		VoteCount:   voteCount,
		Popularity:  popularity,
		VoteAverage: voteAverage,
	}}
}

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func sortedSourceIDs(candidates []candidate) []int64 {
	sort.Slice(candidates, func(i, j int) bool {
		return rankLess(&candidates[i], &candidates[j])
	})
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.movie.SourceID)
	}
	return ids
}

func TestRankingTieBreaksOnSourceID(t *testing.T) {
	// fully tied metrics leave only the ascending source-id order
	candidates := []candidate{
		rankCandidate(300, i64(1000), f64(10.0), f64(7.0)),
		rankCandidate(100, i64(1000), f64(10.0), f64(7.0)),
		rankCandidate(200, i64(1000), f64(10.0), f64(7.0)),
	}
	assert.Equal(t, []int64{100, 200, 300}, sortedSourceIDs(candidates))
}

func TestRankingNullsSortLast(t *testing.T) {
	// a null vote_count ranks after any non-null one
	candidates := []candidate{
		rankCandidate(100, nil, f64(99.0), f64(9.9)),
		rankCandidate(200, i64(1), f64(1.0), f64(1.0)),
	}
	assert.Equal(t, []int64{200, 100}, sortedSourceIDs(candidates))

	// with vote_count tied, a null popularity ranks after a non-null one
	candidates = []candidate{
		rankCandidate(100, i64(1000), nil, f64(9.9)),
		rankCandidate(200, i64(1000), f64(1.0), f64(1.0)),
	}
	assert.Equal(t, []int64{200, 100}, sortedSourceIDs(candidates))

	// with vote_count and popularity tied, a null vote_average ranks last
	candidates = []candidate{
		rankCandidate(100, i64(1000), f64(10.0), nil),
		rankCandidate(200, i64(1000), f64(10.0), f64(1.0)),
	}
	assert.Equal(t, []int64{200, 100}, sortedSourceIDs(candidates))

	// two all-null rows fall back to source id
	candidates = []candidate{
		rankCandidate(200, nil, nil, nil),
		rankCandidate(100, nil, nil, nil),
	}
	assert.Equal(t, []int64{100, 200}, sortedSourceIDs(candidates))
}

func TestSeederSelectionWithTiedMetrics(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()

	// three rows fully tied on every ranking metric, listed out of order,
	// plus a fourth with a null vote_count that must rank behind them all
	moviesPath := writeCSV(t, dir, "tied_movies.csv", [][]string{
		{"id", "title", "genres", "release_date", "popularity", "vote_average", "vote_count"},
		{"303", "Tied C", ``, "2001-01-01", "10.0", "7.0", "1000"},
		{"301", "Tied A", ``, "2001-01-01", "10.0", "7.0", "1000"},
		{"302", "Tied B", ``, "2001-01-01", "10.0", "7.0", "1000"},
		{"304", "NoVotes", ``, "2001-01-01", "10.0", "7.0", ""},
	})
	creditsPath := writeCSV(t, dir, "tied_credits.csv", [][]string{
		{"movie_id", "title", "cast", "crew"},
		{"301", "Tied A", ``, `[{"name": "John Smith", "job": "Director"}]`},
		{"302", "Tied B", ``, `[{"name": "John Smith", "job": "Director"}]`},
		{"303", "Tied C", ``, `[{"name": "John Smith", "job": "Director"}]`},
		{"304", "NoVotes", ``, `[{"name": "John Smith", "job": "Director"}]`},
	})

	opts := testOptions()
	opts.TopN = 2
	result, err := New(db, opts).Run(context.Background(), moviesPath, creditsPath)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Movies)

	// the window keeps the two lowest source ids of the tied group; the
	// null-vote_count row loses to every tied peer
	var titles []string
	require.NoError(t, db.Model(&database.Movie{}).Order("id").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"Tied A", "Tied B"}, titles)

	// rerunning over the same input selects the same window
	result, err = New(db, opts).Run(context.Background(), moviesPath, creditsPath)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Movies)

	titles = nil
	require.NoError(t, db.Model(&database.Movie{}).Order("id").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"Tied A", "Tied B"}, titles)
}
