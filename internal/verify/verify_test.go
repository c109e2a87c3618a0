package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cinefeed/cinefeed/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedConsistentCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	require.NoError(t, db.Create(&database.Genre{Name: "Action"}).Error)
	require.NoError(t, db.Create(&database.Director{Name: "John Smith"}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Alpha", DirectorID: 1, ReleaseYear: 1994}).Error)
	require.NoError(t, db.Create(&database.MovieGenre{MovieID: 1, GenreID: 1}).Error)
	require.NoError(t, db.Create(&database.MovieRating{MovieID: 1, Score: 8}).Error)
}

func TestCheckConsistentCatalog(t *testing.T) {
	db := setupTestDB(t)
	seedConsistentCatalog(t, db)

	report, err := Check(db, 1000)
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, int64(1), report.Movies)
	assert.Equal(t, int64(1), report.Genres)
	assert.Equal(t, int64(1), report.Directors)
	assert.Equal(t, int64(1), report.GenreLinks)
	assert.Equal(t, int64(1), report.Ratings)
	assert.Contains(t, report.Summary(), "catalog consistent")
}

func TestCheckFindsOrphans(t *testing.T) {
	db := setupTestDB(t)
	seedConsistentCatalog(t, db)

	// dangling references in every direction
	require.NoError(t, db.Create(&database.Movie{Title: "Orphan", DirectorID: 99, ReleaseYear: 2001}).Error)
	require.NoError(t, db.Create(&database.MovieGenre{MovieID: 50, GenreID: 1}).Error)
	require.NoError(t, db.Create(&database.MovieGenre{MovieID: 1, GenreID: 50}).Error)
	require.NoError(t, db.Create(&database.MovieRating{MovieID: 50, Score: 5}).Error)

	report, err := Check(db, 1000)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, int64(1), report.OrphanedMovies)
	assert.Equal(t, int64(1), report.OrphanedLinkMovies)
	assert.Equal(t, int64(1), report.OrphanedLinkGenres)
	assert.Equal(t, int64(1), report.OrphanedRatings)
	assert.Contains(t, report.Summary(), "catalog inconsistent")
}

func TestCheckFindsOutOfRangeScores(t *testing.T) {
	db := setupTestDB(t)
	seedConsistentCatalog(t, db)

	// rebuild the table without the check constraint so bad rows can
	// exist, as they could after a manual edit or foreign import
	require.NoError(t, db.Exec("DROP TABLE movie_ratings").Error)
	require.NoError(t, db.Exec("CREATE TABLE movie_ratings (id integer PRIMARY KEY AUTOINCREMENT, movie_id integer NOT NULL, score integer NOT NULL)").Error)
	require.NoError(t, db.Exec("INSERT INTO movie_ratings (movie_id, score) VALUES (1, 0)").Error)
	require.NoError(t, db.Exec("INSERT INTO movie_ratings (movie_id, score) VALUES (1, 11)").Error)

	report, err := Check(db, 1000)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, int64(2), report.OutOfRangeScores)
}

func TestCheckEnforcesExpectedMax(t *testing.T) {
	db := setupTestDB(t)
	seedConsistentCatalog(t, db)

	report, err := Check(db, 1)
	require.NoError(t, err)
	assert.True(t, report.OK())

	require.NoError(t, db.Create(&database.Director{Name: "Jane Doe"}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Beta", DirectorID: 2, ReleaseYear: 1999}).Error)

	report, err = Check(db, 1)
	require.NoError(t, err)
	assert.False(t, report.OK())

	// no cap configured means any count passes
	report, err = Check(db, 0)
	require.NoError(t, err)
	assert.True(t, report.OK())
}
