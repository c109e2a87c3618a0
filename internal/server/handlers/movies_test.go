package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cinefeed/cinefeed/internal/database"
	"github.com/cinefeed/cinefeed/internal/repository"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&[]database.Genre{{Name: "Action"}, {Name: "Drama"}}).Error)
	require.NoError(t, db.Create(&database.Director{Name: "John Smith"}).Error)
	require.NoError(t, db.Create(&database.Movie{Title: "Alpha", DirectorID: 1, ReleaseYear: 1994, Cast: "B, C, A"}).Error)
	require.NoError(t, db.Create(&database.MovieGenre{MovieID: 1, GenreID: 1}).Error)
	require.NoError(t, db.Create(&[]database.MovieRating{
		{MovieID: 1, Score: 8},
		{MovieID: 1, Score: 7},
		{MovieID: 1, Score: 8},
	}).Error)

	repo := repository.NewMovieRepository(db)
	moviesHandler := NewMoviesHandler(repo)
	catalogHandler := NewCatalogHandler(repo)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/movies", moviesHandler.ListMovies)
	api.POST("/movies", moviesHandler.CreateMovie)
	api.GET("/movies/:id", moviesHandler.GetMovie)
	api.PUT("/movies/:id", moviesHandler.UpdateMovie)
	api.DELETE("/movies/:id", moviesHandler.DeleteMovie)
	api.POST("/movies/:id/ratings", moviesHandler.CreateRating)
	api.GET("/genres", catalogHandler.ListGenres)
	api.GET("/directors", catalogHandler.ListDirectors)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Status string                 `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	return envelope.Data
}

func TestGetMovieWithAverageRating(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/movies/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "Alpha", data["title"])
	assert.Equal(t, "John Smith", data["director"])
	assert.Equal(t, "B, C, A", data["cast"])
	// (8+7+8)/3 rounded to one decimal
	assert.InDelta(t, 7.7, data["average_rating"], 0.001)
	assert.EqualValues(t, 3, data["rating_count"])
}

func TestGetMovieNotFound(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/movies/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/movies/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListMovies(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/movies?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.EqualValues(t, 1, data["total"])
	assert.EqualValues(t, 1, data["page"])
	movies, ok := data["movies"].([]interface{})
	require.True(t, ok)
	require.Len(t, movies, 1)

	// no match still succeeds with an empty page
	w = doRequest(t, r, http.MethodGet, "/api/v1/movies?title=zzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	assert.EqualValues(t, 0, data["total"])

	w = doRequest(t, r, http.MethodGet, "/api/v1/movies?release_year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateMovie(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/v1/movies", gin.H{
		"title":        "Beta",
		"release_year": 1999,
		"director_id":  1,
		"genre_ids":    []uint{1, 2},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, "Beta", data["title"])
	assert.Len(t, data["genres"], 2)

	// unknown director
	w = doRequest(t, r, http.MethodPost, "/api/v1/movies", gin.H{
		"title":        "Gamma",
		"release_year": 2001,
		"director_id":  99,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// unknown genre id
	w = doRequest(t, r, http.MethodPost, "/api/v1/movies", gin.H{
		"title":        "Gamma",
		"release_year": 2001,
		"director_id":  1,
		"genre_ids":    []uint{99},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing required fields
	w = doRequest(t, r, http.MethodPost, "/api/v1/movies", gin.H{"title": "Gamma"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteMovie(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodPut, "/api/v1/movies/1", gin.H{
		"title":        "Alpha Redux",
		"release_year": 1995,
		"director_id":  1,
		"genre_ids":    []uint{2},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "Alpha Redux", data["title"])
	assert.Equal(t, []interface{}{"Drama"}, data["genres"])

	w = doRequest(t, r, http.MethodDelete, "/api/v1/movies/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/v1/movies/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/api/v1/movies/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRating(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/v1/movies/1/ratings", gin.H{"score": 9})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.EqualValues(t, 9, data["score"])

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/1/ratings", gin.H{"score": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/1/ratings", gin.H{"score": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/movies/999/ratings", gin.H{"score": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListGenresAndDirectors(t *testing.T) {
	r := setupTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/v1/genres", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var genreEnvelope struct {
		Status string `json:"status"`
		Data   []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &genreEnvelope))
	require.Len(t, genreEnvelope.Data, 2)
	assert.Equal(t, "Action", genreEnvelope.Data[0].Name)

	w = doRequest(t, r, http.MethodGet, "/api/v1/directors", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var directorEnvelope struct {
		Status string `json:"status"`
		Data   []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &directorEnvelope))
	require.Len(t, directorEnvelope.Data, 1)
	assert.Equal(t, "John Smith", directorEnvelope.Data[0].Name)
}
