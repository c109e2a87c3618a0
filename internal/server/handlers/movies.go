package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinefeed/cinefeed/internal/database"
	apierrors "github.com/cinefeed/cinefeed/internal/errors"
	"github.com/cinefeed/cinefeed/internal/repository"
)

// MoviesHandler serves the movie endpoints of the catalog API
type MoviesHandler struct {
	repo *repository.MovieRepository
}

// NewMoviesHandler creates a new movies handler
func NewMoviesHandler(repo *repository.MovieRepository) *MoviesHandler {
	return &MoviesHandler{repo: repo}
}

// MovieResponse is the wire representation of a movie
type MovieResponse struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	ReleaseYear   int      `json:"release_year"`
	Cast          string   `json:"cast"`
	Director      string   `json:"director"`
	DirectorID    uint     `json:"director_id"`
	Genres        []string `json:"genres"`
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`
}

// MovieListResponse is one page of movies plus paging metadata
type MovieListResponse struct {
	Movies   []MovieResponse `json:"movies"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type movieRequest struct {
	Title       string `json:"title" binding:"required"`
	ReleaseYear int    `json:"release_year" binding:"required"`
	Cast        string `json:"cast"`
	DirectorID  uint   `json:"director_id" binding:"required"`
	GenreIDs    []uint `json:"genre_ids"`
}

type ratingRequest struct {
	Score int `json:"score" binding:"required"`
}

func toMovieResponse(movie *database.Movie) MovieResponse {
	resp := MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		ReleaseYear: movie.ReleaseYear,
		Cast:        movie.Cast,
		DirectorID:  movie.DirectorID,
		Genres:      make([]string, 0, len(movie.Genres)),
		RatingCount: len(movie.Ratings),
	}
	if movie.Director != nil {
		resp.Director = movie.Director.Name
	}
	for _, g := range movie.Genres {
		resp.Genres = append(resp.Genres, g.Name)
	}
	if len(movie.Ratings) > 0 {
		total := 0
		for _, r := range movie.Ratings {
			total += r.Score
		}
		avg := math.Round(float64(total)/float64(len(movie.Ratings))*10) / 10
		resp.AverageRating = &avg
	}
	return resp
}

// ListMovies returns a filtered, paginated movie listing
func (h *MoviesHandler) ListMovies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filter := repository.MovieFilter{
		Page:     page,
		PageSize: pageSize,
		Title:    c.Query("title"),
		Genre:    c.Query("genre"),
	}
	if yearStr := c.Query("release_year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			apierrors.HandleValidationError(c, "release_year must be an integer", "release_year")
			return
		}
		filter.ReleaseYear = year
	}

	movies, total, err := h.repo.ListMovies(c.Request.Context(), filter)
	if err != nil {
		apierrors.HandleDatabaseError(c, "list movies", err)
		return
	}

	responses := make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		responses = append(responses, toMovieResponse(m))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": MovieListResponse{
			Movies:   responses,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		},
	})
}

// GetMovie returns a single movie by id
func (h *MoviesHandler) GetMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	movie, err := h.repo.GetMovieByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.HandleNotFound(c, "movie", c.Param("id"))
			return
		}
		apierrors.HandleDatabaseError(c, "get movie", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   toMovieResponse(movie),
	})
}

// CreateMovie adds a new movie to the catalog
func (h *MoviesHandler) CreateMovie(c *gin.Context) {
	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.HandleValidationError(c, "invalid movie payload: "+err.Error(), "body")
		return
	}

	if _, err := h.repo.GetDirectorByID(c.Request.Context(), req.DirectorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.HandleNotFound(c, "director", strconv.FormatUint(uint64(req.DirectorID), 10))
			return
		}
		apierrors.HandleDatabaseError(c, "get director", err)
		return
	}

	genres, err := h.repo.GetGenresByIDs(c.Request.Context(), req.GenreIDs)
	if err != nil {
		apierrors.HandleDatabaseError(c, "get genres", err)
		return
	}
	if len(genres) != len(req.GenreIDs) {
		apierrors.HandleValidationError(c, "one or more genre ids do not exist", "genre_ids")
		return
	}

	movie := &database.Movie{
		Title:       req.Title,
		ReleaseYear: req.ReleaseYear,
		Cast:        req.Cast,
		DirectorID:  req.DirectorID,
	}
	if err := h.repo.CreateMovie(c.Request.Context(), movie, genres); err != nil {
		apierrors.HandleDatabaseError(c, "create movie", err)
		return
	}

	created, err := h.repo.GetMovieByID(c.Request.Context(), movie.ID)
	if err != nil {
		apierrors.HandleDatabaseError(c, "get movie", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   toMovieResponse(created),
	})
}

// UpdateMovie replaces an existing movie's fields and genre links
func (h *MoviesHandler) UpdateMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.HandleValidationError(c, "invalid movie payload: "+err.Error(), "body")
		return
	}

	movie, err := h.repo.GetMovieByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.HandleNotFound(c, "movie", c.Param("id"))
			return
		}
		apierrors.HandleDatabaseError(c, "get movie", err)
		return
	}

	if _, err := h.repo.GetDirectorByID(c.Request.Context(), req.DirectorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.HandleNotFound(c, "director", strconv.FormatUint(uint64(req.DirectorID), 10))
			return
		}
		apierrors.HandleDatabaseError(c, "get director", err)
		return
	}

	genres, err := h.repo.GetGenresByIDs(c.Request.Context(), req.GenreIDs)
	if err != nil {
		apierrors.HandleDatabaseError(c, "get genres", err)
		return
	}
	if len(genres) != len(req.GenreIDs) {
		apierrors.HandleValidationError(c, "one or more genre ids do not exist", "genre_ids")
		return
	}

	movie.Title = req.Title
	movie.ReleaseYear = req.ReleaseYear
	movie.Cast = req.Cast
	movie.DirectorID = req.DirectorID
	if err := h.repo.UpdateMovie(c.Request.Context(), movie, genres); err != nil {
		apierrors.HandleDatabaseError(c, "update movie", err)
		return
	}

	updated, err := h.repo.GetMovieByID(c.Request.Context(), id)
	if err != nil {
		apierrors.HandleDatabaseError(c, "get movie", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   toMovieResponse(updated),
	})
}

// DeleteMovie removes a movie and its associated links and ratings
func (h *MoviesHandler) DeleteMovie(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteMovie(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.HandleNotFound(c, "movie", c.Param("id"))
			return
		}
		apierrors.HandleDatabaseError(c, "delete movie", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"deleted": id},
	})
}

// CreateRating records a new rating for a movie
func (h *MoviesHandler) CreateRating(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.HandleValidationError(c, "invalid rating payload: "+err.Error(), "body")
		return
	}
	if req.Score < 1 || req.Score > 10 {
		apierrors.HandleValidationError(c, "score must be between 1 and 10", "score")
		return
	}

	if _, err := h.repo.GetMovieByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apierrors.HandleNotFound(c, "movie", c.Param("id"))
			return
		}
		apierrors.HandleDatabaseError(c, "get movie", err)
		return
	}

	rating, err := h.repo.CreateRating(c.Request.Context(), id, req.Score)
	if err != nil {
		apierrors.HandleDatabaseError(c, "create rating", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data": gin.H{
			"id":       rating.ID,
			"movie_id": rating.MovieID,
			"score":    rating.Score,
		},
	})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apierrors.HandleValidationError(c, "id must be a positive integer", "id")
		return 0, false
	}
	return uint(id), true
}
