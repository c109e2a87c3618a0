package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinefeed/cinefeed/internal/database"
	apierrors "github.com/cinefeed/cinefeed/internal/errors"
	"github.com/cinefeed/cinefeed/internal/repository"
)

// CatalogHandler serves the genre and director lookup endpoints
type CatalogHandler struct {
	repo *repository.MovieRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(repo *repository.MovieRepository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// GenreResponse is the wire representation of a genre
type GenreResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DirectorResponse is the wire representation of a director
type DirectorResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
}

// ListGenres returns every genre in the catalog
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	genres, err := h.repo.ListGenres(c.Request.Context())
	if err != nil {
		apierrors.HandleDatabaseError(c, "list genres", err)
		return
	}

	responses := make([]GenreResponse, 0, len(genres))
	for _, g := range genres {
		responses = append(responses, GenreResponse{ID: g.ID, Name: g.Name, Description: g.Description})
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   responses,
	})
}

// ListDirectors returns every director in the catalog
func (h *CatalogHandler) ListDirectors(c *gin.Context) {
	directors, err := h.repo.ListDirectors(c.Request.Context())
	if err != nil {
		apierrors.HandleDatabaseError(c, "list directors", err)
		return
	}

	responses := make([]DirectorResponse, 0, len(directors))
	for _, d := range directors {
		responses = append(responses, directorResponse(d))
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   responses,
	})
}

func directorResponse(d database.Director) DirectorResponse {
	return DirectorResponse{ID: d.ID, Name: d.Name, BirthYear: d.BirthYear}
}
