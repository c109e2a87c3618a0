// Package server provides HTTP server functionality for the cinefeed
// catalog API. The API serves the five relations produced by the
// seeding pipeline; it never reads staging data.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/config"
	"github.com/cinefeed/cinefeed/internal/middleware"
	"github.com/cinefeed/cinefeed/internal/repository"
	"github.com/cinefeed/cinefeed/internal/server/handlers"
)

// SetupRouter configures and returns the main router
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())

	if cfg.Server.EnableCORS {
		r.Use(corsMiddleware())
	}

	repo := repository.NewMovieRepository(db)
	moviesHandler := handlers.NewMoviesHandler(repo)
	catalogHandler := handlers.NewCatalogHandler(repo)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		movies := api.Group("/movies")
		{
			movies.GET("", moviesHandler.ListMovies)
			movies.POST("", moviesHandler.CreateMovie)
			movies.GET("/:id", moviesHandler.GetMovie)
			movies.PUT("/:id", moviesHandler.UpdateMovie)
			movies.DELETE("/:id", moviesHandler.DeleteMovie)
			movies.POST("/:id/ratings", moviesHandler.CreateRating)
		}

		api.GET("/genres", catalogHandler.ListGenres)
		api.GET("/directors", catalogHandler.ListDirectors)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
