// Package repository provides the data access layer over the catalog
// schema. It reads and writes the five final relations only; staging
// tables belong to the seeder and are never touched here.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/database"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// MovieFilter narrows a movie listing. Zero values mean "no filter".
type MovieFilter struct {
	Page        int
	PageSize    int
	Title       string
	ReleaseYear int
	Genre       string
}

// MovieRepository handles all database operations for the catalog
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ListMovies returns one page of movies plus the total match count.
// Filters combine with AND; title and genre match partially and
// case-insensitively.
func (r *MovieRepository) ListMovies(ctx context.Context, filter MovieFilter) ([]*database.Movie, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	query := r.db.WithContext(ctx).Model(&database.Movie{}).
		Preload("Director").
		Preload("Genres").
		Preload("Ratings").
		Order("movies.id")

	if filter.Title != "" {
		query = query.Where("LOWER(movies.title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.ReleaseYear != 0 {
		query = query.Where("movies.release_year = ?", filter.ReleaseYear)
	}
	if filter.Genre != "" {
		query = query.Where(
			"movies.id IN (SELECT mg.movie_id FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id WHERE LOWER(g.name) LIKE ?)",
			"%"+strings.ToLower(filter.Genre)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	var movies []*database.Movie
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&movies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}

	return movies, total, nil
}

// GetMovieByID retrieves a movie with its director, genres and ratings
func (r *MovieRepository) GetMovieByID(ctx context.Context, id uint) (*database.Movie, error) {
	var movie database.Movie
	err := r.db.WithContext(ctx).
		Preload("Director").
		Preload("Genres").
		Preload("Ratings").
		First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return &movie, nil
}

// GetDirectorByID retrieves a director
func (r *MovieRepository) GetDirectorByID(ctx context.Context, id uint) (*database.Director, error) {
	var director database.Director
	if err := r.db.WithContext(ctx).First(&director, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get director: %w", err)
	}
	return &director, nil
}

// GetGenresByIDs returns the genres matching the given ids; missing ids
// are simply absent from the result
func (r *MovieRepository) GetGenresByIDs(ctx context.Context, ids []uint) ([]database.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var genres []database.Genre
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to get genres: %w", err)
	}
	return genres, nil
}

// ListGenres returns every genre ordered by id
func (r *MovieRepository) ListGenres(ctx context.Context) ([]database.Genre, error) {
	var genres []database.Genre
	if err := r.db.WithContext(ctx).Order("id").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// ListDirectors returns every director ordered by id
func (r *MovieRepository) ListDirectors(ctx context.Context) ([]database.Director, error) {
	var directors []database.Director
	if err := r.db.WithContext(ctx).Order("id").Find(&directors).Error; err != nil {
		return nil, fmt.Errorf("failed to list directors: %w", err)
	}
	return directors, nil
}

// CreateMovie persists a new movie and its genre links
func (r *MovieRepository) CreateMovie(ctx context.Context, movie *database.Movie, genres []database.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movie).Error; err != nil {
			return fmt.Errorf("failed to create movie: %w", err)
		}
		if len(genres) > 0 {
			if err := tx.Model(movie).Association("Genres").Replace(genres); err != nil {
				return fmt.Errorf("failed to link genres: %w", err)
			}
		}
		return nil
	})
}

// UpdateMovie persists changes to an existing movie and replaces its
// genre links
func (r *MovieRepository) UpdateMovie(ctx context.Context, movie *database.Movie, genres []database.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(movie).Error; err != nil {
			return fmt.Errorf("failed to update movie: %w", err)
		}
		if err := tx.Model(movie).Association("Genres").Replace(genres); err != nil {
			return fmt.Errorf("failed to relink genres: %w", err)
		}
		return nil
	})
}

// DeleteMovie removes a movie together with its genre links and ratings
func (r *MovieRepository) DeleteMovie(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&database.Movie{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete movie: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("movie_id = ?", id).Delete(&database.MovieGenre{}).Error; err != nil {
			return fmt.Errorf("failed to delete genre links: %w", err)
		}
		if err := tx.Where("movie_id = ?", id).Delete(&database.MovieRating{}).Error; err != nil {
			return fmt.Errorf("failed to delete ratings: %w", err)
		}
		return nil
	})
}

// CreateRating persists a new rating for the given movie
func (r *MovieRepository) CreateRating(ctx context.Context, movieID uint, score int) (*database.MovieRating, error) {
	rating := &database.MovieRating{MovieID: movieID, Score: score}
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rating, nil
}

// GetDB returns the underlying database connection for query building
func (r *MovieRepository) GetDB() *gorm.DB {
	return r.db
}
