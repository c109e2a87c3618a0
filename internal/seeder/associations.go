package seeder

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/database"
)

// linkGenres re-parses each inserted movie's genre JSON and inserts one
// movie_genres row per distinct (movie, genre) pair. Genre names were
// extracted from the same raw data, so a lookup miss is a consistency
// failure, not a skippable row.
func (s *Seeder) linkGenres(tx *gorm.DB, movieIDs map[int64]uint, genres map[string]uint) (int, error) {
	var candidates []SelectedCandidate
	if err := tx.Order("source_id asc").Find(&candidates).Error; err != nil {
		return 0, NewIngestError(StageInsertingAssociations, "failed to read selected candidates", err)
	}

	var links []database.MovieGenre
	for _, c := range candidates {
		movieID, ok := movieIDs[c.SourceID]
		if !ok {
			// Candidate was dropped by the fact stage.
			continue
		}

		entries, err := parseGenreList(c.GenresJSON)
		if err != nil {
			return 0, NewParseError(StageInsertingAssociations, fmt.Sprintf("malformed genre JSON for movie %d", c.SourceID), err)
		}

		linked := make(map[uint]struct{}, len(entries))
		for _, entry := range entries {
			name := strings.TrimSpace(entry.Name)
			if name == "" {
				continue
			}
			genreID, ok := genres[name]
			if !ok {
				return 0, NewConsistencyError(StageInsertingAssociations,
					fmt.Sprintf("genre %q of movie %d missing from dimension", name, c.SourceID))
			}
			// A duplicate name inside one movie's own genre list collapses
			// to a single association row.
			if _, dup := linked[genreID]; dup {
				continue
			}
			linked[genreID] = struct{}{}
			links = append(links, database.MovieGenre{MovieID: movieID, GenreID: genreID})
		}
	}

	if len(links) > 0 {
		if err := tx.CreateInBatches(links, insertBatchSize).Error; err != nil {
			return 0, NewIngestError(StageInsertingAssociations, "failed to insert movie-genre links", err)
		}
	}
	return len(links), nil
}
