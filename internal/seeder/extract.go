package seeder

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/database"
)

// Dimension extraction derives the distinct-value universe for Genre and
// Director from the full raw staging data, not just the selected
// candidates. Names are trimmed and inserted in sorted order so identity
// assignment is stable across runs.

// extractGenres parses the genre JSON of every raw movie row and inserts
// one Genre per distinct name. Returns the name->id lookup used by the
// association stage.
func (s *Seeder) extractGenres(tx *gorm.DB) (map[string]uint, error) {
	var rows []RawMovie
	if err := tx.Select("source_id", "genres_json").Find(&rows).Error; err != nil {
		return nil, NewIngestError(StageExtracting, "failed to read raw movies", err)
	}

	names := make(map[string]struct{})
	for _, row := range rows {
		entries, err := parseGenreList(row.GenresJSON)
		if err != nil {
			return nil, NewParseError(StageExtracting, fmt.Sprintf("malformed genre JSON for movie %d", row.SourceID), err)
		}
		for _, entry := range entries {
			name := strings.TrimSpace(entry.Name)
			if name == "" {
				continue
			}
			names[name] = struct{}{}
		}
	}

	genres := make([]database.Genre, 0, len(names))
	for _, name := range sortedKeys(names) {
		genres = append(genres, database.Genre{Name: name})
	}
	if len(genres) > 0 {
		if err := tx.CreateInBatches(genres, insertBatchSize).Error; err != nil {
			return nil, NewIngestError(StageExtracting, "failed to insert genres", err)
		}
	}

	lookup := make(map[string]uint, len(genres))
	for _, genre := range genres {
		lookup[genre.Name] = genre.ID
	}
	return lookup, nil
}

// extractDirectors parses the crew JSON of every raw credit row and
// inserts one Director per distinct "Director"-role name. Returns the
// name->id lookup used by the fact stage.
func (s *Seeder) extractDirectors(tx *gorm.DB) (map[string]uint, error) {
	var rows []RawCredit
	if err := tx.Select("source_movie_id", "crew_json").Find(&rows).Error; err != nil {
		return nil, NewIngestError(StageExtracting, "failed to read raw credits", err)
	}

	names := make(map[string]struct{})
	for _, row := range rows {
		crew, err := parseCrewList(row.CrewJSON)
		if err != nil {
			return nil, NewParseError(StageExtracting, fmt.Sprintf("malformed crew JSON for movie %d", row.SourceMovieID), err)
		}
		for _, member := range crew {
			if member.Job != "Director" {
				continue
			}
			name := strings.TrimSpace(member.Name)
			if name == "" {
				continue
			}
			names[name] = struct{}{}
		}
	}

	directors := make([]database.Director, 0, len(names))
	for _, name := range sortedKeys(names) {
		directors = append(directors, database.Director{Name: name})
	}
	if len(directors) > 0 {
		if err := tx.CreateInBatches(directors, insertBatchSize).Error; err != nil {
			return nil, NewIngestError(StageExtracting, "failed to insert directors", err)
		}
	}

	lookup := make(map[string]uint, len(directors))
	for _, director := range directors {
		lookup[director.Name] = director.ID
	}
	return lookup, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
