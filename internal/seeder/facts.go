package seeder

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/database"
)

// insertMovies turns each selected candidate into one Movie row, in
// ascending source-id order so insertion order (and therefore surrogate
// ids) is reproducible. Returns the source id -> movie id mapping for
// the association stage.
func (s *Seeder) insertMovies(tx *gorm.DB, directors map[string]uint) (map[int64]uint, error) {
	var candidates []SelectedCandidate
	if err := tx.Order("source_id asc").Find(&candidates).Error; err != nil {
		return nil, NewIngestError(StageInsertingFacts, "failed to read selected candidates", err)
	}

	movies := make([]database.Movie, 0, len(candidates))
	sourceIDs := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		directorID, ok := directors[c.DirectorName]
		if !ok {
			// Selection guarantees the director dimension carries this
			// name; tolerate a miss by dropping the candidate instead of
			// inserting a dangling reference.
			s.log.Warn("skipping candidate with unresolvable director",
				"source_id", c.SourceID, "director", c.DirectorName)
			continue
		}

		cast, err := parseCastList(c.CastJSON)
		if err != nil {
			return nil, NewParseError(StageInsertingFacts, fmt.Sprintf("malformed cast JSON for movie %d", c.SourceID), err)
		}

		movies = append(movies, database.Movie{
			Title:       c.Title,
			DirectorID:  directorID,
			ReleaseYear: releaseYear(c.ReleaseDate, s.opts.DefaultYear),
			Cast:        castSummary(cast, s.opts.CastSummaryLen),
		})
		sourceIDs = append(sourceIDs, c.SourceID)
	}

	if len(movies) > 0 {
		if err := tx.CreateInBatches(movies, insertBatchSize).Error; err != nil {
			return nil, NewIngestError(StageInsertingFacts, "failed to insert movies", err)
		}
	}

	movieIDs := make(map[int64]uint, len(movies))
	for i, movie := range movies {
		movieIDs[sourceIDs[i]] = movie.ID
	}
	return movieIDs, nil
}
