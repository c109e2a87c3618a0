package seeder

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cinefeed/cinefeed/internal/database"
)

// synthesizeRatings inserts a uniformly random number of ratings with
// uniformly random scores for every inserted movie. This is the only
// stage without reproducibility guarantees: unless the run was given a
// fixed random seed, two runs over identical inputs produce different
// rating rows.
func (s *Seeder) synthesizeRatings(tx *gorm.DB, movieIDs []uint) (int, error) {
	if s.opts.MinRatings < 1 || s.opts.MaxRatings < s.opts.MinRatings {
		return 0, NewRandomizationError(
			fmt.Sprintf("invalid rating count bounds [%d,%d]", s.opts.MinRatings, s.opts.MaxRatings))
	}
	if s.opts.MinScore < 1 || s.opts.MaxScore < s.opts.MinScore {
		return 0, NewRandomizationError(
			fmt.Sprintf("invalid rating score bounds [%d,%d]", s.opts.MinScore, s.opts.MaxScore))
	}

	var ratings []database.MovieRating
	for _, movieID := range movieIDs {
		count := s.opts.MinRatings + s.rng.Intn(s.opts.MaxRatings-s.opts.MinRatings+1)
		for i := 0; i < count; i++ {
			score := s.opts.MinScore + s.rng.Intn(s.opts.MaxScore-s.opts.MinScore+1)
			ratings = append(ratings, database.MovieRating{MovieID: movieID, Score: score})
		}
	}

	if len(ratings) > 0 {
		if err := tx.CreateInBatches(ratings, insertBatchSize).Error; err != nil {
			return 0, NewIngestError(StageSynthesizingRatings, "failed to insert ratings", err)
		}
	}
	return len(ratings), nil
}
