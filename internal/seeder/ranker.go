package seeder

import (
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// candidate is a joined movie+credit row considered for selection
type candidate struct {
	movie        RawMovie
	credit       RawCredit
	directorName string
}

// selectCandidates joins the raw staging relations, keeps rows with a
// resolvable director, ranks them and materializes the top-N window into
// the selected_candidates staging table.
//
// Ranking order: vote_count desc (nulls last), popularity desc (nulls
// last), vote_average desc (nulls last), then source id asc as the final
// deterministic tie-break.
func (s *Seeder) selectCandidates(tx *gorm.DB) ([]SelectedCandidate, error) {
	var movies []RawMovie
	if err := tx.Find(&movies).Error; err != nil {
		return nil, NewIngestError(StageSelecting, "failed to read raw movies", err)
	}

	// First credit row in file order wins when a movie id repeats; this
	// keeps the candidate set keyed by source id.
	var credits []RawCredit
	if err := tx.Order("id asc").Find(&credits).Error; err != nil {
		return nil, NewIngestError(StageSelecting, "failed to read raw credits", err)
	}
	creditsByMovie := make(map[int64]RawCredit, len(credits))
	for _, credit := range credits {
		if _, ok := creditsByMovie[credit.SourceMovieID]; !ok {
			creditsByMovie[credit.SourceMovieID] = credit
		}
	}

	candidates := make([]candidate, 0, len(movies))
	for _, movie := range movies {
		credit, ok := creditsByMovie[movie.SourceID]
		if !ok {
			// No credit record means no director; the row cannot qualify.
			continue
		}

		crew, err := parseCrewList(credit.CrewJSON)
		if err != nil {
			return nil, NewParseError(StageSelecting, fmt.Sprintf("malformed crew JSON for movie %d", movie.SourceID), err)
		}
		name, ok := directorName(crew)
		if !ok {
			continue
		}

		candidates = append(candidates, candidate{movie: movie, credit: credit, directorName: name})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return rankLess(&candidates[i], &candidates[j])
	})

	if len(candidates) > s.opts.TopN {
		candidates = candidates[:s.opts.TopN]
	}

	selected := make([]SelectedCandidate, 0, len(candidates))
	for _, c := range candidates {
		selected = append(selected, SelectedCandidate{
			SourceID:     c.movie.SourceID,
			Title:        c.movie.Title,
			GenresJSON:   c.movie.GenresJSON,
			ReleaseDate:  c.movie.ReleaseDate,
			CastJSON:     c.credit.CastJSON,
			CrewJSON:     c.credit.CrewJSON,
			DirectorName: c.directorName,
		})
	}

	if err := tx.Migrator().DropTable(&SelectedCandidate{}); err != nil {
		return nil, NewIngestError(StageSelecting, "failed to drop candidate staging table", err)
	}
	if err := tx.AutoMigrate(&SelectedCandidate{}); err != nil {
		return nil, NewIngestError(StageSelecting, "failed to create candidate staging table", err)
	}
	if len(selected) > 0 {
		if err := tx.CreateInBatches(selected, insertBatchSize).Error; err != nil {
			return nil, NewIngestError(StageSelecting, "failed to stage selected candidates", err)
		}
	}

	return selected, nil
}

// rankLess reports whether a ranks strictly before b
func rankLess(a, b *candidate) bool {
	if c := compareInt64Desc(a.movie.VoteCount, b.movie.VoteCount); c != 0 {
		return c < 0
	}
	if c := compareFloatDesc(a.movie.Popularity, b.movie.Popularity); c != 0 {
		return c < 0
	}
	if c := compareFloatDesc(a.movie.VoteAverage, b.movie.VoteAverage); c != 0 {
		return c < 0
	}
	return a.movie.SourceID < b.movie.SourceID
}

// compareFloatDesc orders larger values first and nulls last
func compareFloatDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}

// compareInt64Desc orders larger values first and nulls last
func compareInt64Desc(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}
