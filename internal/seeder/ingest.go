package seeder

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Expected column sets. Extra columns in the source files are ignored;
// a missing required column is a schema mismatch.
var (
	movieColumns  = []string{"id", "title", "genres", "release_date", "popularity", "vote_average", "vote_count"}
	creditColumns = []string{"movie_id", "title", "cast", "crew"}
)

const insertBatchSize = 500

// ingest replaces the raw staging tables and loads both source files
// verbatim. Returns the number of staged movie and credit rows.
func (s *Seeder) ingest(tx *gorm.DB, moviesPath, creditsPath string) (int, int, error) {
	if err := tx.Migrator().DropTable(&RawMovie{}, &RawCredit{}); err != nil {
		return 0, 0, NewIngestError(StageStaging, "failed to drop raw staging tables", err)
	}
	if err := tx.AutoMigrate(&RawMovie{}, &RawCredit{}); err != nil {
		return 0, 0, NewIngestError(StageStaging, "failed to create raw staging tables", err)
	}

	movies, err := s.loadRawMovies(moviesPath)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.CreateInBatches(movies, insertBatchSize).Error; err != nil {
		return 0, 0, NewIngestError(StageStaging, "failed to stage raw movies", err)
	}

	credits, err := s.loadRawCredits(creditsPath)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.CreateInBatches(credits, insertBatchSize).Error; err != nil {
		return 0, 0, NewIngestError(StageStaging, "failed to stage raw credits", err)
	}

	return len(movies), len(credits), nil
}

func (s *Seeder) loadRawMovies(path string) ([]RawMovie, error) {
	reader, closeFile, err := openCSV(path)
	if err != nil {
		return nil, NewIngestError(StageStaging, fmt.Sprintf("cannot open movie dataset %s", path), err)
	}
	defer closeFile()

	cols, err := requireColumns(reader, movieColumns, path)
	if err != nil {
		return nil, err
	}

	var (
		movies []RawMovie
		seen   = make(map[int64]struct{})
		line   = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("malformed row at %s:%d", path, line), err)
		}

		sourceID, err := strconv.ParseInt(record[cols["id"]], 10, 64)
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("invalid movie id at %s:%d", path, line), err)
		}
		if _, dup := seen[sourceID]; dup {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("duplicate movie id %d at %s:%d", sourceID, path, line), nil)
		}
		seen[sourceID] = struct{}{}

		voteAverage, err := nullableFloat(record[cols["vote_average"]])
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("invalid vote_average at %s:%d", path, line), err)
		}
		voteCount, err := nullableInt(record[cols["vote_count"]])
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("invalid vote_count at %s:%d", path, line), err)
		}
		popularity, err := nullableFloat(record[cols["popularity"]])
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("invalid popularity at %s:%d", path, line), err)
		}

		movies = append(movies, RawMovie{
			SourceID:    sourceID,
			Title:       record[cols["title"]],
			GenresJSON:  record[cols["genres"]],
			ReleaseDate: record[cols["release_date"]],
			VoteAverage: voteAverage,
			VoteCount:   voteCount,
			Popularity:  popularity,
		})
	}

	return movies, nil
}

func (s *Seeder) loadRawCredits(path string) ([]RawCredit, error) {
	reader, closeFile, err := openCSV(path)
	if err != nil {
		return nil, NewIngestError(StageStaging, fmt.Sprintf("cannot open credits dataset %s", path), err)
	}
	defer closeFile()

	cols, err := requireColumns(reader, creditColumns, path)
	if err != nil {
		return nil, err
	}

	var (
		credits []RawCredit
		line    = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("malformed row at %s:%d", path, line), err)
		}

		sourceMovieID, err := strconv.ParseInt(record[cols["movie_id"]], 10, 64)
		if err != nil {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("invalid movie_id at %s:%d", path, line), err)
		}

		credits = append(credits, RawCredit{
			SourceMovieID: sourceMovieID,
			Title:         record[cols["title"]],
			CastJSON:      record[cols["cast"]],
			CrewJSON:      record[cols["crew"]],
		})
	}

	return credits, nil
}

// openCSV opens a UTF-8, comma-delimited file, stripping a UTF-8 BOM
// when present
func openCSV(path string) (*csv.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	br := bufio.NewReader(f)
	if b, err := br.Peek(3); err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	return csv.NewReader(br), f.Close, nil
}

// requireColumns reads the header row and maps the required column names
// to their indexes
func requireColumns(reader *csv.Reader, required []string, path string) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("missing header row in %s", path), nil)
		}
		return nil, NewIngestError(StageStaging, fmt.Sprintf("cannot read header of %s", path), err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	cols := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := index[name]
		if !ok {
			return nil, NewIngestError(StageStaging, fmt.Sprintf("missing column %q in %s", name, path), nil)
		}
		cols[name] = i
	}
	return cols, nil
}

func nullableFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func nullableInt(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
