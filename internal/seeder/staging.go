package seeder

// Staging relations. They are owned by the seeder, rebuilt on every run
// and never exposed to the API layer. All columns except the natural key
// are kept verbatim from the source files; the JSON-array cells stay
// opaque text until a later stage parses them.

// RawMovie holds one source movie row
type RawMovie struct {
	SourceID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Title       string `gorm:"type:text"`
	GenresJSON  string `gorm:"type:text"`
	ReleaseDate string
	VoteAverage *float64
	VoteCount   *int64
	Popularity  *float64
}

func (RawMovie) TableName() string {
	return "raw_movies"
}

// RawCredit holds one source credits row. SourceMovieID is not unique in
// the source data, so rows get their own surrogate key.
type RawCredit struct {
	ID            int64  `gorm:"primaryKey"`
	SourceMovieID int64  `gorm:"index"`
	Title         string `gorm:"type:text"`
	CastJSON      string `gorm:"type:text"`
	CrewJSON      string `gorm:"type:text"`
}

func (RawCredit) TableName() string {
	return "raw_credits"
}

// SelectedCandidate is a joined movie+credit row that survived director
// filtering and ranked inside the top-N window
type SelectedCandidate struct {
	SourceID     int64  `gorm:"primaryKey;autoIncrement:false"`
	Title        string `gorm:"type:text"`
	GenresJSON   string `gorm:"type:text"`
	ReleaseDate  string
	CastJSON     string `gorm:"type:text"`
	CrewJSON     string `gorm:"type:text"`
	DirectorName string
}

func (SelectedCandidate) TableName() string {
	return "selected_candidates"
}
