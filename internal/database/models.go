package database

// Catalog schema. These five relations are the output of the seeding
// pipeline and the only tables the API layer reads or writes. Surrogate
// ids are assigned by the seeder and restart from 1 on every run.

// Genre represents a movie genre (e.g. Drama, Crime, Sci-Fi)
type Genre struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description,omitempty"`
}

// Director represents a movie director. Two real people sharing one name
// collapse into a single row; name is the only identity the source data
// carries.
type Director struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	BirthYear   *int   `json:"birth_year,omitempty"`
	Description string `json:"description,omitempty"`
}

// Movie represents a movie entity
type Movie struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null;index" json:"title"`
	DirectorID  uint   `gorm:"not null;index" json:"director_id"`
	ReleaseYear int    `json:"release_year"`
	Cast        string `json:"cast,omitempty"` // condensed summary, at most three names

	Director *Director     `gorm:"foreignKey:DirectorID" json:"director,omitempty"`
	Genres   []Genre       `gorm:"many2many:movie_genres" json:"genres,omitempty"`
	Ratings  []MovieRating `gorm:"constraint:OnDelete:CASCADE" json:"ratings,omitempty"`
}

// MovieGenre is the movies<->genres association row. gorm manages the
// join table through Movie.Genres; this model exists so the seeder and
// verifier can address it directly.
type MovieGenre struct {
	MovieID uint `gorm:"primaryKey" json:"movie_id"`
	GenreID uint `gorm:"primaryKey" json:"genre_id"`
}

// TableName maps MovieGenre onto the many2many join table
func (MovieGenre) TableName() string {
	return "movie_genres"
}

// MovieRating represents a rating for a movie (score 1-10)
type MovieRating struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	MovieID uint `gorm:"not null;index" json:"movie_id"`
	Score   int  `gorm:"not null;check:score >= 1 AND score <= 10" json:"score"`
}
