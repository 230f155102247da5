package model

// MovieID is the stable identifier assigned by the external catalog.
type MovieID int

// Movie is a lazily populated cache entry for catalog data.
// Once every field is filled it is never re-fetched.
type Movie struct {
	ID              MovieID
	Name            string
	AlternativeName string
	PosterLink      string
	Description     string
	Year            int
	Countries       []string
	Genres          []string
	RatingKP        float64
	RatingIMDB      float64
	VotesKP         int
	VotesIMDB       int
	MovieLength     int
	Actors          []string
	Directors       []string
}

// HasDetails reports whether the entry carries the full detail payload
// or only the short form returned by catalog list queries.
func (m *Movie) HasDetails() bool {
	return m.Description != "" && m.Year != 0 && len(m.Actors) > 0
}

// MovieFilter narrows catalog lookups; either genres or collections
// must be set, not both.
type MovieFilter struct {
	Genres      []string
	Collections []string
}

func (f MovieFilter) IsEmpty() bool {
	return len(f.Genres) == 0 && len(f.Collections) == 0
}

type Genre struct {
	ID   int
	Name string
}

type Collection struct {
	ID        int
	Name      string
	Slug      string
	CoverLink string
}
