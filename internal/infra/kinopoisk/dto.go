package infra_kinopoisk

import "github.com/moviematch/core/internal/model"

type pagedMoviesDTO struct {
	Docs []movieDTO `json:"docs"`
}

type movieDTO struct {
	ID              int         `json:"id"`
	Name            string      `json:"name"`
	AlternativeName string      `json:"alternativeName"`
	Description     string      `json:"description"`
	Year            int         `json:"year"`
	MovieLength     int         `json:"movieLength"`
	Poster          imageDTO    `json:"poster"`
	Rating          ratingDTO   `json:"rating"`
	Votes           votesDTO    `json:"votes"`
	Countries       []namedDTO  `json:"countries"`
	Genres          []namedDTO  `json:"genres"`
	Persons         []personDTO `json:"persons"`
}

type imageDTO struct {
	URL        string `json:"url"`
	PreviewURL string `json:"previewUrl"`
}

type ratingDTO struct {
	KP   float64 `json:"kp"`
	IMDB float64 `json:"imdb"`
}

type votesDTO struct {
	KP   int `json:"kp"`
	IMDB int `json:"imdb"`
}

type namedDTO struct {
	Name string `json:"name"`
}

type personDTO struct {
	Name         string `json:"name"`
	EnName       string `json:"enName"`
	EnProfession string `json:"enProfession"`
}

type genreDTO struct {
	Name string `json:"name"`
}

type pagedCollectionsDTO struct {
	Docs []collectionDTO `json:"docs"`
}

type collectionDTO struct {
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	Cover imageDTO `json:"cover"`
}

func (m movieDTO) toDomain() model.Movie {
	actors, directors := extractPersons(m.Persons)
	return model.Movie{
		ID:              model.MovieID(m.ID),
		Name:            m.Name,
		AlternativeName: m.AlternativeName,
		PosterLink:      m.Poster.URL,
		Description:     m.Description,
		Year:            m.Year,
		Countries:       names(m.Countries),
		Genres:          names(m.Genres),
		RatingKP:        m.Rating.KP,
		RatingIMDB:      m.Rating.IMDB,
		VotesKP:         m.Votes.KP,
		VotesIMDB:       m.Votes.IMDB,
		MovieLength:     m.MovieLength,
		Actors:          actors,
		Directors:       directors,
	}
}

func names(dtos []namedDTO) []string {
	out := make([]string, 0, len(dtos))
	for _, dto := range dtos {
		if dto.Name != "" {
			out = append(out, dto.Name)
		}
	}
	return out
}

// extractPersons picks the leading actors and directors from the persons
// payload, falling back to the original name when no localized one is set.
func extractPersons(persons []personDTO) (actors, directors []string) {
	for _, p := range persons {
		name := p.Name
		if name == "" {
			name = p.EnName
		}
		if name == "" {
			continue
		}
		switch p.EnProfession {
		case "actor":
			if len(actors) < maxPersonsPerField {
				actors = append(actors, name)
			}
		case "director":
			if len(directors) < maxPersonsPerField {
				directors = append(directors, name)
			}
		}
	}
	return actors, directors
}
