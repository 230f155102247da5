package infra_postgres_movie

import (
	"github.com/lib/pq"
	"github.com/moviematch/core/internal/model"
)

type MovieDB struct {
	ID              int            `db:"id"`
	Name            string         `db:"name"`
	AlternativeName string         `db:"alternative_name"`
	PosterLink      string         `db:"poster_link"`
	Description     string         `db:"description"`
	Year            int            `db:"year"`
	Countries       pq.StringArray `db:"countries"`
	Genres          pq.StringArray `db:"genres"`
	RatingKP        float64        `db:"rating_kp"`
	RatingIMDB      float64        `db:"rating_imdb"`
	VotesKP         int            `db:"votes_kp"`
	VotesIMDB       int            `db:"votes_imdb"`
	MovieLength     int            `db:"movie_length"`
	Actors          pq.StringArray `db:"actors"`
	Directors       pq.StringArray `db:"directors"`
}

func (m *MovieDB) ToDomain() model.Movie {
	return model.Movie{
		ID:              model.MovieID(m.ID),
		Name:            m.Name,
		AlternativeName: m.AlternativeName,
		PosterLink:      m.PosterLink,
		Description:     m.Description,
		Year:            m.Year,
		Countries:       []string(m.Countries),
		Genres:          []string(m.Genres),
		RatingKP:        m.RatingKP,
		RatingIMDB:      m.RatingIMDB,
		VotesKP:         m.VotesKP,
		VotesIMDB:       m.VotesIMDB,
		MovieLength:     m.MovieLength,
		Actors:          []string(m.Actors),
		Directors:       []string(m.Directors),
	}
}

func FromDomain(movie model.Movie) MovieDB {
	return MovieDB{
		ID:              int(movie.ID),
		Name:            movie.Name,
		AlternativeName: movie.AlternativeName,
		PosterLink:      movie.PosterLink,
		Description:     movie.Description,
		Year:            movie.Year,
		Countries:       pq.StringArray(movie.Countries),
		Genres:          pq.StringArray(movie.Genres),
		RatingKP:        movie.RatingKP,
		RatingIMDB:      movie.RatingIMDB,
		VotesKP:         movie.VotesKP,
		VotesIMDB:       movie.VotesIMDB,
		MovieLength:     movie.MovieLength,
		Actors:          pq.StringArray(movie.Actors),
		Directors:       pq.StringArray(movie.Directors),
	}
}
