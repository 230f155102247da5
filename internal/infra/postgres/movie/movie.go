package infra_postgres_movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/moviematch/core/internal/model"
	usecase_movie "github.com/moviematch/core/internal/usecase/movie"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

const movieColumns = `
	id, name, alternative_name, poster_link, description, year,
	countries, genres, rating_kp, rating_imdb, votes_kp, votes_imdb,
	movie_length, actors, directors
`

// Upsert inserts catalog entries, keeping previously fetched detail
// fields when the incoming payload carries only the short list form.
func (d *Driver) Upsert(ctx context.Context, movies []model.Movie) error {
	query := `
		INSERT INTO movies (` + movieColumns + `)
		VALUES (:id, :name, :alternative_name, :poster_link, :description, :year,
			:countries, :genres, :rating_kp, :rating_imdb, :votes_kp, :votes_imdb,
			:movie_length, :actors, :directors)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			alternative_name = COALESCE(NULLIF(EXCLUDED.alternative_name, ''), movies.alternative_name),
			poster_link = COALESCE(NULLIF(EXCLUDED.poster_link, ''), movies.poster_link),
			description = COALESCE(NULLIF(EXCLUDED.description, ''), movies.description),
			year = CASE WHEN EXCLUDED.year <> 0 THEN EXCLUDED.year ELSE movies.year END,
			countries = CASE WHEN cardinality(EXCLUDED.countries) > 0 THEN EXCLUDED.countries ELSE movies.countries END,
			genres = CASE WHEN cardinality(EXCLUDED.genres) > 0 THEN EXCLUDED.genres ELSE movies.genres END,
			rating_kp = CASE WHEN EXCLUDED.rating_kp <> 0 THEN EXCLUDED.rating_kp ELSE movies.rating_kp END,
			rating_imdb = CASE WHEN EXCLUDED.rating_imdb <> 0 THEN EXCLUDED.rating_imdb ELSE movies.rating_imdb END,
			votes_kp = CASE WHEN EXCLUDED.votes_kp <> 0 THEN EXCLUDED.votes_kp ELSE movies.votes_kp END,
			votes_imdb = CASE WHEN EXCLUDED.votes_imdb <> 0 THEN EXCLUDED.votes_imdb ELSE movies.votes_imdb END,
			movie_length = CASE WHEN EXCLUDED.movie_length <> 0 THEN EXCLUDED.movie_length ELSE movies.movie_length END,
			actors = CASE WHEN cardinality(EXCLUDED.actors) > 0 THEN EXCLUDED.actors ELSE movies.actors END,
			directors = CASE WHEN cardinality(EXCLUDED.directors) > 0 THEN EXCLUDED.directors ELSE movies.directors END
	`

	for _, movie := range movies {
		if _, err := d.db.NamedExecContext(ctx, query, FromDomain(movie)); err != nil {
			return fmt.Errorf("failed to upsert movie %d: %w", movie.ID, err)
		}
	}
	return nil
}

func (d *Driver) ByID(ctx context.Context, id model.MovieID) (model.Movie, error) {
	var dto MovieDB

	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	err := d.db.GetContext(ctx, &dto, query, int(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movie{}, usecase_movie.ErrMovieNotFound
		}
		return model.Movie{}, err
	}
	return dto.ToDomain(), nil
}

func (d *Driver) ByIDs(ctx context.Context, ids []model.MovieID) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}

	raw := make([]int, len(ids))
	for i, id := range ids {
		raw[i] = int(id)
	}

	query, args, err := sqlx.In(`SELECT `+movieColumns+` FROM movies WHERE id IN (?)`, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	query = d.db.Rebind(query)

	var dtos []MovieDB
	if err := d.db.SelectContext(ctx, &dtos, query, args...); err != nil {
		return nil, err
	}

	movies := make([]model.Movie, len(dtos))
	for i, dto := range dtos {
		movies[i] = dto.ToDomain()
	}
	return movies, nil
}

func (d *Driver) Update(ctx context.Context, movie model.Movie) error {
	query := `
		UPDATE movies SET
			name = :name,
			alternative_name = :alternative_name,
			poster_link = :poster_link,
			description = :description,
			year = :year,
			countries = :countries,
			genres = :genres,
			rating_kp = :rating_kp,
			rating_imdb = :rating_imdb,
			votes_kp = :votes_kp,
			votes_imdb = :votes_imdb,
			movie_length = :movie_length,
			actors = :actors,
			directors = :directors
		WHERE id = :id
	`
	result, err := d.db.NamedExecContext(ctx, query, FromDomain(movie))
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_movie.ErrMovieNotFound
	}
	return nil
}
