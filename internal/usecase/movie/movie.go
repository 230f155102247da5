package usecase_movie

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviematch/core/internal/model"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMovieNotFound      = errors.New("no such movie")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrInternal           = errors.New("internal error")
)

//go:generate mockery --name=MovieRepository --output=./mocks/movie --filename=movie_repository.go
type MovieRepository interface {
	Upsert(ctx context.Context, movies []model.Movie) error
	ByID(ctx context.Context, id model.MovieID) (model.Movie, error)
	ByIDs(ctx context.Context, ids []model.MovieID) ([]model.Movie, error)
	Update(ctx context.Context, movie model.Movie) error
}

//go:generate mockery --name=CatalogClient --output=./mocks/movie --filename=catalog_client.go
type CatalogClient interface {
	FetchMovies(ctx context.Context, filter model.MovieFilter) ([]model.Movie, error)
	FetchMovieDetail(ctx context.Context, id model.MovieID) (model.Movie, error)
	FetchGenres(ctx context.Context) ([]model.Genre, error)
	FetchCollections(ctx context.Context) ([]model.Collection, error)
}

// CatalogCache keeps genre and collection listings warm between catalog
// refreshes. A miss is (nil, nil), not an error.
//
//go:generate mockery --name=CatalogCache --output=./mocks/movie --filename=catalog_cache.go
type CatalogCache interface {
	Genres() ([]model.Genre, error)
	SetGenres(genres []model.Genre) error
	Collections() ([]model.Collection, error)
	SetCollections(collections []model.Collection) error
}

type Usecase struct {
	repository MovieRepository
	catalog    CatalogClient
	cache      CatalogCache
}

func New(
	repository MovieRepository,
	catalog CatalogClient,
	cache CatalogCache,
) *Usecase {
	return &Usecase{
		repository: repository,
		catalog:    catalog,
		cache:      cache,
	}
}

// ResolveByFilter fetches candidate movies from the catalog and persists
// them as cache entries for later detail lookups.
func (u *Usecase) ResolveByFilter(ctx context.Context, filter model.MovieFilter) ([]model.Movie, error) {
	if filter.IsEmpty() {
		return nil, fmt.Errorf("%w: either genres or collections must be set", ErrInvalidInput)
	}

	movies, err := u.catalog.FetchMovies(ctx, filter)
	if err != nil {
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: empty catalog response", ErrCatalogUnavailable)
	}

	if err := u.repository.Upsert(ctx, movies); err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return movies, nil
}

// ByID serves a movie from the local cache, fetching the full detail
// payload from the catalog only when fields are missing.
func (u *Usecase) ByID(ctx context.Context, id model.MovieID) (model.Movie, error) {
	known := false
	movie, err := u.repository.ByID(ctx, id)
	switch {
	case err == nil:
		if movie.HasDetails() {
			return movie, nil
		}
		known = true
	case errors.Is(err, ErrMovieNotFound):
		// Fall through to the catalog.
	default:
		return model.Movie{}, errors.Join(ErrInternal, err)
	}

	detailed, err := u.catalog.FetchMovieDetail(ctx, id)
	if err != nil {
		return model.Movie{}, errors.Join(ErrCatalogUnavailable, err)
	}

	if known {
		err = u.repository.Update(ctx, detailed)
	} else {
		err = u.repository.Upsert(ctx, []model.Movie{detailed})
	}
	if err != nil {
		return model.Movie{}, errors.Join(ErrInternal, err)
	}
	return detailed, nil
}

func (u *Usecase) ByIDs(ctx context.Context, ids []model.MovieID) ([]model.Movie, error) {
	movies, err := u.repository.ByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return movies, nil
}

// Genres lists catalog genres through the cache.
func (u *Usecase) Genres(ctx context.Context) ([]model.Genre, error) {
	if cached, err := u.cache.Genres(); err == nil && cached != nil {
		return cached, nil
	}

	genres, err := u.catalog.FetchGenres(ctx)
	if err != nil {
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
	_ = u.cache.SetGenres(genres)
	return genres, nil
}

// Collections lists catalog collections through the cache.
func (u *Usecase) Collections(ctx context.Context) ([]model.Collection, error) {
	if cached, err := u.cache.Collections(); err == nil && cached != nil {
		return cached, nil
	}

	collections, err := u.catalog.FetchCollections(ctx)
	if err != nil {
		return nil, errors.Join(ErrCatalogUnavailable, err)
	}
	_ = u.cache.SetCollections(collections)
	return collections, nil
}
