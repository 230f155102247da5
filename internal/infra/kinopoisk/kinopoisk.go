package infra_kinopoisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moviematch/core/internal/config"
	"github.com/moviematch/core/internal/model"
)

var (
	ErrBadStatus      = errors.New("kinopoisk returned non-ok status")
	ErrMalformedReply = errors.New("kinopoisk returned malformed payload")
	ErrFilterRequired = errors.New("either genres or collections must be set")
	ErrMovieNotListed = errors.New("movie not found in catalog")
)

const (
	pageLimit          = 250
	maxMovies          = 1000
	maxPersonsPerField = 4
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(cfg config.Kinopoisk) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchMovies lists movies matching the filter, paginating until the
// catalog runs dry or the cap is reached. Series are excluded; cartoons
// and anime only when the matching genre was requested.
func (c *Client) FetchMovies(ctx context.Context, filter model.MovieFilter) ([]model.Movie, error) {
	if filter.IsEmpty() {
		return nil, ErrFilterRequired
	}

	var all []model.Movie
	for page := 1; len(all) < maxMovies; page++ {
		batch, err := c.fetchMoviesPage(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < pageLimit {
			break
		}
	}
	if len(all) > maxMovies {
		all = all[:maxMovies]
	}
	return all, nil
}

func (c *Client) fetchMoviesPage(ctx context.Context, filter model.MovieFilter, page int) ([]model.Movie, error) {
	params := url.Values{}
	movie, cartoon, anime := "movie", "cartoon", "anime"

	if len(filter.Genres) > 0 {
		for _, genre := range filter.Genres {
			params.Add("genres.name", strings.ToLower(genre))
		}
		if !containsFold(filter.Genres, "аниме") {
			anime = "!anime"
		}
		if !containsFold(filter.Genres, "мультфильм") {
			cartoon = "!cartoon"
		}
	} else {
		for _, collection := range filter.Collections {
			params.Add("lists", collection)
		}
	}

	for _, field := range []string{
		"id", "name", "description", "year", "countries", "poster",
		"alternativeName", "rating", "votes", "movieLength", "genres", "persons",
	} {
		params.Add("selectFields", field)
	}
	params.Add("notNullFields", "id")
	params.Add("notNullFields", "name")
	for _, t := range []string{movie, cartoon, anime, "!animated-series", "!tv-series"} {
		params.Add("type", t)
	}
	params.Set("isSeries", "false")
	params.Set("sortField", "rating.kp")
	params.Set("sortType", "-1")
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageLimit))

	var reply pagedMoviesDTO
	if err := c.get(ctx, c.baseURL+"/movie", params, &reply); err != nil {
		return nil, err
	}
	if reply.Docs == nil {
		return nil, fmt.Errorf("%w: missing docs field", ErrMalformedReply)
	}

	movies := make([]model.Movie, 0, len(reply.Docs))
	for _, doc := range reply.Docs {
		movies = append(movies, doc.toDomain())
	}
	return movies, nil
}

func (c *Client) FetchMovieDetail(ctx context.Context, id model.MovieID) (model.Movie, error) {
	var doc movieDTO
	if err := c.get(ctx, fmt.Sprintf("%s/movie/%d", c.baseURL, int(id)), nil, &doc); err != nil {
		return model.Movie{}, err
	}
	if doc.ID == 0 {
		return model.Movie{}, ErrMovieNotListed
	}
	return doc.toDomain(), nil
}

// FetchGenres lists possible genre names. The catalog exposes this
// endpoint on its v1 surface only.
func (c *Client) FetchGenres(ctx context.Context) ([]model.Genre, error) {
	endpoint := strings.Replace(c.baseURL, "v1.4", "v1", 1) + "/movie/possible-values-by-field"
	params := url.Values{}
	params.Set("field", "genres.name")

	var reply []genreDTO
	if err := c.get(ctx, endpoint, params, &reply); err != nil {
		return nil, err
	}

	genres := make([]model.Genre, 0, len(reply))
	for i, dto := range reply {
		if dto.Name == "" {
			continue
		}
		genres = append(genres, model.Genre{ID: i + 1, Name: dto.Name})
	}
	return genres, nil
}

// FetchCollections lists curated collections, excluding series ones.
func (c *Client) FetchCollections(ctx context.Context) ([]model.Collection, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("category", "!Сериалы")

	var reply pagedCollectionsDTO
	if err := c.get(ctx, c.baseURL+"/list", params, &reply); err != nil {
		return nil, err
	}
	if reply.Docs == nil {
		return nil, fmt.Errorf("%w: missing docs field", ErrMalformedReply)
	}

	collections := make([]model.Collection, 0, len(reply.Docs))
	for i, dto := range reply.Docs {
		collections = append(collections, model.Collection{
			ID:        i + 1,
			Name:      dto.Name,
			Slug:      dto.Slug,
			CoverLink: dto.Cover.URL,
		})
	}
	return collections, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Join(ErrMalformedReply, err)
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
