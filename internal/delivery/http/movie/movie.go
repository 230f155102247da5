package http_movie

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/moviematch/core/internal/delivery/http/common"
	"github.com/moviematch/core/internal/model"
	usecase_movie "github.com/moviematch/core/internal/usecase/movie"
)

type MovieResponse struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	AlternativeName string   `json:"alternative_name,omitempty"`
	PosterLink      string   `json:"poster,omitempty"`
	Description     string   `json:"description,omitempty"`
	Year            int      `json:"year,omitempty"`
	Countries       []string `json:"countries,omitempty"`
	Genres          []string `json:"genres,omitempty"`
	RatingKP        float64  `json:"rating_kp,omitempty"`
	RatingIMDB      float64  `json:"rating_imdb,omitempty"`
	VotesKP         int      `json:"votes_kp,omitempty"`
	VotesIMDB       int      `json:"votes_imdb,omitempty"`
	MovieLength     int      `json:"movie_length,omitempty"`
	Actors          []string `json:"actors,omitempty"`
	Directors       []string `json:"directors,omitempty"`
}

type GenreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CollectionResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Cover string `json:"cover,omitempty"`
}

func ConvertFromMovie(movie model.Movie) MovieResponse {
	return MovieResponse{
		ID:              int(movie.ID),
		Name:            movie.Name,
		AlternativeName: movie.AlternativeName,
		PosterLink:      movie.PosterLink,
		Description:     movie.Description,
		Year:            movie.Year,
		Countries:       movie.Countries,
		Genres:          movie.Genres,
		RatingKP:        movie.RatingKP,
		RatingIMDB:      movie.RatingIMDB,
		VotesKP:         movie.VotesKP,
		VotesIMDB:       movie.VotesIMDB,
		MovieLength:     movie.MovieLength,
		Actors:          movie.Actors,
		Directors:       movie.Directors,
	}
}

func ConvertFromMovieList(movies []model.Movie) []MovieResponse {
	out := make([]MovieResponse, len(movies))
	for i, movie := range movies {
		out[i] = ConvertFromMovie(movie)
	}
	return out
}

type Controller struct {
	uc *usecase_movie.Usecase

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_movie.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/genres", c.genres)
	router.GET("/collections", c.collections)
	router.GET("/movies/:movie_id", c.movie)
}

func (c *Controller) genres(ctx *gin.Context) {
	genres, err := c.uc.Genres(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "failed to list genres", err)
		return
	}

	responses := make([]GenreResponse, len(genres))
	for i, genre := range genres {
		responses[i] = GenreResponse{ID: genre.ID, Name: genre.Name}
	}
	ctx.JSON(http.StatusOK, responses)
}

func (c *Controller) collections(ctx *gin.Context) {
	collections, err := c.uc.Collections(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "failed to list collections", err)
		return
	}

	responses := make([]CollectionResponse, len(collections))
	for i, collection := range collections {
		responses[i] = CollectionResponse{
			ID:    collection.ID,
			Name:  collection.Name,
			Slug:  collection.Slug,
			Cover: collection.CoverLink,
		}
	}
	ctx.JSON(http.StatusOK, responses)
}

func (c *Controller) movie(ctx *gin.Context) {
	rawID := ctx.Param("movie_id")
	id, err := strconv.Atoi(rawID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code: "validation_error", Message: "invalid movie id",
		})
		return
	}

	movie, err := c.uc.ByID(ctx.Request.Context(), model.MovieID(id))
	if err != nil {
		if errors.Is(err, usecase_movie.ErrMovieNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Code: "not_found", Message: "not found",
			})
			return
		}
		c.fail(ctx, "failed to get movie", err)
		return
	}

	ctx.JSON(http.StatusOK, ConvertFromMovie(movie))
}

func (c *Controller) fail(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, slog.String("error", err.Error()))

	if errors.Is(err, usecase_movie.ErrCatalogUnavailable) {
		ctx.JSON(http.StatusBadGateway, http_common.ErrorResponse{
			Code: "catalog_unavailable", Message: "catalog unavailable, try again later",
		})
		return
	}
	ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
		Code: "internal", Message: "internal error",
	})
}
