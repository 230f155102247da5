package http_voting

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/moviematch/core/internal/delivery/http/common"
	http_device_middleware "github.com/moviematch/core/internal/delivery/http/middleware/device"
	http_movie "github.com/moviematch/core/internal/delivery/http/movie"
	"github.com/moviematch/core/internal/model"
	usecase_roulette "github.com/moviematch/core/internal/usecase/roulette"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
	usecase_vote "github.com/moviematch/core/internal/usecase/vote"
)

type Controller struct {
	votes    *usecase_vote.Usecase
	sessions *usecase_session.Usecase
	roulette *usecase_roulette.Usecase
	device   *http_device_middleware.Middleware

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(votes *usecase_vote.Usecase,
	sessions *usecase_session.Usecase,
	roulette *usecase_roulette.Usecase,
	device *http_device_middleware.Middleware,
	opts ...ControllerOption) *Controller {
	c := &Controller{
		votes:    votes,
		sessions: sessions,
		roulette: roulette,
		device:   device,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	voting := router.Group("/sessions/:session_id", c.device.DeviceRequired())
	{
		voting.POST("/likes/:movie_id", c.like)
		voting.DELETE("/likes/:movie_id", c.unlike)
		voting.GET("/matches", c.matches)
		voting.POST("/roulette", c.spin)
	}
}

type LikeResponse struct {
	SessionID string `json:"session_id"`
	MovieID   int    `json:"movie_id"`
	Matched   bool   `json:"matched"`
}

type UnlikeResponse struct {
	Removed bool `json:"removed"`
}

type RouletteResponse struct {
	MovieID int `json:"movie_id"`
}

func (c *Controller) like(ctx *gin.Context) {
	user, _ := http_device_middleware.UserFromContext(ctx)

	sessionID, movieID, ok := c.voteParams(ctx)
	if !ok {
		return
	}

	vote, err := c.votes.Like(ctx.Request.Context(), sessionID, user.ID, movieID)
	if err != nil && !errors.Is(err, usecase_vote.ErrDuplicateVote) {
		c.failVote(ctx, "failed to like movie", err)
		return
	}

	// Duplicate likes are benign: the client may retry freely.
	session, sessionErr := c.sessions.ByID(ctx.Request.Context(), sessionID)
	matched := sessionErr == nil && session.IsMatched(movieID)

	ctx.JSON(http.StatusCreated, LikeResponse{
		SessionID: string(vote.SessionID),
		MovieID:   int(vote.MovieID),
		Matched:   matched,
	})
}

func (c *Controller) unlike(ctx *gin.Context) {
	user, _ := http_device_middleware.UserFromContext(ctx)

	sessionID, movieID, ok := c.voteParams(ctx)
	if !ok {
		return
	}

	removed, err := c.votes.Unlike(ctx.Request.Context(), sessionID, user.ID, movieID)
	if err != nil {
		c.failVote(ctx, "failed to unlike movie", err)
		return
	}

	ctx.JSON(http.StatusOK, UnlikeResponse{Removed: removed})
}

func (c *Controller) matches(ctx *gin.Context) {
	movies, err := c.sessions.Matches(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")))
	if err != nil {
		if errors.Is(err, usecase_session.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Code: "not_found", Message: "not found",
			})
			return
		}
		c.logger.Error("failed to list matches", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Code: "internal", Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, http_movie.ConvertFromMovieList(movies))
}

func (c *Controller) spin(ctx *gin.Context) {
	movieID, err := c.roulette.Spin(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")))
	if err != nil {
		c.logger.Error("failed to spin roulette", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_roulette.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Code: "not_found", Message: "not found",
			})
		case errors.Is(err, usecase_roulette.ErrInsufficientMatches):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Code:    "insufficient_matches",
				Message: "need more than 2 matched movies to spin",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Code: "internal", Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, RouletteResponse{MovieID: int(movieID)})
}

func (c *Controller) voteParams(ctx *gin.Context) (model.SessionID, model.MovieID, bool) {
	sessionID := model.SessionID(ctx.Param("session_id"))

	rawMovieID := ctx.Param("movie_id")
	movieID, err := strconv.Atoi(rawMovieID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code: "validation_error", Message: "invalid movie id",
		})
		return "", 0, false
	}
	return sessionID, model.MovieID(movieID), true
}

func (c *Controller) failVote(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, slog.String("error", err.Error()))

	switch {
	case errors.Is(err, usecase_vote.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Code: "not_found", Message: "not found",
		})
	case errors.Is(err, usecase_vote.ErrWrongStatus):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Code: "wrong_status", Message: "session is not in voting status",
		})
	case errors.Is(err, usecase_vote.ErrNotAMember):
		ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
			Code: "not_a_member", Message: "user is not a session member",
		})
	case errors.Is(err, usecase_vote.ErrNotACandidate):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Code: "not_a_candidate", Message: "movie is not a session candidate",
		})
	case errors.Is(err, usecase_vote.ErrAlreadyMatched):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Code: "already_matched", Message: "movie is already matched",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Code: "internal", Message: "internal error",
		})
	}
}
