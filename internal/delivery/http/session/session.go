package http_session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/moviematch/core/internal/delivery/http/common"
	http_device_middleware "github.com/moviematch/core/internal/delivery/http/middleware/device"
	http_movie "github.com/moviematch/core/internal/delivery/http/movie"
	"github.com/moviematch/core/internal/model"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
)

type Controller struct {
	usecase *usecase_session.Usecase
	device  *http_device_middleware.Middleware

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase *usecase_session.Usecase,
	device *http_device_middleware.Middleware,
	opts ...ControllerOption) *Controller {
	c := &Controller{
		usecase: usecase,
		device:  device,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions", c.device.DeviceRequired())
	{
		sessions.POST("", c.create)
		sessions.GET("", c.closedList)
		sessions.GET("/:session_id", c.get)
		sessions.GET("/:session_id/movies", c.movies)
		sessions.POST("/:session_id/connection", c.join)
		sessions.DELETE("/:session_id/connection", c.leave)
		sessions.POST("/:session_id/start_voting", c.startVoting)
	}
}

type CreateSessionRequest struct {
	Genres      []string `json:"genres"`
	Collections []string `json:"collections"`
}

// One response shape per session status: no runtime serializer selection.

type WaitingSessionResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Date   string   `json:"date"`
	Users  []string `json:"users"`
	Movies []int    `json:"movies"`
}

type VotingSessionResponse struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Date    string   `json:"date"`
	Users   []string `json:"users"`
	Movies  []int    `json:"movies"`
	Matches []int    `json:"matched_movies"`
}

type ClosedSessionResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Date    string `json:"date"`
	Matches []int  `json:"matched_movies"`
	Cover   string `json:"image,omitempty"`
}

func sessionResponse(session model.Session) any {
	switch session.Status {
	case model.StatusVoting:
		return VotingSessionResponse{
			ID:      string(session.ID),
			Status:  string(session.Status),
			Date:    formatDate(session.CreatedAt),
			Users:   userNames(session.Members),
			Movies:  movieIDs(session.Movies),
			Matches: movieIDs(session.Matches),
		}
	case model.StatusClosed:
		return ClosedSessionResponse{
			ID:      string(session.ID),
			Status:  string(session.Status),
			Date:    formatDate(session.CreatedAt),
			Matches: movieIDs(session.Matches),
			Cover:   session.CoverLink,
		}
	default:
		return WaitingSessionResponse{
			ID:     string(session.ID),
			Status: string(session.Status),
			Date:   formatDate(session.CreatedAt),
			Users:  userNames(session.Members),
			Movies: movieIDs(session.Movies),
		}
	}
}

func (c *Controller) create(ctx *gin.Context) {
	user, ok := http_device_middleware.UserFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code:    "validation_error",
			Message: "device id is required",
		})
		return
	}

	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code:    "validation_error",
			Message: "invalid request format",
		})
		return
	}

	session, err := c.usecase.Create(ctx.Request.Context(), user.DeviceID, model.MovieFilter{
		Genres:      req.Genres,
		Collections: req.Collections,
	})
	if err != nil {
		c.fail(ctx, "failed to create session", err)
		return
	}

	ctx.JSON(http.StatusCreated, sessionResponse(session))
}

func (c *Controller) get(ctx *gin.Context) {
	session, err := c.usecase.ByID(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")))
	if err != nil {
		c.fail(ctx, "failed to get session", err)
		return
	}
	ctx.JSON(http.StatusOK, sessionResponse(session))
}

func (c *Controller) closedList(ctx *gin.Context) {
	user, _ := http_device_middleware.UserFromContext(ctx)

	sessions, err := c.usecase.ClosedByDevice(ctx.Request.Context(), user.DeviceID)
	if err != nil {
		c.fail(ctx, "failed to list closed sessions", err)
		return
	}

	responses := make([]any, len(sessions))
	for i, session := range sessions {
		responses[i] = sessionResponse(session)
	}
	ctx.JSON(http.StatusOK, responses)
}

func (c *Controller) movies(ctx *gin.Context) {
	movies, err := c.usecase.MoviesForSession(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")))
	if err != nil {
		c.fail(ctx, "failed to list session movies", err)
		return
	}
	ctx.JSON(http.StatusOK, http_movie.ConvertFromMovieList(movies))
}

func (c *Controller) join(ctx *gin.Context) {
	user, _ := http_device_middleware.UserFromContext(ctx)

	session, err := c.usecase.Join(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")), user.ID)
	if err != nil {
		c.fail(ctx, "failed to join session", err)
		return
	}
	ctx.JSON(http.StatusOK, sessionResponse(session))
}

func (c *Controller) leave(ctx *gin.Context) {
	user, _ := http_device_middleware.UserFromContext(ctx)

	session, err := c.usecase.Leave(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")), user.ID)
	if err != nil {
		c.fail(ctx, "failed to leave session", err)
		return
	}
	ctx.JSON(http.StatusOK, sessionResponse(session))
}

func (c *Controller) startVoting(ctx *gin.Context) {
	session, err := c.usecase.StartVoting(ctx.Request.Context(), model.SessionID(ctx.Param("session_id")))
	if err != nil {
		c.fail(ctx, "failed to start voting", err)
		return
	}
	ctx.JSON(http.StatusOK, sessionResponse(session))
}

func (c *Controller) fail(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, slog.String("error", err.Error()))

	switch {
	case errors.Is(err, usecase_session.ErrValidation):
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code: "validation_error", Message: err.Error(),
		})
	case errors.Is(err, usecase_session.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Code: "not_found", Message: "not found",
		})
	case errors.Is(err, usecase_session.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Code: "invalid_transition", Message: "operation not allowed in current status",
		})
	case errors.Is(err, usecase_session.ErrNotAMember):
		ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
			Code: "not_a_member", Message: "user is not a session member",
		})
	case errors.Is(err, usecase_session.ErrQuorumNotMet):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
			Code: "quorum_not_met", Message: "not enough members to start voting",
		})
	case errors.Is(err, usecase_session.ErrCatalogUnavailable):
		ctx.JSON(http.StatusBadGateway, http_common.ErrorResponse{
			Code: "catalog_unavailable", Message: "catalog unavailable, try again later",
		})
	case errors.Is(err, usecase_session.ErrSessionsUnavailable):
		ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
			Code: "unavailable", Message: "unavailable",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Code: "internal", Message: "internal error",
		})
	}
}

func formatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

func userNames(users []model.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return names
}

func movieIDs(ids []model.MovieID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
