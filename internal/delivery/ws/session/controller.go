package ws_session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_common "github.com/moviematch/core/internal/delivery/http/common"
	"github.com/moviematch/core/internal/model"
	usecase_session "github.com/moviematch/core/internal/usecase/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Controller struct {
	hub      *Hub
	sessions *usecase_session.Usecase
	logger   *slog.Logger
}

func NewController(hub *Hub, sessions *usecase_session.Usecase) *Controller {
	return &Controller{
		hub:      hub,
		sessions: sessions,
		logger:   slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/sessions/:session_id/ws", c.attach)
}

func (c *Controller) attach(ctx *gin.Context) {
	id := model.SessionID(ctx.Param("session_id"))

	if _, err := c.sessions.ByID(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, usecase_session.ErrSessionNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Code:    "not_found",
				Message: "not found",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Code:    "internal",
			Message: "internal error",
		})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade connection",
			"session_id", id, "error", err)
		return
	}

	client := &Client{
		Conn:      conn,
		Send:      make(chan []byte, 16),
		SessionID: id,
	}
	c.hub.RegisterClient(client)

	go c.hub.StartClientWriting(client)
	go c.hub.StartClientReading(client)
}
