package http_user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/moviematch/core/internal/delivery/http/common"
	http_device_middleware "github.com/moviematch/core/internal/delivery/http/middleware/device"
	"github.com/moviematch/core/internal/model"
	usecase_user "github.com/moviematch/core/internal/usecase/user"
)

type Controller struct {
	usecase *usecase_user.Usecase

	logger *slog.Logger
}

func New(usecase *usecase_user.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", c.create)
		users.GET("", c.get)
		users.PUT("", c.rename)
	}
}

type UserRequest struct {
	Name string `json:"name" binding:"required"`
}

type UserResponse struct {
	Name     string `json:"name"`
	DeviceID string `json:"device_id"`
}

func convert(user model.User) UserResponse {
	return UserResponse{
		Name:     user.Name,
		DeviceID: user.DeviceID,
	}
}

func (c *Controller) create(ctx *gin.Context) {
	deviceID := ctx.GetHeader(http_device_middleware.Header)

	var req UserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code: "validation_error", Message: "invalid request format",
		})
		return
	}

	user, err := c.usecase.GetOrCreate(ctx.Request.Context(), deviceID, req.Name)
	if err != nil {
		c.fail(ctx, "failed to create user", err)
		return
	}

	ctx.JSON(http.StatusCreated, convert(user))
}

func (c *Controller) get(ctx *gin.Context) {
	deviceID := ctx.GetHeader(http_device_middleware.Header)

	user, err := c.usecase.ByDevice(ctx.Request.Context(), deviceID)
	if err != nil {
		c.fail(ctx, "failed to get user", err)
		return
	}

	ctx.JSON(http.StatusOK, convert(user))
}

func (c *Controller) rename(ctx *gin.Context) {
	deviceID := ctx.GetHeader(http_device_middleware.Header)

	var req UserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code: "validation_error", Message: "invalid request format",
		})
		return
	}

	user, err := c.usecase.Rename(ctx.Request.Context(), deviceID, req.Name)
	if err != nil {
		c.fail(ctx, "failed to rename user", err)
		return
	}

	ctx.JSON(http.StatusOK, convert(user))
}

func (c *Controller) fail(ctx *gin.Context, msg string, err error) {
	c.logger.Error(msg, slog.String("error", err.Error()))

	switch {
	case errors.Is(err, usecase_user.ErrValidation):
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Code: "validation_error", Message: err.Error(),
		})
	case errors.Is(err, usecase_user.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Code: "not_found", Message: "not found",
		})
	default:
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Code: "internal", Message: "internal error",
		})
	}
}
