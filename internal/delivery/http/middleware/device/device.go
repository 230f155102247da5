package http_device_middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/moviematch/core/internal/delivery/http/common"
	"github.com/moviematch/core/internal/model"
	usecase_user "github.com/moviematch/core/internal/usecase/user"
)

// Header carries the opaque device identifier that stands in for auth.
const Header = "X-Device-Id"

const (
	ContextUser     = "device_user"
	ContextDeviceID = "device_id"
)

type Middleware struct {
	users  *usecase_user.Usecase
	logger *slog.Logger
}

func New(users *usecase_user.Usecase) *Middleware {
	return &Middleware{
		users:  users,
		logger: slog.Default(),
	}
}

// DeviceRequired resolves the device-bound user and stores it on the
// request context. Endpoints creating the user skip this middleware.
func (m *Middleware) DeviceRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		deviceID := ctx.GetHeader(Header)
		if deviceID == "" {
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Code:    "validation_error",
				Message: "device id header is required",
			})
			ctx.Abort()
			return
		}

		user, err := m.users.ByDevice(ctx.Request.Context(), deviceID)
		if err != nil {
			if errors.Is(err, usecase_user.ErrUserNotFound) {
				ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
					Code:    "unknown_device",
					Message: "no user registered for this device",
				})
				ctx.Abort()
				return
			}
			m.logger.Error("failed to resolve device", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Code:    "internal",
				Message: "internal error",
			})
			ctx.Abort()
			return
		}

		ctx.Set(ContextUser, user)
		ctx.Set(ContextDeviceID, deviceID)
		ctx.Next()
	}
}

// UserFromContext returns the user resolved by DeviceRequired.
func UserFromContext(ctx *gin.Context) (model.User, bool) {
	raw, ok := ctx.Get(ContextUser)
	if !ok {
		return model.User{}, false
	}
	user, ok := raw.(model.User)
	return user, ok
}
