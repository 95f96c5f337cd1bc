package middleware

import (
	"errors"
	"net/http"

	"events-api/internal/api"
	"events-api/internal/cache"
	"events-api/internal/database"
	"events-api/internal/model"
	"events-api/internal/service"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "user"

// denied 將授權判定的錯誤轉成對應的 HTTP 回應
func denied(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingCredential):
		return c.JSON(http.StatusUnauthorized, api.Failed("missing credentials"))
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, api.Failed("You're not authorized"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, api.Failed("admin privileges required"))
	default:
		return c.JSON(http.StatusBadGateway, api.Failed("credential lookup failed"))
	}
}

// RequireUser 任何持有效 token 的使用者皆可通過
// 通過後把解析出的使用者放入 context 供下游使用
func RequireUser(db database.DB, rdb cache.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := service.ResolveToken(c.Request().Context(), db, rdb, c.Request().Header.Get("Authorization"))
			if err != nil {
				return denied(c, err)
			}
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// RequireAdmin 僅允許 is_admin 的使用者通過
func RequireAdmin(db database.DB, rdb cache.Cache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := service.ResolveToken(c.Request().Context(), db, rdb, c.Request().Header.Get("Authorization"))
			if err != nil {
				return denied(c, err)
			}
			if err := service.RequireAdminUser(user); err != nil {
				return denied(c, err)
			}
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser 取出 RequireUser/RequireAdmin 放入的使用者
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(ContextUserKey).(*model.User)
	return user, ok
}
