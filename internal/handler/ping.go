// File: internal/handler/ping.go
package handler

import (
	"net/http"

	"events-api/internal/api"
	"events-api/internal/cache"
	"events-api/internal/database"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// PingHandler 健康檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} api.Response
// @Failure     500 {object} api.Response
// @Router      /ping [get]
func PingHandler(db database.DB, rdb cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed("database unhealthy"))
		}
		if rdb != nil {
			if err := rdb.Get(ctx, "healthcheck").Err(); err != nil && err != redis.Nil {
				return c.JSON(http.StatusInternalServerError, api.Failed("cache unhealthy"))
			}
		}
		return c.JSON(http.StatusOK, api.Success("pong"))
	}
}
