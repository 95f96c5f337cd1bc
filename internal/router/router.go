// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"events-api/internal/cache"
	"events-api/internal/database"
	"events-api/internal/handler"
	"events-api/internal/handler/events"
	"events-api/internal/handler/users"
	"events-api/internal/middleware"
	"events-api/internal/worker"
)

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, db database.DB, rdb cache.Cache, wp worker.Pool) {
	// /api/event/ 與 /api/event 視為同一路由
	e.Pre(echomw.RemoveTrailingSlash())

	api := e.Group("/api")

	// 健康檢查
	api.GET("/ping", handler.PingHandler(db, rdb))

	// Users
	user := api.Group("/user")
	user.POST("/sign-up", users.SignUpHandler(db))
	user.POST("/admin-sign-up", users.AdminSignUpHandler(db))
	user.POST("/login", users.LoginHandler(db))
	user.POST("/all", users.ListUsersHandler(db), middleware.RequireAdmin(db, rdb))
	user.GET("/count", users.CountUsersHandler(db), middleware.RequireAdmin(db, rdb))
	user.GET("/:id", users.GetUserHandler(db), middleware.RequireAdmin(db, rdb))
	// 來源系統的 update 路由沒有掛任何授權，這裡保持一致
	user.PUT("/update", users.UpdateUserHandler(db, rdb, wp))
	user.POST("/delete", users.DeleteUserHandler(db, rdb, wp), middleware.RequireAdmin(db, rdb))

	// Events
	event := api.Group("/event")
	event.POST("", events.ListEventsHandler(db), middleware.RequireAdmin(db, rdb))
	event.GET("/count", events.CountEventsHandler(db), middleware.RequireAdmin(db, rdb))
	event.GET("/:id", events.GetEventHandler(db), middleware.RequireUser(db, rdb))
	event.POST("/create", events.CreateEventHandler(db), middleware.RequireUser(db, rdb))
	event.PUT("/edit", events.UpdateEventHandler(db), middleware.RequireUser(db, rdb))
	event.POST("/delete", events.DeleteEventHandler(db), middleware.RequireAdmin(db, rdb))
}
