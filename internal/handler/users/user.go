package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"events-api/internal/api"
	"events-api/internal/cache"
	"events-api/internal/database"
	"events-api/internal/model"
	"events-api/internal/service"
	"events-api/internal/store"
	"events-api/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

var (
	hashPassword          = service.HashPassword
	authenticateUser      = service.AuthenticateUser
	generateSecurityToken = service.GenerateSecurityToken
	getUserByEmail        = store.GetUserByEmail
	getUserByID           = store.GetUserByID
	listUsers             = store.ListUsers
	createUser            = store.CreateUser
	updateUserFields      = store.UpdateUserFields
	deleteUser            = store.DeleteUser
	countUsers            = store.CountUsers
)

// updatableUserFields 更新端點允許覆寫的欄位
// is_admin 與 security_token 永遠不可經由此路徑變更
var updatableUserFields = map[string]bool{
	"fname":        true,
	"lname":        true,
	"email":        true,
	"phone":        true,
	"gender":       true,
	"is_activated": true,
}

func signUp(db database.DB, asAdmin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.SignUpRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid request payload"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		req.Email = strings.ToLower(req.Email)
		existing, err := getUserByEmail(c.Request().Context(), db, req.Email)
		if err == nil && existing != nil {
			return c.JSON(http.StatusConflict, api.Failed("user with this email already exists"))
		}
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}

		token, err := generateSecurityToken()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed("failed to generate security token"))
		}

		var hash string
		if req.Password != "" {
			if hash, err = hashPassword(req.Password); err != nil {
				return c.JSON(http.StatusInternalServerError, api.Failed("failed to hash password"))
			}
		}

		user, err := createUser(c.Request().Context(), db, &model.User{
			Fname:         req.Fname,
			Lname:         req.Lname,
			Email:         req.Email,
			Phone:         req.Phone,
			Gender:        req.Gender,
			PasswordHash:  hash,
			SecurityToken: token,
			IsAdmin:       asAdmin,
		})
		if err != nil {
			// 併發註冊同一 email 時唯一索引才會擋下
			if store.IsUniqueViolation(err) {
				return c.JSON(http.StatusConflict, api.Failed("user with this email already exists"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(user))
	}
}

// SignUpHandler 註冊一般使用者
// @Summary     Sign up
// @Description 以 email 建立新使用者，重複的 email 回傳 409
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       body body api.SignUpRequest true "註冊資料"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     409 {object} api.Response
// @Failure     500 {object} api.Response
// @Router      /user/sign-up [post]
func SignUpHandler(db database.DB) echo.HandlerFunc {
	return signUp(db, false)
}

// AdminSignUpHandler 註冊管理員使用者
// @Summary     Admin sign up
// @Description 以 email 建立新管理員，重複的 email 回傳 409
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       body body api.SignUpRequest true "註冊資料"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     409 {object} api.Response
// @Failure     500 {object} api.Response
// @Router      /user/admin-sign-up [post]
func AdminSignUpHandler(db database.DB) echo.HandlerFunc {
	return signUp(db, true)
}

// LoginHandler 使用 email 與密碼登入
// @Summary     Login
// @Description 驗證 email 與密碼並回傳使用者記錄（含 security_token）
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       body body api.LoginRequest true "登入資料"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     401 {object} api.Response
// @Router      /user/login [post]
func LoginHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid request payload"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		user, err := getUserByEmail(c.Request().Context(), db, strings.ToLower(req.Email))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, api.Failed("invalid credentials"))
		}
		if err := authenticateUser(user.PasswordHash, req.Password); err != nil {
			return c.JSON(http.StatusUnauthorized, api.Failed("invalid credentials"))
		}
		return c.JSON(http.StatusOK, api.Success(user))
	}
}

// ListUsersHandler 依過濾條件列出使用者
// @Summary     List users
// @Description 依可選的等值過濾條件回傳使用者列表，created_at 由新到舊
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       body body api.ListUsersRequest false "過濾條件"
// @Success     200 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /user/all [post]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.ListUsersRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid request payload"))
		}

		users, err := listUsers(c.Request().Context(), db, model.UserFilter{
			Fname:  req.Fname,
			Lname:  req.Lname,
			Email:  strings.ToLower(req.Email),
			Phone:  req.Phone,
			Gender: req.Gender,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(users))
	}
}

// GetUserHandler 以 ID 查詢單一使用者
// @Summary     Get user
// @Tags        user
// @Produce     json
// @Param       id path int true "使用者 ID"
// @Success     200 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     404 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /user/{id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("invalid user ID"))
		}
		user, err := getUserByID(c.Request().Context(), db, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("user not found"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(user))
	}
}

// CountUsersHandler 回傳使用者總數
// @Summary     Count users
// @Produce     json
// @Tags        user
// @Success     200 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /user/count [get]
func CountUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		count, err := countUsers(c.Request().Context(), db)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}
		return c.JSON(http.StatusOK, api.Success(count))
	}
}

// buildUserUpdate 檢查允許清單並轉換欄位型別
func buildUserUpdate(update map[string]any) (map[string]any, error) {
	if len(update) == 0 {
		return nil, errors.New("update object is empty")
	}
	fields := make(map[string]any, len(update))
	for name, value := range update {
		if !updatableUserFields[name] {
			return nil, errors.New("field " + name + " is not updatable")
		}
		switch name {
		case "is_activated":
			b, ok := value.(bool)
			if !ok {
				return nil, errors.New("field is_activated must be a boolean")
			}
			fields[name] = b
		default:
			s, ok := value.(string)
			if !ok {
				return nil, errors.New("field " + name + " must be a string")
			}
			if name == "email" {
				s = strings.ToLower(s)
			}
			fields[name] = s
		}
	}
	return fields, nil
}

// UpdateUserHandler 更新使用者資料（允許清單內的欄位）
// @Summary     Update user
// @Description 套用 update 物件中的欄位，is_admin 與 security_token 不可變更
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       body body api.UpdateRequest true "更新內容"
// @Success     201 {object} api.Response
// @Failure     400 {object} api.Response
// @Failure     404 {object} api.Response
// @Failure     409 {object} api.Response
// @Failure     500 {object} api.Response
// @Router      /user/update [put]
func UpdateUserHandler(db database.DB, rdb cache.Cache, wp worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UpdateRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("the required parameters were not supplied"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		fields, err := buildUserUpdate(req.Update)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		user, err := updateUserFields(c.Request().Context(), db, req.ID, fields)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("user not found"))
			}
			if store.IsUniqueViolation(err) {
				return c.JSON(http.StatusConflict, api.Failed("user with this email already exists"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}

		// 使用者資料變了，token 快取裡的舊記錄要丟掉
		if wp != nil {
			token := user.SecurityToken
			wp.Submit(func() {
				service.DropCachedToken(context.Background(), rdb, token)
			})
		}
		return c.JSON(http.StatusCreated, api.Success(user))
	}
}

// DeleteUserHandler 刪除使用者
// @Summary     Delete user
// @Tags        user
// @Accept      json
// @Produce     json
// @Param       body body api.DeleteRequest true "目標 ID"
// @Success     204 "No Content"
// @Failure     400 {object} api.Response
// @Failure     404 {object} api.Response
// @Failure     500 {object} api.Response
// @Security    ApiKeyAuth
// @Router      /user/delete [post]
func DeleteUserHandler(db database.DB, rdb cache.Cache, wp worker.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.DeleteRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed("the required parameters were not supplied"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Failed(err.Error()))
		}

		user, err := getUserByID(c.Request().Context(), db, req.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("User doesn't exist"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}

		if err := deleteUser(c.Request().Context(), db, req.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, api.Failed("User doesn't exist"))
			}
			return c.JSON(http.StatusInternalServerError, api.Failed(err.Error()))
		}

		if wp != nil {
			token := user.SecurityToken
			wp.Submit(func() {
				service.DropCachedToken(context.Background(), rdb, token)
			})
		}
		return c.NoContent(http.StatusNoContent)
	}
}
