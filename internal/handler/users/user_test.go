package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"events-api/internal/cache"
	"events-api/internal/database"
	"events-api/internal/model"
	"events-api/internal/service"
	"events-api/internal/store"
	"events-api/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubValidator struct{ err error }

func (s *stubValidator) Validate(i interface{}) error { return s.err }

func newJSONCtx(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newParamCtx(e *echo.Echo, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/user/"+id, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/user/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func restore() {
	hashPassword = service.HashPassword
	authenticateUser = service.AuthenticateUser
	generateSecurityToken = service.GenerateSecurityToken
	getUserByEmail = store.GetUserByEmail
	getUserByID = store.GetUserByID
	listUsers = store.ListUsers
	createUser = store.CreateUser
	updateUserFields = store.UpdateUserFields
	deleteUser = store.DeleteUser
	countUsers = store.CountUsers
}

func notFound(err error) error { return errors.Join(err, pgx.ErrNoRows) }

func duplicateKey(op string) error {
	return fmt.Errorf("%s: %w", op, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
}

func TestSignUpHandler(t *testing.T) {
	e := echo.New()

	t.Run("bind error", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		ctx, rec := newJSONCtx(e, http.MethodPost, "{bad")
		require.NoError(t, SignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validate error", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{err: errors.New("missing fname")}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com"}`)
		require.NoError(t, SignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "missing fname")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(_ context.Context, _ database.DB, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email}, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","fname":"A","lname":"B"}`)
		require.NoError(t, SignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "failed")
	})

	t.Run("email check failure", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(context.Context, database.DB, string) (*model.User, error) {
			return nil, errors.New("connection refused")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","fname":"A","lname":"B"}`)
		require.NoError(t, SignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("concurrent duplicate insert conflicts", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(context.Context, database.DB, string) (*model.User, error) {
			return nil, notFound(errors.New("GetUserByEmail"))
		}
		createUser = func(context.Context, database.DB, *model.User) (*model.User, error) {
			return nil, duplicateKey("CreateUser")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","fname":"A","lname":"B"}`)
		require.NoError(t, SignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "already exists")
	})

	t.Run("success generates token", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(context.Context, database.DB, string) (*model.User, error) {
			return nil, notFound(errors.New("GetUserByEmail"))
		}
		var created *model.User
		createUser = func(_ context.Context, _ database.DB, u *model.User) (*model.User, error) {
			created = u
			u.ID = 10
			u.CreatedAt = time.Now()
			return u, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"Alice@Example.com","fname":"Alice","lname":"Liddell"}`)
		require.NoError(t, SignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, created)
		require.Equal(t, "alice@example.com", created.Email)
		require.NotEmpty(t, created.SecurityToken)
		require.False(t, created.IsAdmin)
		require.Empty(t, created.PasswordHash)
		require.Contains(t, rec.Body.String(), `"status":"success"`)
	})

	t.Run("admin sign-up sets is_admin", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(context.Context, database.DB, string) (*model.User, error) {
			return nil, notFound(errors.New("GetUserByEmail"))
		}
		var created *model.User
		createUser = func(_ context.Context, _ database.DB, u *model.User) (*model.User, error) {
			created = u
			u.ID = 11
			return u, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"boss@b.com","fname":"Boss","lname":"Man","password":"pw"}`)
		require.NoError(t, AdminSignUpHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, created.IsAdmin)
		require.NotEmpty(t, created.PasswordHash)
	})
}

func TestLoginHandler(t *testing.T) {
	e := echo.New()

	t.Run("unknown email", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(context.Context, database.DB, string) (*model.User, error) {
			return nil, notFound(errors.New("GetUserByEmail"))
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"no@b.com","password":"pw"}`)
		require.NoError(t, LoginHandler(nil)(ctx))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(context.Context, database.DB, string) (*model.User, error) {
			return &model.User{ID: 1, PasswordHash: "hash"}, nil
		}
		authenticateUser = func(string, string) error { return errors.New("invalid password") }
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"a@b.com","password":"bad"}`)
		require.NoError(t, LoginHandler(nil)(ctx))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("success returns record", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByEmail = func(_ context.Context, _ database.DB, email string) (*model.User, error) {
			require.Equal(t, "a@b.com", email)
			return &model.User{ID: 1, Email: email, SecurityToken: "tok"}, nil
		}
		authenticateUser = func(string, string) error { return nil }
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"email":"A@B.com","password":"pw"}`)
		require.NoError(t, LoginHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"security_token":"tok"`)
	})
}

func TestListUsersHandler(t *testing.T) {
	e := echo.New()

	t.Run("filter mapped", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		var gotFilter model.UserFilter
		listUsers = func(_ context.Context, _ database.DB, f model.UserFilter) ([]model.User, error) {
			gotFilter = f
			return []model.User{{ID: 1}}, nil
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"gender":"female","email":"A@B.com"}`)
		require.NoError(t, ListUsersHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "female", gotFilter.Gender)
		require.Equal(t, "a@b.com", gotFilter.Email)
	})

	t.Run("store error", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		listUsers = func(context.Context, database.DB, model.UserFilter) ([]model.User, error) {
			return nil, errors.New("boom")
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{}`)
		require.NoError(t, ListUsersHandler(nil)(ctx))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetUserHandler(t *testing.T) {
	e := echo.New()

	t.Run("bad id", func(t *testing.T) {
		t.Cleanup(restore)
		ctx, rec := newParamCtx(e, "abc")
		require.NoError(t, GetUserHandler(nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
			return nil, notFound(errors.New("GetUserByID"))
		}
		ctx, rec := newParamCtx(e, "99")
		require.NoError(t, GetUserHandler(nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		t.Cleanup(restore)
		getUserByID = func(_ context.Context, _ database.DB, id int) (*model.User, error) {
			return &model.User{ID: id, Fname: "Alice"}, nil
		}
		ctx, rec := newParamCtx(e, "7")
		require.NoError(t, GetUserHandler(nil)(ctx))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"fname":"Alice"`)
	})
}

func TestCountUsersHandler(t *testing.T) {
	t.Cleanup(restore)
	e := echo.New()
	countUsers = func(context.Context, database.DB) (int, error) { return 3, nil }
	ctx, rec := newJSONCtx(e, http.MethodGet, "")
	require.NoError(t, CountUsersHandler(nil)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"data":3`)
}

func TestUpdateUserHandler(t *testing.T) {
	e := echo.New()

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":1,"update":{"is_admin":true}}`)
		require.NoError(t, UpdateUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "is_admin is not updatable")
	})

	t.Run("security_token rejected", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":1,"update":{"security_token":"x"}}`)
		require.NoError(t, UpdateUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("is_activated must be bool", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":1,"update":{"is_activated":"yes"}}`)
		require.NoError(t, UpdateUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":1,"update":{}}`)
		require.NoError(t, UpdateUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		updateUserFields = func(context.Context, database.DB, int, map[string]any) (*model.User, error) {
			return nil, notFound(errors.New("UpdateUserFields"))
		}
		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":99,"update":{"fname":"New"}}`)
		require.NoError(t, UpdateUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("email taken by another user conflicts", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		updateUserFields = func(context.Context, database.DB, int, map[string]any) (*model.User, error) {
			return nil, duplicateKey("UpdateUserFields")
		}
		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":7,"update":{"email":"taken@b.com"}}`)
		require.NoError(t, UpdateUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "already exists")
	})

	t.Run("success updates fields and drops cached token", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		var gotID int
		var gotFields map[string]any
		updateUserFields = func(_ context.Context, _ database.DB, id int, fields map[string]any) (*model.User, error) {
			gotID = id
			gotFields = fields
			return &model.User{ID: id, Fname: "New", SecurityToken: "tok"}, nil
		}
		deleted := make(chan string, 1)
		rdb := &cache.FakeCache{
			DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
				deleted <- keys[0]
				return redis.NewIntResult(1, nil)
			},
		}
		wp := worker.NewPool(1)

		ctx, rec := newJSONCtx(e, http.MethodPut, `{"_id":7,"update":{"fname":"New","email":"X@Y.com"}}`)
		require.NoError(t, UpdateUserHandler(nil, rdb, wp)(ctx))
		wp.Stop()

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, 7, gotID)
		require.Equal(t, map[string]any{"fname": "New", "email": "x@y.com"}, gotFields)
		require.Contains(t, rec.Body.String(), `"fname":"New"`)
		select {
		case key := <-deleted:
			require.Equal(t, "auth:token:tok", key)
		case <-time.After(time.Second):
			t.Fatal("cache invalidation never ran")
		}
	})
}

func TestDeleteUserHandler(t *testing.T) {
	e := echo.New()

	t.Run("not found", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
			return nil, notFound(errors.New("GetUserByID"))
		}
		ctx, rec := newJSONCtx(e, http.MethodPost, `{"_id":99}`)
		require.NoError(t, DeleteUserHandler(nil, nil, nil)(ctx))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("success deletes and invalidates", func(t *testing.T) {
		t.Cleanup(restore)
		e.Validator = &stubValidator{}
		getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
			return &model.User{ID: 7, SecurityToken: "tok"}, nil
		}
		var deletedID int
		deleteUser = func(_ context.Context, _ database.DB, id int) error {
			deletedID = id
			return nil
		}
		invalidated := make(chan string, 1)
		rdb := &cache.FakeCache{
			DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
				invalidated <- keys[0]
				return redis.NewIntResult(1, nil)
			},
		}
		wp := worker.NewPool(1)

		ctx, rec := newJSONCtx(e, http.MethodPost, `{"_id":7}`)
		require.NoError(t, DeleteUserHandler(nil, rdb, wp)(ctx))
		wp.Stop()

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
		require.Equal(t, 7, deletedID)
		select {
		case key := <-invalidated:
			require.Equal(t, "auth:token:tok", key)
		case <-time.After(time.Second):
			t.Fatal("cache invalidation never ran")
		}
	})
}
