// File: internal/service/auth.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"events-api/internal/cache"
	"events-api/internal/database"
	"events-api/internal/model"
	"events-api/internal/store"

	"github.com/jackc/pgx/v5"
)

// 授權判定的終態，呼叫端以 errors.Is 分辨
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrLookupFailed      = errors.New("lookup failed")
)

const (
	// 單次查找的上限，避免授權判定卡死請求
	lookupTimeout = 5 * time.Second
	tokenCacheTTL = time.Minute
)

var getUserBySecurityToken = store.GetUserBySecurityToken

// ExtractBearerToken 從 Authorization 標頭取出 bearer token
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrMissingCredential)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", fmt.Errorf("%w: invalid authorization header format", ErrMissingCredential)
	}
	return parts[1], nil
}

func tokenCacheKey(token string) string { return "auth:token:" + token }

// ResolveToken 解析 Authorization 標頭並以 security_token 查找使用者
// 查無此 token 回傳 ErrUnauthorized，查找本身失敗回傳 ErrLookupFailed
// rdb 可為 nil，此時不經過快取
func ResolveToken(ctx context.Context, db database.DB, rdb cache.Cache, header string) (*model.User, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	if rdb != nil {
		if data, err := rdb.Get(ctx, tokenCacheKey(token)).Bytes(); err == nil {
			u := &model.User{}
			if err := json.Unmarshal(data, u); err == nil {
				u.SecurityToken = token
				return u, nil
			}
		}
	}

	user, err := getUserBySecurityToken(ctx, db, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: unknown token", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	if rdb != nil {
		if data, err := json.Marshal(user); err == nil {
			rdb.Set(ctx, tokenCacheKey(token), data, tokenCacheTTL)
		}
	}
	return user, nil
}

// RequireAdminUser 檢查已解析的使用者是否具管理員權限
func RequireAdminUser(user *model.User) error {
	if user == nil || !user.IsAdmin {
		return fmt.Errorf("%w: admin privileges required", ErrForbidden)
	}
	return nil
}

// DropCachedToken 在使用者資料變動後移除 token 快取
func DropCachedToken(ctx context.Context, rdb cache.Cache, token string) {
	if rdb == nil || token == "" {
		return
	}
	rdb.Del(ctx, tokenCacheKey(token))
}
