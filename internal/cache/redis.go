package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// redisClient 是 NewRedisClient 內部需要的最小介面，測試以 stub 替換
type redisClient interface {
	Cache
	Ping(ctx context.Context) *redis.StatusCmd
}

// redisNewClient 建立 redis client，測試可覆寫此變數
var redisNewClient = func(opt *redis.Options) redisClient {
	return redis.NewClient(opt)
}

// NewRedisClient 建立並驗證 Redis 連線，回傳值直接實作 Cache。
// 這個快取承載 token 解析結果（auth:token:* key）與健康檢查。
// addr: Redis 位址；password: 密碼，可空；db: 資料庫編號
func NewRedisClient(addr string, password string, db int) (Cache, error) {
	client := redisNewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
