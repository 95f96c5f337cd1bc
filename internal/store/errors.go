package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation 回報錯誤是否為唯一索引衝突 (SQLSTATE 23505)
// 併發寫入可能繞過先查再寫的檢查，呼叫端以此把衝突轉成 409
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
