package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"events-api/internal/database"
	"events-api/internal/model"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, fname, lname, email, phone, gender, password_hash, security_token,
	 is_admin, is_activated, created_at, modified_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Fname,
		&u.Lname,
		&u.Email,
		&u.Phone,
		&u.Gender,
		&u.PasswordHash,
		&u.SecurityToken,
		&u.IsAdmin,
		&u.IsActivated,
		&u.CreatedAt,
		&u.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("GetUserByID: %w", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return u, nil
}

func GetUserBySecurityToken(ctx context.Context, db database.DB, token string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE security_token = $1`,
		token,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("GetUserBySecurityToken: %w", err)
	}
	return u, nil
}

// ListUsers 依過濾條件回傳使用者列表，created_at 由新到舊
func ListUsers(ctx context.Context, db database.DB, f model.UserFilter) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var conds []string
	var args []any
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("fname", f.Fname)
	add("lname", f.Lname)
	add("email", f.Email)
	add("phone", f.Phone)
	add("gender", f.Gender)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return users, nil
}

func CreateUser(ctx context.Context, db database.DB, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (fname, lname, email, phone, gender, password_hash, security_token, is_admin, is_activated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, modified_at`,
		u.Fname,
		u.Lname,
		u.Email,
		u.Phone,
		u.Gender,
		u.PasswordHash,
		u.SecurityToken,
		u.IsAdmin,
		u.IsActivated,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.ModifiedAt); err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	return u, nil
}

// UpdateUserFields 只更新 fields 中指定的欄位並回傳更新後資料
// 欄位名稱由呼叫端驗證，這裡依名稱排序以保持 SQL 穩定
func UpdateUserFields(ctx context.Context, db database.DB, userID int, fields map[string]any) (*model.User, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("UpdateUserFields: no fields to update")
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sets []string
	var args []any
	for _, name := range names {
		args = append(args, fields[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", name, len(args)))
	}
	sets = append(sets, "modified_at = now()")
	args = append(args, userID)

	row := db.QueryRow(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
			strings.Join(sets, ", "), len(args)),
		args...,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("UpdateUserFields: %w", err)
	}
	return u, nil
}

func DeleteUser(ctx context.Context, db database.DB, userID int) error {
	tag, err := db.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteUser: %w", pgx.ErrNoRows)
	}
	return nil
}

func CountUsers(ctx context.Context, db database.DB) (int, error) {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountUsers: %w", err)
	}
	return count, nil
}
