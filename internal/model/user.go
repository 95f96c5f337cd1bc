// File: internal/model/user.go
package model

import "time"

type User struct {
	ID            int       `db:"id" json:"_id"`
	Fname         string    `db:"fname" json:"fname"`
	Lname         string    `db:"lname" json:"lname"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	Gender        string    `db:"gender" json:"gender"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	SecurityToken string    `db:"security_token" json:"security_token"`
	IsAdmin       bool      `db:"is_admin" json:"is_admin"`
	IsActivated   bool      `db:"is_activated" json:"is_activated"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	ModifiedAt    time.Time `db:"modified_at" json:"modified_at"`
}

// UserFilter 列表查詢允許的等值過濾欄位，空字串表示不過濾
type UserFilter struct {
	Fname  string
	Lname  string
	Email  string
	Phone  string
	Gender string
}
