// File: internal/model/event.go
package model

import "time"

type Event struct {
	ID          int       `db:"id" json:"_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	ModifiedAt  time.Time `db:"modified_at" json:"modified_at"`
}

// EventFilter 列表查詢允許的過濾欄位，零值表示不過濾
type EventFilter struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}
