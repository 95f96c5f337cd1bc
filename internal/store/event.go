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

const eventColumns = `id, name, description, start_date, end_date, created_at, modified_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	ev := &model.Event{}
	if err := row.Scan(
		&ev.ID,
		&ev.Name,
		&ev.Description,
		&ev.StartDate,
		&ev.EndDate,
		&ev.CreatedAt,
		&ev.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return ev, nil
}

func GetEventByID(ctx context.Context, db database.DB, eventID int) (*model.Event, error) {
	row := db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		eventID,
	)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("GetEventByID: %w", err)
	}
	return ev, nil
}

// ListEvents 依過濾條件回傳事件列表，created_at 由新到舊
func ListEvents(ctx context.Context, db database.DB, f model.EventFilter) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var conds []string
	var args []any
	if f.Name != "" {
		args = append(args, f.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}
	if !f.StartDate.IsZero() {
		args = append(args, f.StartDate)
		conds = append(conds, fmt.Sprintf("start_date = $%d", len(args)))
	}
	if !f.EndDate.IsZero() {
		args = append(args, f.EndDate)
		conds = append(conds, fmt.Sprintf("end_date = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListEvents: %w", err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return events, nil
}

func CreateEvent(ctx context.Context, db database.DB, ev *model.Event) (*model.Event, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO events (name, description, start_date, end_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, modified_at`,
		ev.Name,
		ev.Description,
		ev.StartDate,
		ev.EndDate,
	)
	if err := row.Scan(&ev.ID, &ev.CreatedAt, &ev.ModifiedAt); err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}
	return ev, nil
}

// UpdateEventFields 只更新 fields 中指定的欄位並回傳更新後資料
func UpdateEventFields(ctx context.Context, db database.DB, eventID int, fields map[string]any) (*model.Event, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("UpdateEventFields: no fields to update")
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
	args = append(args, eventID)

	row := db.QueryRow(ctx,
		fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d RETURNING `+eventColumns,
			strings.Join(sets, ", "), len(args)),
		args...,
	)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("UpdateEventFields: %w", err)
	}
	return ev, nil
}

func DeleteEvent(ctx context.Context, db database.DB, eventID int) error {
	tag, err := db.Exec(ctx,
		`DELETE FROM events WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteEvent: %w", pgx.ErrNoRows)
	}
	return nil
}

func CountEvents(ctx context.Context, db database.DB) (int, error) {
	var count int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountEvents: %w", err)
	}
	return count, nil
}
