// File: internal/api/list_events_request.go
package api

// ListEventsRequest 所有欄位皆為可選的過濾條件，日期使用 DD-MM-YYYY
// swagger:model api.ListEventsRequest
type ListEventsRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
