// File: internal/api/create_event_request.go
package api

// 日期欄位使用 DD-MM-YYYY 格式
// swagger:model api.CreateEventRequest
type CreateEventRequest struct {
	Name        string `json:"name" validate:"required" example:"Launch"`
	Description string `json:"description" validate:"required" example:"Q1 launch"`
	StartDate   string `json:"start_date" validate:"required" example:"01-02-2018"`
	EndDate     string `json:"end_date" validate:"required" example:"12-02-2018"`
}
