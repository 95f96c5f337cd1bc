// File: internal/api/update_request.go
package api

// UpdateRequest 更新端點的共用請求格式
// update 只接受允許清單內的欄位，未知欄位會被拒絕
// swagger:model api.UpdateRequest
type UpdateRequest struct {
	ID     int            `json:"_id" validate:"required" example:"1"`
	Update map[string]any `json:"update" validate:"required"`
}
