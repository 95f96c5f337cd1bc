// File: internal/api/list_users_request.go
package api

// ListUsersRequest 所有欄位皆為可選的等值過濾條件
// swagger:model api.ListUsersRequest
type ListUsersRequest struct {
	Fname  string `json:"fname"`
	Lname  string `json:"lname"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
}
