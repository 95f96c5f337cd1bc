// File: internal/api/delete_request.go
package api

// swagger:model api.DeleteRequest
type DeleteRequest struct {
	ID int `json:"_id" validate:"required" example:"1"`
}
