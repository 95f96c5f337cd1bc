// File: internal/api/sign_up_request.go
package api

// swagger:model api.SignUpRequest
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Fname    string `json:"fname" validate:"required" example:"Alice"`
	Lname    string `json:"lname" validate:"required" example:"Liddell"`
	Phone    string `json:"phone" example:"0911222333"`
	Gender   string `json:"gender" example:"female"`
	Password string `json:"password" example:"Secret123!"`
}
