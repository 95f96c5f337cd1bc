// File: internal/api/response.go
package api

// Response 所有端點統一的 JSON 信封
// swagger:model api.Response
type Response struct {
	// status 為 success 或 failed
	Status string `json:"status" example:"success"`
	Data   any    `json:"data,omitempty"`
	Err    string `json:"err,omitempty"`
}

// Success 包裝成功結果
func Success(data any) Response {
	return Response{Status: "success", Data: data}
}

// Failed 包裝失敗原因
func Failed(err string) Response {
	return Response{Status: "failed", Err: err}
}
