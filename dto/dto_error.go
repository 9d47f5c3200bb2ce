package dto

type ErrorResponse struct {
	Error  string `json:"error"`
	Path   string `json:"path,omitempty"`
	Method string `json:"method,omitempty"`
	Stack  string `json:"stack,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
