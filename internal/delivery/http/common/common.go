package http_common

// ErrorResponse is the single error envelope for every failed request.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
