package dto

// ErrorResponse is the uniform error body. Field is set only for validation
// failures and names the single offending field.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
