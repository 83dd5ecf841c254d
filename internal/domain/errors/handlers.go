package errors

// ErrorResponse is the body rendered for every failed request.
type ErrorResponse struct {
	Status    int          `json:"status"`
	Name      string       `json:"name"`
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors"`
	Stack     []string     `json:"stack,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

// MessageResponse is the body of operations that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}
