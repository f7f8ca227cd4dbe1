package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "not_found")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// returned when a daily allowance is used up
type QuotaExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Capability string `json:"capability"`
	Limit      int64  `json:"limit"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}
