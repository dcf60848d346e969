package client

import (
	"encoding/json"
	"fmt"
)

// APIError represents an error returned by the API
type APIError struct {
	StatusCode int                    `json:"-"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("API error: %s (status: %d)", e.Message, e.StatusCode)
}

// parseAPIError decodes both error shapes the server produces: the
// {"error":{code,message}} envelope and the flat {"error":"..."} body of
// the maintenance triggers.
func parseAPIError(status int, body []byte) error {
	var wire struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err != nil || len(wire.Error) == 0 {
		return &APIError{StatusCode: status, Message: string(body)}
	}

	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(wire.Error, apiErr); err != nil {
		var msg string
		_ = json.Unmarshal(wire.Error, &msg)
		apiErr.Message = msg
		if wire.Message != "" {
			apiErr.Message = msg + ": " + wire.Message
		}
	}
	apiErr.StatusCode = status
	return apiErr
}

// IsNotFound returns true if the error is a 404 not found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsUnauthorized returns true if the error is a 401 unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// IsForbidden returns true if the error is a 403 forbidden error.
// The server answers 403 when a post exceeds the plan's allowance.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == 403
}

// IsValidationError returns true if the error is a 400 validation error
func (e *APIError) IsValidationError() bool {
	return e.StatusCode == 400
}

// IsRateLimited returns true if the error is a 429 error
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsServerError returns true if the error is a 5xx server error
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}
