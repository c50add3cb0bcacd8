package oauth2

import "fmt"

// Error is the token endpoint's failure body as defined in RFC 6749 §5.2.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Standard OAuth2 error codes returned by the token endpoint.
const (
	ErrorInvalidRequest       = "invalid_request"
	ErrorInvalidClient        = "invalid_client"
	ErrorInvalidGrant         = "invalid_grant"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
	ErrorServerError          = "server_error"
)

// NewError creates a wire error with the given code and description.
func NewError(code, description string) *Error {
	return &Error{Code: code, Description: description}
}
