package domain

import (
	"errors"
	"fmt"
)

// Error is a stable, caller-facing failure. Sentinels below are compared with errors.Is
// and extended with context through fmt.Errorf("%w: ...").
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrAuthenticationFailure = newError("ERROR_AUTHENTICATE_FAILURE", "authentication failed")
	ErrUnsupportedAuthType   = newError("ERROR_NOT_SUPPORTED_AUTH_TYPE", "unsupported auth type")
	ErrMFARequired           = newError("ERROR_MFA_REQUIRED", "multi-factor verification required")
	ErrInvalidMFACode        = newError("ERROR_INVALID_VERIFY_CODE", "invalid verification code")
	ErrUnsupportedMFAType    = newError("ERROR_NOT_SUPPORTED_MFA_TYPE", "unsupported mfa type")
	ErrMFADeliveryFailed     = newError("ERROR_MFA_DELIVERY_FAILED", "failed to deliver verification code")
	ErrDomainDisabled        = newError("ERROR_DOMAIN_STATE", "domain is not enabled")
	ErrWorkspaceDisabled     = newError("ERROR_WORKSPACE_STATE", "workspace is not enabled")
	ErrPermissionDenied      = newError("ERROR_PERMISSION_DENIED", "permission denied")
	ErrMissingParameter      = newError("ERROR_REQUIRED_PARAMETER", "required parameter is missing")
	ErrInvalidParameter      = newError("ERROR_INVALID_PARAMETER", "invalid parameter")
	ErrInvalidGrantType      = newError("ERROR_INVALID_GRANT_TYPE", "invalid grant type")
	ErrRoleNotFound          = newError("ERROR_ROLE_NOT_FOUND", "role not found")
	ErrMalformedToken        = newError("ERROR_MALFORMED_TOKEN", "malformed token")
	ErrKeyUnavailable        = newError("ERROR_KEY_UNAVAILABLE", "signing key unavailable")
	ErrNotFound              = newError("ERROR_NOT_FOUND", "resource not found")
)

// MFARequiredError is returned by Issue after a verification challenge has been dispatched.
// It is an expected retry path: the caller re-submits the credentials with the code.
type MFARequiredError struct {
	Destination string
}

func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("%s (destination = %s)", ErrMFARequired.Message, e.Destination)
}

func (e *MFARequiredError) Unwrap() error {
	return ErrMFARequired
}

// ErrorCode returns the code of the first domain error in err's chain.
func ErrorCode(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "ERROR_UNKNOWN"
}
