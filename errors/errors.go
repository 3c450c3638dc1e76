// errors/errors.go
package errors

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTokenExpired      = errors.New("access token expired")
	ErrRequestFailed     = errors.New("api request failed")
	ErrInvalidResponse   = errors.New("invalid api response")
	ErrSessionNotLoaded  = errors.New("session not loaded")
	ErrInvalidLogFilter  = errors.New("invalid log filter")
	ErrInvalidLogConfig  = errors.New("invalid logger config")
	ErrInvalidContract   = errors.New("invalid access contract")
	ErrInternalServer    = errors.New("internal server error")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)
