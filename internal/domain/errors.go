package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrInvalidRequest   = errors.New("invalid_request")    // 400
	ErrConfiguration    = errors.New("configuration")      // 500
	ErrStorage          = errors.New("storage")            // 500
	ErrEncode           = errors.New("encode")             // 500
	ErrPublish          = errors.New("publish")            // 500
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrUnavailable      = errors.New("unavailable")        // 503
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Коды ошибок в конверте ответа
const (
	ErrCodeInvalidRequest   = 1000
	ErrCodeConfiguration    = 1001
	ErrCodeStorage          = 1002
	ErrCodeEncode           = 1003
	ErrCodePublish          = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeUnavailable      = 1006
	ErrCodeUnexpected       = 1999
)

// ErrorKind — короткая метка ошибки для логов и метрик.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrPublish):
		return "publish"
	default:
		return "unexpected"
	}
}
