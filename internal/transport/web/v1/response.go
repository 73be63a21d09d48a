package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/mw"
)

// MapDomainError решает HTTP-статус + error.code/text для конверта
func MapDomainError(err error) (httpStatus int, env domain.APIEnvelope) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		// текст валидации безопасен для клиента
		return http.StatusBadRequest, domain.Fail(domain.ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, domain.Fail(domain.ErrCodeMethodNotAllowed, "method not allowed")
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeConfiguration, "configuration")
	case errors.Is(err, domain.ErrStorage):
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeStorage, "storage")
	case errors.Is(err, domain.ErrEncode):
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeEncode, "encode")
	case errors.Is(err, domain.ErrPublish):
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodePublish, "publish")
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, domain.Fail(domain.ErrCodeUnavailable, "unavailable")
	default:
		// Таймауты/отмены — как 500
		return http.StatusInternalServerError, domain.Fail(domain.ErrCodeUnexpected, "unexpected")
	}
}

// WriteEnvelope пишет конверт; для HEAD — без тела
func WriteEnvelope(w http.ResponseWriter, r *http.Request, status int, env domain.APIEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(mw.HeaderRequestID, mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(env)
}

// Шорткат успеха
func WriteOKData(w http.ResponseWriter, r *http.Request, data any) {
	WriteEnvelope(w, r, http.StatusOK, domain.OkData(data))
}

// Шорткат ошибки
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := MapDomainError(err)
	WriteEnvelope(w, r, status, env)
}
