package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{fmt.Errorf("%w: size", domain.ErrInvalidRequest), http.StatusBadRequest, domain.ErrCodeInvalidRequest},
		{domain.ErrMethodNotAllowed, http.StatusMethodNotAllowed, domain.ErrCodeMethodNotAllowed},
		{fmt.Errorf("x: %w", domain.ErrConfiguration), http.StatusInternalServerError, domain.ErrCodeConfiguration},
		{fmt.Errorf("x: %w", domain.ErrStorage), http.StatusInternalServerError, domain.ErrCodeStorage},
		{fmt.Errorf("x: %w", domain.ErrEncode), http.StatusInternalServerError, domain.ErrCodeEncode},
		{fmt.Errorf("x: %w", domain.ErrPublish), http.StatusInternalServerError, domain.ErrCodePublish},
		{domain.ErrUnavailable, http.StatusServiceUnavailable, domain.ErrCodeUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, domain.ErrCodeUnexpected},
	}
	for _, c := range cases {
		status, env := MapDomainError(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		require.NotNil(t, env.Error)
		assert.Equal(t, c.code, env.Error.Code, c.err.Error())
	}
}

func TestWriteEnvelopeHeadHasNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOKData(rec, httptest.NewRequest(http.MethodHead, "/", nil), "ok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteOKData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOKData(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{"width": 100})

	var body map[string]map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 100, body["data"]["width"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
