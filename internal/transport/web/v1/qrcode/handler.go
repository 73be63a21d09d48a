package qrcode

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/logx"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-qrcodes/internal/transport/web/v1"
)

type Service interface {
	GetOrCreate(ctx context.Context, req domain.Request) (domain.ArtifactRecord, error)
}

type Handler struct {
	Log     *log.Logger
	Service Service
}

type qrcodeResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Get godoc
// @Summary     Get or create QR code image
// @Description Возвращает ссылку на PNG с QR-кодом. Повторный запрос с теми же value/ecc/size отдаётся из кеша.
// @Tags        qrcode
// @Produce     json
// @Param       value  query string true  "Кодируемый текст"
// @Param       ecc    query string false "Уровень коррекции: L, M, Q, H" default(L)
// @Param       size   query int    false "Размер модуля в пикселях, 1..10" default(4)
// @Param       width  query int    false "Ширина для вывода (картинку не меняет)"
// @Param       height query int    false "Высота для вывода (картинку не меняет)"
// @Success     200 {object} domain.APIEnvelope{data=qrcodeResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     405 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /v1/qrcode [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "qrcode.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		logx.Error(h.Log, reqID, op, "method not allowed", domain.ErrMethodNotAllowed, "method", r.Method)
		w.Header().Set("Allow", "GET, HEAD")
		v1.WriteDomainError(w, r, domain.ErrMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	req, err := parseRequest(q)
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad params", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	width, err := optionalDim(q, "width")
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad params", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	height, err := optionalDim(q, "height")
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad params", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	rec, err := h.Service.GetOrCreate(r.Context(), req)
	if err != nil {
		logx.Error(h.Log, reqID, op, "get or create failed", err, "kind", domain.ErrorKind(err))
		v1.WriteDomainError(w, r, err)
		return
	}

	resp := qrcodeResponse{URL: rec.URL, Width: rec.Width, Height: rec.Height}
	// каждое поле переопределяется отдельно
	if width > 0 {
		resp.Width = width
	}
	if height > 0 {
		resp.Height = height
	}

	logx.Info(h.Log, reqID, op, "ok", "url", resp.URL, "width", resp.Width, "height", resp.Height)
	v1.WriteOKData(w, r, resp)
}

// parseRequest: ecc по умолчанию L, size по умолчанию 4
func parseRequest(q url.Values) (domain.Request, error) {
	ecc, err := domain.ParseECLevel(q.Get("ecc"))
	if err != nil {
		return domain.Request{}, err
	}

	size := domain.DefaultModuleSize
	if raw := q.Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			return domain.Request{}, fmt.Errorf("%w: size should be an integer (got %q)", domain.ErrInvalidRequest, raw)
		}
	}

	return domain.NewRequest(q.Get("value"), ecc, size)
}

// optionalDim: 0 — не задано
func optionalDim(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s should be a positive integer (got %q)", domain.ErrInvalidRequest, name, raw)
	}
	return n, nil
}
