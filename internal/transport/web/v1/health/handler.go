package health

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/logx"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/mw"
	v1 "github.com/EgorLis/my-qrcodes/internal/transport/web/v1"
)

type Handler struct {
	Log *log.Logger
	// Бэкенды для readiness: имя -> пингер (кеш, S3 и т.п.)
	Checks map[string]domain.Pinger
	// Timeout на все пинги разом, по умолчанию 5s
	Timeout time.Duration
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от кеша и хранилища)
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Router       /v1/healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	const op = "health.liveness"
	reqID := mw.RequestIDFromCtx(r.Context())

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteOKData(w, r, "ok")
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Проверка готовности сервиса (пинг бэкенда кеша и S3, если они есть)
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.APIEnvelope{data=string}
// @Failure      503  {object}  domain.APIEnvelope
// @Router       /v1/readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for name, p := range h.Checks {
		g.Go(func() error {
			if err := p.Ping(gctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logx.Error(h.Log, reqID, op, "ping failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnavailable)
		return
	}

	logx.Info(h.Log, reqID, op, "ready", "checks", len(h.Checks))
	v1.WriteOKData(w, r, "ready")
}
