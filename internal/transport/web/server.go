package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/EgorLis/my-qrcodes/internal/config"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/v1/health"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/v1/qrcode"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, d Deps) *Server {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	qrLog := log.New(logger.Writer(), logger.Prefix()+"[qrcode] ", logger.Flags())

	healthHandler := &health.Handler{Log: healthLog, Checks: d.Checks}
	qrHandler := &qrcode.Handler{Log: qrLog, Service: d.QRCodes}

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           newRouter(healthHandler, qrHandler, d.Gatherer, cfg.StaticRoute, d.StaticDir, logger),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second, // кодирование + загрузка в S3 на промахе
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Handler() http.Handler { return ws.server.Handler }

// Run блокируется до Close; ErrServerClosed ошибкой не считается
func (ws *Server) Run() error {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ws.log.Printf("error: %v", err)
		return err
	}
	return nil
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
