package mw

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// Logging — одна строка на запрос: статус, размер, длительность.
// 5xx пишем с lvl=error; успешные пробы /v1/healthz и /metrics не пишем вовсе.
func Logging(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromCtx(r.Context())
			start := time.Now()

			mw := &metaWriter{ResponseWriter: w}

			next.ServeHTTP(mw, r)

			status := mw.status
			if status == 0 {
				status = http.StatusOK
			}
			if status < 400 && isProbe(r.URL.Path) {
				return
			}
			lvl := "info"
			if status >= 500 {
				lvl = "error"
			}
			l.Printf("lvl=%s req_id=%s method=%s path=%q status=%d size=%d duration_ms=%d",
				lvl, reqID, r.Method, r.URL.Path, status, mw.size, time.Since(start).Milliseconds())
		})
	}
}

func isProbe(path string) bool {
	return path == "/v1/healthz" || strings.HasPrefix(path, "/metrics")
}
