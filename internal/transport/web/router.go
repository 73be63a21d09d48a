package web

import (
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/EgorLis/my-qrcodes/internal/transport/web/mw"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/v1/health"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/v1/qrcode"
)

func newRouter(hh *health.Handler, qh *qrcode.Handler, g prometheus.Gatherer, staticRoute, staticDir string, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /v1/healthz", hh.Liveness)
	mux.HandleFunc("GET /v1/readyz", hh.Readiness)

	// qrcode: метод проверяет сам хендлер, чтобы 405 был в конверте
	mux.HandleFunc("/v1/qrcode", qh.Get)

	// metrics
	if g != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}

	// статика для ссылок локального паблишера
	if route := normalizeRoute(staticRoute); route != "" && staticDir != "" {
		mux.Handle("GET "+route, http.StripPrefix(route, pngOnly(http.FileServer(http.Dir(staticDir)))))
	}

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

// "/qr" -> "/qr/"
func normalizeRoute(r string) string {
	r = strings.TrimSpace(r)
	if r == "" || r == "/" {
		return ""
	}
	if !strings.HasPrefix(r, "/") {
		r = "/" + r
	}
	if !strings.HasSuffix(r, "/") {
		r += "/"
	}
	return r
}

// pngOnly: в каталоге лежат ещё .dat записи кеша и .tmp-* файлы на лету, их не отдаём
func pngOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Base(r.URL.Path)
		if strings.Contains(r.URL.Path, "/") || strings.HasPrefix(name, ".") || path.Ext(name) != ".png" {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
