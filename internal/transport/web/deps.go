package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/transport/web/v1/qrcode"
)

type Deps struct {
	QRCodes qrcode.Service
	// Бэкенды для /v1/readyz
	Checks   map[string]domain.Pinger
	Gatherer prometheus.Gatherer
	// Каталог картинок для статики (QR_STATIC_ROUTE), пусто — не раздаём
	StaticDir string
}
