package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/EgorLis/my-qrcodes/internal/config"
	"github.com/EgorLis/my-qrcodes/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	core   *Core
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	core, err := NewCore(ctx, cfg, config.Overrides{}, base)
	if err != nil {
		return nil, err
	}

	base.Println("init Server")
	server := web.New(sub(base, "server"), cfg, web.Deps{
		QRCodes:   core.Service,
		Checks:    core.Checks,
		Gatherer:  core.Registry,
		StaticDir: core.Resolved.ArtifactDir,
	})
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		core:   core,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	defer a.core.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run)
	g.Go(func() error {
		<-gctx.Done()
		a.log.Println("stop application...")

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.server.Close(stopCtx)
		return nil
	})
	return g.Wait()
}
