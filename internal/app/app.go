// Package app wires the middleware pipeline, the ops surface and the host
// HTTP frontends into a runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"aino/pkg/config"
	"aino/pkg/guard"
	"aino/pkg/logger"
	"aino/pkg/router"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	routes    router.Table
	version   string
	commit    string
	buildDate string

	srv  *http.Server
	fsrv *fasthttp.Server
}

// New validates the effective config and prepares an App serving the given
// route table. It does not start listening; call Run for that.
func New(eff config.EffectiveConfigResult, routes router.Table, version, commit, buildDate string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}
	logger.InitWithLevel(eff.Config.Logging.Level, eff.Config.Logging.Format)

	return &App{eff: eff, routes: routes, version: version, commit: commit, buildDate: buildDate}, nil
}

// Run starts the configured frontend and blocks until ctx is canceled or a
// fatal server error occurs. Cancellation triggers a graceful shutdown.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	var errCh <-chan error
	switch a.eff.Config.Server.Frontend {
	case "", "nethttp":
		errCh = a.startNetHTTP()
	case "fasthttp":
		errCh = a.startFastHTTP()
	default:
		return fmt.Errorf("unknown server frontend: %q", a.eff.Config.Server.Frontend)
	}

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (a *App) shutdown() {
	logger.Info("server_shutting_down")
	if a.srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(sctx)
	}
	if a.fsrv != nil {
		_ = a.fsrv.Shutdown()
	}
}

func (a *App) guardConfig() guard.Config {
	sec := a.eff.Config.Security
	return guard.Config{
		AllowedOrigins: append([]string{}, sec.CORS.AllowedOrigins...),
		RPS:            sec.RateLimit.RPS,
		Burst:          sec.RateLimit.Burst,
	}
}
