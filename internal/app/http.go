package app

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"aino/pkg/banner"
	"aino/pkg/guard"
	"aino/pkg/httpx"
	"aino/pkg/logger"
	"aino/pkg/normalize"
	"aino/pkg/pipeline"
	"aino/pkg/router"
	"aino/pkg/session"
	"aino/pkg/telemetry"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.eff.Addr, a.eff.Config.Server.Frontend, a.eff.Source, verStr)
}

// Pipeline assembles the standard request pipeline around the app's route
// table: edge guard, normalization, session decode, routing with params
// merge, and a session encode that runs even after a halt.
func (a *App) Pipeline() pipeline.Chain {
	cfg := a.eff.Config
	sess := session.Config{
		Strategy:   cfg.Session.Strategy,
		Key:        cfg.SessionKey(),
		Salt:       cfg.Session.Salt,
		CookieName: cfg.Session.CookieName,
	}
	baseURL := cfg.BaseURL()
	setBase := pipeline.Middleware(func(ctx *pipeline.Context) *pipeline.Context {
		ctx.BaseURL = baseURL
		return ctx
	})

	return pipeline.Chain{
		pipeline.Middleware(telemetry.Start),
		setBase,
		normalize.Middleware(),
		guard.Middleware(a.guardConfig()),
		session.Decode(sess),
		router.Middleware(a.routes),
		pipeline.IgnoreHalt(session.Encode(sess)),
		pipeline.IgnoreHalt(telemetry.Finish),
	}
}

// Handler returns the full net/http handler: ops endpoints on a gorilla
// mux, with everything else falling through to the pipeline.
func (a *App) Handler() http.Handler {
	r := mux.NewRouter()
	a.setupOpsHandlers(r)
	r.PathPrefix("/").Handler(httpx.NetHTTPAdapter(a.Pipeline()))
	return r
}

// setupOpsHandlers registers the operational endpoints on the provided mux.
func (a *App) setupOpsHandlers(r *mux.Router) {
	r.HandleFunc("/healthz", healthzHandler).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.readyzHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	r.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))
}

// readyzHandler handles the /readyz endpoint.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	_, _ = w.Write([]byte("{\"status\":\"ok\",\"version\":\"" + ver + "\"}"))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{\"status\":\"ok\"}"))
}

// startNetHTTP starts the net/http frontend in a goroutine and returns a
// channel carrying any fatal server error.
func (a *App) startNetHTTP() <-chan error {
	a.srv = &http.Server{Addr: a.eff.Addr, Handler: a.Handler()}
	errCh := make(chan error, 1)
	go func() {
		cert := a.eff.Config.Server.TLS.CertFile
		key := a.eff.Config.Server.TLS.KeyFile
		if cert != "" && key != "" {
			errCh <- a.srv.ListenAndServeTLS(cert, key)
		} else {
			errCh <- a.srv.ListenAndServe()
		}
	}()
	logger.Info("server_listening", "addr", a.eff.Addr, "frontend", "nethttp")
	return errCh
}

// startFastHTTP starts the fasthttp frontend. Ops endpoints are bridged via
// fasthttpadaptor; application traffic goes straight through the native
// pipeline adapter.
func (a *App) startFastHTTP() <-chan error {
	opsMux := mux.NewRouter()
	a.setupOpsHandlers(opsMux)
	ops := fasthttpadaptor.NewFastHTTPHandler(opsMux)
	app := httpx.FastHTTPAdapter(a.Pipeline())

	handler := func(fctx *fasthttp.RequestCtx) {
		p := string(fctx.Path())
		if p == "/healthz" || p == "/readyz" || p == "/metrics" ||
			p == "/openapi.yaml" || strings.HasPrefix(p, "/docs/") {
			ops(fctx)
			return
		}
		app(fctx)
	}

	a.fsrv = &fasthttp.Server{Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.fsrv.ListenAndServe(a.eff.Addr)
	}()
	logger.Info("server_listening", "addr", a.eff.Addr, "frontend", "fasthttp")
	return errCh
}
