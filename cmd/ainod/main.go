package main

import (
	"context"
	"fmt"
	"html"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"aino/internal/app"
	"aino/pkg/config"
	"aino/pkg/csrf"
	"aino/pkg/pipeline"
	"aino/pkg/router"
	"aino/pkg/session"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// .env must be loaded before the config merge reads AINO_* overrides.
	_ = godotenv.Load(".env")

	flags := config.ParseConfigFlags()
	eff, err := config.LoadEffective(flags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(eff, routes(), version, commit, buildDate)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// routes declares the demo application. Order matters: matching is
// first-match-wins in declaration order.
func routes() router.Table {
	return router.NewTable(
		[]router.Route{
			router.GetNamed("home", "/", pipeline.Chain{
				pipeline.Middleware(csrf.Set),
				pipeline.Middleware(session.LoadFlash),
				pipeline.Middleware(homePage),
			}),
			router.PostNamed("orders", "/orders", pipeline.Chain{
				pipeline.Middleware(csrf.Check),
				pipeline.Middleware(createOrder),
			}),
			router.GetNamed("order", "/orders/:id", pipeline.Middleware(showOrder)),
		},
	)
}

// homePage renders a form protected by the CSRF token and a visit counter
// kept in the session.
func homePage(ctx *pipeline.Context) *pipeline.Context {
	visits := 1
	if v, ok := session.Get(ctx, "visits"); ok {
		if f, ok := v.(float64); ok { // JSON numbers decode as float64
			visits = int(f) + 1
		}
	}
	session.Put(ctx, "visits", visits)

	notice := ""
	if n, ok := ctx.Flash["notice"]; ok {
		notice = "<p>" + html.EscapeString(n) + "</p>"
	}
	body := fmt.Sprintf(`<html><body>%s<p>Visit %d</p>
<form method="post" action="%s">
<input type="hidden" name="csrf_token" value="%s">
<input type="text" name="name"><button>Create order</button>
</form></body></html>`,
		notice, visits, router.PathFor(ctx, "orders", nil), csrf.Token(ctx))
	return ctx.Respond(200, "text/html", body)
}

func createOrder(ctx *pipeline.Context) *pipeline.Context {
	name, _ := ctx.Params["name"].(string)
	if name == "" {
		name = "unnamed"
	}
	session.PutFlash(ctx, "notice", "order created: "+name)
	ctx.Status = 303
	ctx.AddHeader("Location", router.PathFor(ctx, "home", nil))
	ctx.RespBody = []byte{}
	return ctx
}

func showOrder(ctx *pipeline.Context) *pipeline.Context {
	id := ctx.PathParams["id"]
	return ctx.Respond(200, "text/html",
		"<html><body><p>Order "+html.EscapeString(id)+"</p><a href=\""+
			router.URLFor(ctx, "home", nil)+"\">home</a></body></html>")
}
