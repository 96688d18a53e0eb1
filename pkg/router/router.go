package router

import (
	"fmt"
	"net/url"
	"strings"

	"aino/pkg/logger"
	"aino/pkg/normalize"
	"aino/pkg/pipeline"
)

// Segment is one compiled element of a route pattern: a literal that must
// match exactly, or a named placeholder binding one path segment.
type Segment struct {
	Literal string
	Param   string
}

// Route is an immutable matching rule compiled from a pattern string at
// application start.
type Route struct {
	Method     string
	Segments   []Segment
	Middleware pipeline.Handler
	Name       string
}

// Table is a flat, ordered route list. Declaration order is load-bearing:
// matching is first-match-wins, not best-match.
type Table []Route

// NewTable flattens route groups into a single table preserving order.
func NewTable(groups ...[]Route) Table {
	var t Table
	for _, g := range groups {
		t = append(t, g...)
	}
	return t
}

// compile splits a pattern on "/", discards empty segments, and turns
// ":name" segments into named placeholders.
func compile(pattern string) []Segment {
	var segs []Segment
	for _, s := range strings.Split(pattern, "/") {
		if s == "" {
			continue
		}
		if strings.HasPrefix(s, ":") {
			segs = append(segs, Segment{Param: s[1:]})
			continue
		}
		segs = append(segs, Segment{Literal: s})
	}
	return segs
}

func newRoute(method, pattern string, mw pipeline.Handler, name string) Route {
	return Route{Method: method, Segments: compile(pattern), Middleware: mw, Name: name}
}

// Verb builders. The Named variants additionally register a symbolic name
// for reverse URL generation.

func Get(pattern string, mw pipeline.Handler) Route    { return newRoute("get", pattern, mw, "") }
func Post(pattern string, mw pipeline.Handler) Route   { return newRoute("post", pattern, mw, "") }
func Put(pattern string, mw pipeline.Handler) Route    { return newRoute("put", pattern, mw, "") }
func Patch(pattern string, mw pipeline.Handler) Route  { return newRoute("patch", pattern, mw, "") }
func Delete(pattern string, mw pipeline.Handler) Route { return newRoute("delete", pattern, mw, "") }

func GetNamed(name, pattern string, mw pipeline.Handler) Route {
	return newRoute("get", pattern, mw, name)
}
func PostNamed(name, pattern string, mw pipeline.Handler) Route {
	return newRoute("post", pattern, mw, name)
}
func PutNamed(name, pattern string, mw pipeline.Handler) Route {
	return newRoute("put", pattern, mw, name)
}
func PatchNamed(name, pattern string, mw pipeline.Handler) Route {
	return newRoute("patch", pattern, mw, name)
}
func DeleteNamed(name, pattern string, mw pipeline.Handler) Route {
	return newRoute("delete", pattern, mw, name)
}

// Bind returns a middleware storing the route table on the context so that
// Match and the reverse-URL helpers can reach it later in the pipeline.
func Bind(t Table) pipeline.Middleware {
	return func(ctx *pipeline.Context) *pipeline.Context {
		ctx.Routes = t
		return ctx
	}
}

// Match scans the bound table in declaration order and takes the first
// route whose method and segments match. On a hit it binds PathParams and
// RouteMiddleware; on a miss it produces the 404 response and halts so no
// later route-handling middleware runs by accident.
func Match(ctx *pipeline.Context) *pipeline.Context {
	table, _ := ctx.Routes.(Table)
	for _, r := range table {
		if r.Method != ctx.Method {
			continue
		}
		params, ok := checkPath(ctx.Path, r.Segments)
		if !ok {
			continue
		}
		ctx.PathParams = params
		ctx.RouteMiddleware = r.Middleware
		return ctx
	}
	logger.Debug("route_not_found", "method", ctx.Method, "path", strings.Join(ctx.Path, "/"))
	ctx.Halt = true
	return ctx.Respond(404, "text/html", "Not found")
}

// checkPath pairs request segments with pattern segments. Lengths must be
// equal; a named segment consumes and binds unconditionally, a literal must
// match case-sensitively. Empty against empty matches.
func checkPath(request []string, pattern []Segment) (map[string]string, bool) {
	if len(request) != len(pattern) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if seg.Param != "" {
			params[seg.Param] = request[i]
			continue
		}
		if seg.Literal != request[i] {
			return nil, false
		}
	}
	return params, true
}

// Handle reduces the context over the matched route's middleware. Without a
// match it is a passthrough.
func Handle(ctx *pipeline.Context) *pipeline.Context {
	if ctx.RouteMiddleware == nil {
		return ctx
	}
	return pipeline.Reduce(ctx, ctx.RouteMiddleware)
}

// Middleware returns the standard routing chain: bind, match, params merge
// (after match so path params win), then dispatch.
func Middleware(t Table) pipeline.Chain {
	return pipeline.Chain{
		Bind(t),
		pipeline.Middleware(Match),
		pipeline.Middleware(normalize.Params),
		pipeline.Middleware(Handle),
	}
}

// PathFor builds a path for the named route, substituting named segments
// from params and appending any leftover params as a query string. A
// missing route name or a missing segment value is a wiring bug and
// panics.
func PathFor(ctx *pipeline.Context, name string, params map[string]string) string {
	table, _ := ctx.Routes.(Table)
	return pathFor(table, name, params)
}

func pathFor(table Table, name string, params map[string]string) string {
	for _, r := range table {
		if r.Name != name {
			continue
		}
		leftover := make(map[string]string, len(params))
		for k, v := range params {
			leftover[k] = v
		}
		var b strings.Builder
		for _, seg := range r.Segments {
			b.WriteByte('/')
			if seg.Param == "" {
				b.WriteString(seg.Literal)
				continue
			}
			v, ok := leftover[seg.Param]
			if !ok {
				panic(fmt.Sprintf("router: route %q missing value for :%s", name, seg.Param))
			}
			b.WriteString(url.PathEscape(v))
			delete(leftover, seg.Param)
		}
		if b.Len() == 0 {
			b.WriteByte('/')
		}
		if len(leftover) > 0 {
			q := url.Values{}
			for k, v := range leftover {
				q.Set(k, v)
			}
			b.WriteByte('?')
			b.WriteString(q.Encode())
		}
		return b.String()
	}
	panic(fmt.Sprintf("router: no route named %q", name))
}

// URLFor is PathFor prefixed with the context's base URL.
func URLFor(ctx *pipeline.Context, name string, params map[string]string) string {
	return strings.TrimSuffix(ctx.BaseURL, "/") + PathFor(ctx, name, params)
}
