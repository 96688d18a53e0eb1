package normalize

import (
	"encoding/json"
	"strings"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
)

// verbs recognized by Method; anything else is carried through lower-cased.
var knownVerbs = map[string]struct{}{
	"get": {}, "post": {}, "put": {}, "patch": {}, "delete": {},
	"head": {}, "options": {},
}

// bodyVerbs are the methods for which Body parsing runs at all.
var bodyVerbs = map[string]struct{}{
	"post": {}, "put": {}, "patch": {}, "delete": {},
}

// Middleware returns the full normalizer chain in its required order.
// AdjustMethod must follow Body (it reads the parsed form), and Params is
// deliberately absent: it runs after route matching so path params can take
// precedence (see pkg/router).
func Middleware() pipeline.Chain {
	return pipeline.Chain{
		pipeline.Middleware(Method),
		pipeline.Middleware(Path),
		pipeline.Middleware(Headers),
		pipeline.Middleware(Query),
		pipeline.Middleware(Body),
		pipeline.Middleware(Cookies),
		pipeline.Middleware(AdjustMethod),
	}
}

// Method lower-cases the transport verb into Context.Method.
func Method(ctx *pipeline.Context) *pipeline.Context {
	m := strings.ToLower(ctx.Request.Method)
	if _, ok := knownVerbs[m]; !ok {
		logger.Debug("unrecognized_method", "method", m)
	}
	ctx.Method = m
	return ctx
}

// Path splits the request path into segments, dropping empty ones, so
// "/orders/42/" becomes ["orders", "42"].
func Path(ctx *pipeline.Context) *pipeline.Context {
	ctx.Path = SplitPath(ctx.Request.Path)
	return ctx
}

// SplitPath splits p on "/" discarding empty segments.
func SplitPath(p string) []string {
	out := []string{}
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Headers lower-cases header names for case-insensitive lookup; values are
// preserved as received, including multiplicity.
func Headers(ctx *pipeline.Context) *pipeline.Context {
	h := make(map[string][]string, len(ctx.Request.Headers))
	for _, p := range ctx.Request.Headers {
		k := strings.ToLower(p.Name)
		h[k] = append(h[k], p.Value)
	}
	ctx.Headers = h
	return ctx
}

// Query parses the raw query string with the bracket key-path rules.
func Query(ctx *pipeline.Context) *pipeline.Context {
	ctx.Query = ParsePairs(ctx.Request.RawQuery)
	return ctx
}

// Body decodes the request body for body-carrying methods, dispatching on
// Content-Type. Unknown content types and malformed JSON leave Body unset;
// a bad body is never fatal here.
func Body(ctx *pipeline.Context) *pipeline.Context {
	if _, ok := bodyVerbs[ctx.Method]; !ok {
		return ctx
	}
	if len(ctx.Request.Body) == 0 {
		return ctx
	}
	ct := contentType(ctx)
	switch {
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		ctx.Body = ParsePairs(string(ctx.Request.Body))
	case strings.HasPrefix(ct, "application/json"):
		var v interface{}
		if err := json.Unmarshal(ctx.Request.Body, &v); err != nil {
			logger.Warn("body_parse_failed", "content_type", ct, "error", err)
			return ctx
		}
		ctx.Body = v
	}
	return ctx
}

func contentType(ctx *pipeline.Context) string {
	if vs := ctx.Headers["content-type"]; len(vs) > 0 {
		return strings.ToLower(vs[0])
	}
	return ""
}

// Cookies parses the Cookie header into name -> value. The first "=" in an
// entry separates name from value, so values containing "=" survive intact.
func Cookies(ctx *pipeline.Context) *pipeline.Context {
	out := map[string]string{}
	for _, raw := range ctx.Headers["cookie"] {
		for _, part := range strings.Split(raw, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, val, _ := strings.Cut(part, "=")
			out[name] = val
		}
	}
	ctx.Cookies = out
	return ctx
}

// AdjustMethod applies the "_method" form-field override so HTML forms can
// simulate delete/patch/put. Only a post with one of those three values is
// rewritten; everything else passes through untouched.
func AdjustMethod(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Method != "post" {
		return ctx
	}
	body, ok := ctx.Body.(map[string]interface{})
	if !ok {
		return ctx
	}
	m, _ := body["_method"].(string)
	switch m {
	case "delete", "patch", "put":
		ctx.Method = m
	}
	return ctx
}

// Params merges path params, query params and parsed body into one flat
// string-keyed map. Precedence is path > query > body, so the fold applies
// body first and path params last. Non-map sources (a JSON array body, or
// nothing parsed at all) are skipped.
func Params(ctx *pipeline.Context) *pipeline.Context {
	merged := map[string]interface{}{}
	if body, ok := ctx.Body.(map[string]interface{}); ok {
		for k, v := range body {
			merged[k] = v
		}
	}
	for k, v := range ctx.Query {
		merged[k] = v
	}
	for k, v := range ctx.PathParams {
		merged[k] = v
	}
	ctx.Params = merged
	return ctx
}
