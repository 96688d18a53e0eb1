// Package csrf implements session-backed CSRF protection. Set runs on
// page-rendering routes to guarantee a token exists; Check runs on
// state-changing routes, strictly after body parsing and session decode.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"io"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
	"aino/pkg/session"
)

// TokenKey is the session entry holding the CSRF token.
const TokenKey = "csrf_token"

// ParamName is the request parameter carrying the submitted token.
const ParamName = "csrf_token"

// Set ensures the session carries a CSRF token, generating one if absent.
// Calling it again leaves an existing token untouched.
func Set(ctx *pipeline.Context) *pipeline.Context {
	if _, ok := session.Get(ctx, TokenKey); ok {
		return ctx
	}
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		panic("csrf: cannot read random bytes: " + err.Error())
	}
	session.Put(ctx, TokenKey, base64.RawURLEncoding.EncodeToString(buf))
	return ctx
}

// Check validates the submitted token against the session token for unsafe
// methods. Any failure — no session token, no submitted token, mismatch —
// halts with 403. GETs always pass.
func Check(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Method == "get" {
		return ctx
	}
	stored, _ := sessionToken(ctx)
	supplied := suppliedToken(ctx)
	if stored == "" || supplied == "" || !hmac.Equal([]byte(stored), []byte(supplied)) {
		logger.Warn("csrf_rejected", "method", ctx.Method, "has_stored", stored != "", "has_supplied", supplied != "")
		ctx.Halt = true
		return ctx.Respond(403, "text/plain", "CSRF token doesn't match")
	}
	return ctx
}

// Token returns the current session token for embedding into forms. A
// missing session or token is a wiring bug: rendering a form with an empty
// token would silently disable the protection, so this panics instead.
func Token(ctx *pipeline.Context) string {
	tok, ok := sessionToken(ctx)
	if !ok {
		panic("csrf: no token in session; run csrf.Set first")
	}
	return tok
}

func sessionToken(ctx *pipeline.Context) (string, bool) {
	if !ctx.SessionDecoded {
		return "", false
	}
	v, ok := ctx.Session[TokenKey]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// suppliedToken prefers the merged params map and falls back to the parsed
// body, so Check works whether or not the params merge ran.
func suppliedToken(ctx *pipeline.Context) string {
	if s, ok := ctx.Params[ParamName].(string); ok {
		return s
	}
	if body, ok := ctx.Body.(map[string]interface{}); ok {
		if s, ok := body[ParamName].(string); ok {
			return s
		}
	}
	return ""
}
