// Package session stores per-request session state in client cookies.
// There is no server-side session store: the cookie is the store, decoded
// once per request by the configured Storage strategy and re-encoded into
// Set-Cookie headers only when something changed.
package session

import (
	"fmt"

	"aino/pkg/pipeline"
)

// DefaultCookieName is used when Config.CookieName is empty.
const DefaultCookieName = "_aino_session"

// Config selects and parameterizes the active storage strategy. It is fixed
// at app wiring time and never switched per-request.
type Config struct {
	Strategy   string // "signed" or "encrypted"
	Key        []byte // HMAC secret, or 32-byte AES-256-GCM key
	Salt       string // signed variant only, appended to the signed payload
	CookieName string
}

func (c Config) cookieName() string {
	if c.CookieName == "" {
		return DefaultCookieName
	}
	return c.CookieName
}

// Storage translates session state to and from its cookie representation.
// Decode must set the session on the context; Encode must append Set-Cookie
// headers when the session was updated.
type Storage interface {
	Decode(cfg Config, ctx *pipeline.Context) *pipeline.Context
	Encode(cfg Config, ctx *pipeline.Context) *pipeline.Context
}

func storageFor(cfg Config) Storage {
	switch cfg.Strategy {
	case "signed":
		return signedStorage{}
	case "encrypted":
		return encryptedStorage{}
	}
	panic(fmt.Sprintf("session: unknown storage strategy %q", cfg.Strategy))
}

// Decode returns a middleware that decodes the session from request cookies
// using the configured strategy. Must run after cookie normalization.
func Decode(cfg Config) pipeline.Middleware {
	st := storageFor(cfg)
	return func(ctx *pipeline.Context) *pipeline.Context {
		ctx.SessionConfig = cfg
		return st.Decode(cfg, ctx)
	}
}

// Encode returns a middleware that re-encodes the session into Set-Cookie
// response headers. It is a no-op unless the session was updated. Wire it
// with pipeline.IgnoreHalt so halted requests still persist their session.
func Encode(cfg Config) pipeline.Middleware {
	st := storageFor(cfg)
	return func(ctx *pipeline.Context) *pipeline.Context {
		return st.Encode(cfg, ctx)
	}
}

// mustDecoded guards the helper functions: using them before Decode ran is
// a wiring bug, not a runtime condition.
func mustDecoded(ctx *pipeline.Context) {
	if !ctx.SessionDecoded {
		panic("session: used before decode ran")
	}
}

// Get returns the session value under key.
func Get(ctx *pipeline.Context, key string) (interface{}, bool) {
	mustDecoded(ctx)
	v, ok := ctx.Session[key]
	return v, ok
}

// Put stores value under key and marks the session dirty.
func Put(ctx *pipeline.Context, key string, value interface{}) {
	mustDecoded(ctx)
	ctx.Session[key] = value
	ctx.SessionUpdated = true
}

// Delete removes key and marks the session dirty.
func Delete(ctx *pipeline.Context, key string) {
	mustDecoded(ctx)
	delete(ctx.Session, key)
	ctx.SessionUpdated = true
}

// Clear empties the session and marks it dirty.
func Clear(ctx *pipeline.Context) {
	mustDecoded(ctx)
	ctx.Session = map[string]interface{}{}
	ctx.SessionUpdated = true
}
