package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"aino/pkg/pipeline"
)

var signedCfg = Config{
	Strategy: "signed",
	Key:      []byte("test-secret"),
	Salt:     "test-salt",
}

var encryptedCfg = Config{
	Strategy: "encrypted",
	Key:      []byte("0123456789abcdef0123456789abcdef"), // 32 bytes
}

func freshCtx() *pipeline.Context {
	ctx := pipeline.NewContext(&pipeline.Request{})
	ctx.Cookies = map[string]string{}
	return ctx
}

// transplant moves Set-Cookie headers from an encoded response onto a new
// request context, simulating the browser sending them back.
func transplant(t *testing.T, from *pipeline.Context) *pipeline.Context {
	t.Helper()
	ctx := freshCtx()
	for _, h := range from.RespHeaders {
		if h.Name != "Set-Cookie" {
			continue
		}
		val, _, _ := strings.Cut(h.Value, ";")
		name, v, ok := strings.Cut(val, "=")
		require.True(t, ok, "malformed Set-Cookie: %q", h.Value)
		ctx.Cookies[name] = v
	}
	return ctx
}

func roundTrip(t *testing.T, cfg Config) {
	t.Helper()
	ctx := freshCtx()
	ctx = Decode(cfg)(ctx)
	require.True(t, ctx.SessionDecoded)
	require.Empty(t, ctx.Session)

	Put(ctx, "user", "ada")
	Put(ctx, "count", 3)
	require.True(t, ctx.SessionUpdated)
	ctx = Encode(cfg)(ctx)

	back := Decode(cfg)(transplant(t, ctx))
	require.Equal(t, "ada", back.Session["user"])
	require.EqualValues(t, 3, back.Session["count"])
	require.Contains(t, back.Session, "t", "encode must stamp a timestamp")
}

func TestSignedRoundTrip(t *testing.T)    { roundTrip(t, signedCfg) }
func TestEncryptedRoundTrip(t *testing.T) { roundTrip(t, encryptedCfg) }

func TestEncodeNoopWithoutUpdate(t *testing.T) {
	for _, cfg := range []Config{signedCfg, encryptedCfg} {
		ctx := Decode(cfg)(freshCtx())
		ctx = Encode(cfg)(ctx)
		require.Empty(t, ctx.RespHeaders, "%s: untouched session must not set cookies", cfg.Strategy)
	}
}

func encodedCookies(t *testing.T, cfg Config) map[string]string {
	t.Helper()
	ctx := Decode(cfg)(freshCtx())
	Put(ctx, "user", "ada")
	ctx = Encode(cfg)(ctx)
	return transplant(t, ctx).Cookies
}

func TestSignedTamperedSignatureYieldsEmpty(t *testing.T) {
	cookies := encodedCookies(t, signedCfg)
	sig := cookies[DefaultCookieName+"_signature"]
	cookies[DefaultCookieName+"_signature"] = flipByte(sig)

	ctx := freshCtx()
	ctx.Cookies = cookies
	ctx = Decode(signedCfg)(ctx)
	require.Empty(t, ctx.Session)
}

func TestSignedTamperedPayloadYieldsEmpty(t *testing.T) {
	cookies := encodedCookies(t, signedCfg)
	cookies[DefaultCookieName] = flipByte(cookies[DefaultCookieName])

	ctx := freshCtx()
	ctx.Cookies = cookies
	ctx = Decode(signedCfg)(ctx)
	require.Empty(t, ctx.Session)
}

func TestSignedWrongKeyYieldsEmpty(t *testing.T) {
	cookies := encodedCookies(t, signedCfg)
	other := signedCfg
	other.Key = []byte("other-secret")

	ctx := freshCtx()
	ctx.Cookies = cookies
	ctx = Decode(other)(ctx)
	require.Empty(t, ctx.Session)
}

func TestEncryptedTamperRejection(t *testing.T) {
	cookies := encodedCookies(t, encryptedCfg)
	val := cookies[DefaultCookieName]
	parts := strings.Split(val, "--")
	require.Len(t, parts, 3)

	cases := map[string]string{
		"ciphertext": flipByte(parts[0]) + "--" + parts[1] + "--" + parts[2],
		"iv":         parts[0] + "--" + flipByte(parts[1]) + "--" + parts[2],
		"tag":        parts[0] + "--" + parts[1] + "--" + flipByte(parts[2]),
		"delimiters": parts[0] + "--" + parts[1],
		"garbage":    "not a session cookie",
	}
	for name, tampered := range cases {
		ctx := freshCtx()
		ctx.Cookies = map[string]string{DefaultCookieName: tampered}
		ctx = Decode(encryptedCfg)(ctx)
		require.Empty(t, ctx.Session, "tampered %s must decode to empty", name)
		require.True(t, ctx.SessionDecoded)
	}
}

// flipByte changes one character of a base64-ish string to another valid
// character, guaranteeing a byte-level difference.
func flipByte(s string) string {
	if s == "" {
		return "x"
	}
	b := []byte(s)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	return string(b)
}

func TestHelpersPanicBeforeDecode(t *testing.T) {
	ctx := freshCtx()
	require.Panics(t, func() { Put(ctx, "k", "v") })
	require.Panics(t, func() { Delete(ctx, "k") })
	require.Panics(t, func() { Clear(ctx) })
	require.Panics(t, func() { Get(ctx, "k") })
}

func TestDeleteAndClear(t *testing.T) {
	ctx := Decode(signedCfg)(freshCtx())
	Put(ctx, "a", "1")
	Put(ctx, "b", "2")
	Delete(ctx, "a")
	_, ok := Get(ctx, "a")
	require.False(t, ok)
	Clear(ctx)
	require.Empty(t, ctx.Session)
	require.True(t, ctx.SessionUpdated)
}

func TestUnknownStrategyPanics(t *testing.T) {
	require.Panics(t, func() { Decode(Config{Strategy: "carrier-pigeon"}) })
}

func TestFlashReadOnce(t *testing.T) {
	ctx := Decode(signedCfg)(freshCtx())
	PutFlash(ctx, "notice", "saved")

	ctx = LoadFlash(ctx)
	require.Equal(t, "saved", ctx.Flash["notice"])
	_, ok := ctx.Session[flashKey]
	require.False(t, ok, "flash must be deleted from session once read")

	// a second load sees nothing
	ctx.Flash = nil
	ctx = LoadFlash(ctx)
	require.Empty(t, ctx.Flash)
}

func TestFlashSurvivesCookieRoundTrip(t *testing.T) {
	ctx := Decode(signedCfg)(freshCtx())
	PutFlash(ctx, "notice", "order created")
	ctx = Encode(signedCfg)(ctx)

	back := Decode(signedCfg)(transplant(t, ctx))
	back = LoadFlash(back)
	require.Equal(t, "order created", back.Flash["notice"])
}

func TestPerEncodeValuesDiffer(t *testing.T) {
	// random IV (encrypted) and the t stamp make every encode distinct
	a := encodedCookies(t, encryptedCfg)[DefaultCookieName]
	b := encodedCookies(t, encryptedCfg)[DefaultCookieName]
	require.NotEqual(t, a, b)
}
