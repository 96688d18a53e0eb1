package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"time"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
)

// signedStorage keeps the session JSON in one cookie and an HMAC-SHA256
// signature over payload+salt in a companion cookie. Tampering with either
// yields an empty session, never an error.
type signedStorage struct{}

func sign(cfg Config, payload []byte) string {
	mac := hmac.New(sha256.New, cfg.Key)
	mac.Write(payload)
	mac.Write([]byte(cfg.Salt))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (signedStorage) Decode(cfg Config, ctx *pipeline.Context) *pipeline.Context {
	ctx.Session = map[string]interface{}{}
	ctx.SessionDecoded = true

	raw, ok := ctx.Cookies[cfg.cookieName()]
	if !ok {
		return ctx
	}
	sig, ok := ctx.Cookies[cfg.cookieName()+"_signature"]
	if !ok {
		return ctx
	}
	payload := raw
	if un, err := url.QueryUnescape(raw); err == nil {
		payload = un
	}
	want, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		logger.Debug("session_signature_malformed")
		return ctx
	}
	mac := hmac.New(sha256.New, cfg.Key)
	mac.Write([]byte(payload))
	mac.Write([]byte(cfg.Salt))
	if !hmac.Equal(mac.Sum(nil), want) {
		logger.Debug("session_signature_mismatch")
		return ctx
	}
	var s map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &s); err != nil || s == nil {
		logger.Debug("session_payload_malformed")
		return ctx
	}
	ctx.Session = s
	return ctx
}

func (signedStorage) Encode(cfg Config, ctx *pipeline.Context) *pipeline.Context {
	if !ctx.SessionUpdated {
		return ctx
	}
	// stamp encode time for debugging; also makes every encode distinct
	ctx.Session["t"] = time.Now().UnixMilli()
	payload, err := json.Marshal(ctx.Session)
	if err != nil {
		logger.Error("session_encode_failed", "error", err)
		return ctx
	}
	name := cfg.cookieName()
	ctx.AddHeader("Set-Cookie", name+"="+url.QueryEscape(string(payload))+"; HttpOnly; Path=/")
	ctx.AddHeader("Set-Cookie", name+"_signature="+sign(cfg, payload)+"; HttpOnly; Path=/")
	return ctx
}
