package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"time"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
)

// encryptedStorage packs the session as a single AEAD-protected cookie:
// base64(ciphertext) -- base64(iv) -- base64(tag), AES-256-GCM with a
// 16-byte IV and a fixed associated-data string bound into the tag. Any
// tamper or format damage decodes to an empty session.
type encryptedStorage struct{}

const (
	encDelim   = "--"
	ivSize     = 16
	tagSize    = 16
	sessionAAD = "aino session"
)

func aead(cfg Config) (cipher.AEAD, error) {
	block, err := aes.NewCipher(cfg.Key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivSize)
}

func (encryptedStorage) Decode(cfg Config, ctx *pipeline.Context) *pipeline.Context {
	ctx.Session = map[string]interface{}{}
	ctx.SessionDecoded = true

	raw, ok := ctx.Cookies[cfg.cookieName()]
	if !ok {
		return ctx
	}
	parts := strings.Split(raw, encDelim)
	if len(parts) != 3 {
		logger.Debug("session_cookie_malformed")
		return ctx
	}
	ct, err1 := base64.StdEncoding.DecodeString(parts[0])
	iv, err2 := base64.StdEncoding.DecodeString(parts[1])
	tag, err3 := base64.StdEncoding.DecodeString(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || len(iv) != ivSize || len(tag) != tagSize {
		logger.Debug("session_cookie_malformed")
		return ctx
	}
	gcm, err := aead(cfg)
	if err != nil {
		logger.Error("session_key_invalid", "error", err)
		return ctx
	}
	payload, err := gcm.Open(nil, iv, append(ct, tag...), []byte(sessionAAD))
	if err != nil {
		logger.Debug("session_decrypt_failed")
		return ctx
	}
	var s map[string]interface{}
	if err := json.Unmarshal(payload, &s); err != nil || s == nil {
		logger.Debug("session_payload_malformed")
		return ctx
	}
	ctx.Session = s
	return ctx
}

func (encryptedStorage) Encode(cfg Config, ctx *pipeline.Context) *pipeline.Context {
	if !ctx.SessionUpdated {
		return ctx
	}
	ctx.Session["t"] = time.Now().UnixMilli()
	payload, err := json.Marshal(ctx.Session)
	if err != nil {
		logger.Error("session_encode_failed", "error", err)
		return ctx
	}
	gcm, err := aead(cfg)
	if err != nil {
		logger.Error("session_key_invalid", "error", err)
		return ctx
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		logger.Error("session_iv_failed", "error", err)
		return ctx
	}
	sealed := gcm.Seal(nil, iv, payload, []byte(sessionAAD))
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	val := base64.StdEncoding.EncodeToString(ct) + encDelim +
		base64.StdEncoding.EncodeToString(iv) + encDelim +
		base64.StdEncoding.EncodeToString(tag)
	ctx.AddHeader("Set-Cookie", cfg.cookieName()+"="+val+"; HttpOnly; Path=/")
	return ctx
}
