package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	data := `
server:
  address: 127.0.0.1
  port: 9090
  frontend: fasthttp
site:
  scheme: https
  host: example.test
session:
  strategy: encrypted
  key: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
security:
  rate_limit:
    rps: 2.5
    burst: 5
logging:
  level: debug
`
	if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %q", cfg.Addr())
	}
	if cfg.Server.Frontend != "fasthttp" {
		t.Fatalf("unexpected frontend: %q", cfg.Server.Frontend)
	}
	if cfg.Session.Strategy != "encrypted" {
		t.Fatalf("unexpected strategy: %q", cfg.Session.Strategy)
	}
	if n := len(cfg.SessionKey()); n != 32 {
		t.Fatalf("hex key must decode to 32 bytes, got %d", n)
	}
	if cfg.Security.RateLimit.RPS != 2.5 || cfg.Security.RateLimit.Burst != 5 {
		t.Fatalf("unexpected rate limit: %+v", cfg.Security.RateLimit)
	}
}

func TestSessionKeyRawFallback(t *testing.T) {
	cfg := &Config{}
	cfg.Session.KeyHex = "not hex at all!"
	if string(cfg.SessionKey()) != "not hex at all!" {
		t.Fatalf("non-hex key must be used as raw bytes")
	}
}

func TestSessionKeyHexDecodeRule(t *testing.T) {
	cfg := &Config{}

	cfg.Session.KeyHex = "deadbeef"
	if string(cfg.SessionKey()) != "deadbeef" {
		t.Fatalf("short hex-looking key must keep its literal value")
	}

	cfg.Session.KeyHex = "this passphrase is not hex but it is long"
	if string(cfg.SessionKey()) != "this passphrase is not hex but it is long" {
		t.Fatalf("long non-hex key must be used as raw bytes")
	}

	cfg.Session.KeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	if n := len(cfg.SessionKey()); n != 32 {
		t.Fatalf("64-char hex key must decode to 32 bytes, got %d", n)
	}
}

func TestDotenvValuesReachEffectiveConfig(t *testing.T) {
	t.Setenv("AINO_ADDR", "placeholder") // register restore, then clear
	os.Unsetenv("AINO_ADDR")

	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("AINO_ADDR=127.0.0.1:6060\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := godotenv.Load(p); err != nil {
		t.Fatalf("load .env: %v", err)
	}

	eff, err := LoadEffective(Flags{})
	if err != nil {
		t.Fatalf("LoadEffective: %v", err)
	}
	if eff.Addr != "127.0.0.1:6060" {
		t.Fatalf("dotenv override lost, addr = %q", eff.Addr)
	}
	if eff.Source != "env" {
		t.Fatalf("unexpected source: %q", eff.Source)
	}
}

func TestBaseURL(t *testing.T) {
	cases := []struct {
		scheme string
		host   string
		port   int
		want   string
	}{
		{"", "", 0, "http://localhost"},
		{"http", "example.test", 80, "http://example.test"},
		{"https", "example.test", 443, "https://example.test"},
		{"https", "example.test", 8443, "https://example.test:8443"},
	}
	for _, c := range cases {
		cfg := &Config{}
		cfg.Site.Scheme = c.scheme
		cfg.Site.Host = c.host
		cfg.Site.Port = c.port
		if got := cfg.BaseURL(); got != c.want {
			t.Fatalf("BaseURL(%q,%q,%d) = %q, want %q", c.scheme, c.host, c.port, got, c.want)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AINO_ADDR", "0.0.0.0:7777")
	t.Setenv("AINO_SESSION_STRATEGY", "signed")
	t.Setenv("AINO_CORS_ORIGINS", "https://a.test, https://b.test")
	cfg := &Config{}
	if !LoadEnvOverrides(cfg) {
		t.Fatalf("env overrides not detected")
	}
	if cfg.Addr() != "0.0.0.0:7777" {
		t.Fatalf("unexpected addr: %q", cfg.Addr())
	}
	if cfg.Session.Strategy != "signed" {
		t.Fatalf("unexpected strategy: %q", cfg.Session.Strategy)
	}
	if len(cfg.Security.CORS.AllowedOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.Security.CORS.AllowedOrigins)
	}
}
