package config

import "fmt"

// Config is the main configuration struct.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Site     SiteConfig     `yaml:"site"`
	Session  SessionConfig  `yaml:"session"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds listen address and frontend selection.
type ServerConfig struct {
	Address  string    `yaml:"address"`
	Port     int       `yaml:"port"`
	Frontend string    `yaml:"frontend"` // "nethttp" (default) or "fasthttp"
	TLS      TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SiteConfig is the public base URL used for absolute reverse URLs.
type SiteConfig struct {
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
}

// SessionConfig selects the cookie session strategy and its secrets. A key
// of 32+ hex characters (even length) is hex-decoded; anything else is used
// as raw bytes. The encrypted strategy requires 32 decoded bytes.
type SessionConfig struct {
	Strategy   string `yaml:"strategy"` // "signed" or "encrypted"
	KeyHex     string `yaml:"key"`
	Salt       string `yaml:"salt"`
	CookieName string `yaml:"cookie_name"`
}

// SecurityConfig holds edge-middleware settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// LoggingConfig holds logger level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// BaseURL returns scheme://host[:port] for reverse URL generation. Default
// ports for the scheme are omitted.
func (c *Config) BaseURL() string {
	scheme := c.Site.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := c.Site.Host
	if host == "" {
		host = "localhost"
	}
	p := c.Site.Port
	if p == 0 || (scheme == "http" && p == 80) || (scheme == "https" && p == 443) {
		return fmt.Sprintf("%s://%s", scheme, host)
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, p)
}
