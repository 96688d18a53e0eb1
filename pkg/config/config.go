package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	Config string
	Set    map[string]bool
}

// EffectiveConfigResult is the merged configuration the server runs with,
// plus a marker for where the listen address came from.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	Source string // "flags", "config", or "env"
}

// ParseConfigFlags parses command-line flags and returns them as a Flags struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, Config: *cfgPtr, Set: setFlags}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadEnvOverrides applies AINO_* environment overrides onto cfg and
// reports whether any were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("AINO_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("AINO_FRONTEND"); v != "" {
		envUsed = true
		cfg.Server.Frontend = v
	}
	if v := os.Getenv("AINO_SESSION_STRATEGY"); v != "" {
		envUsed = true
		cfg.Session.Strategy = v
	}
	if v := os.Getenv("AINO_SESSION_KEY"); v != "" {
		envUsed = true
		cfg.Session.KeyHex = v
	}
	if v := os.Getenv("AINO_SESSION_SALT"); v != "" {
		envUsed = true
		cfg.Session.Salt = v
	}
	if v := os.Getenv("AINO_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("AINO_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("AINO_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("AINO_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AINO_LOG_FORMAT"); v != "" {
		envUsed = true
		cfg.Logging.Format = v
	}
	return envUsed
}

// LoadEffective merges flags, config file and env into the effective
// configuration. A missing config file is not an error; missing session
// secrets are, since the server cannot sign or encrypt cookies without
// them.
func LoadEffective(flags Flags) (EffectiveConfigResult, error) {
	cfg := &Config{}
	source := "flags"
	if b, err := os.Stat(flags.Config); err == nil && !b.IsDir() {
		loaded, err := Load(flags.Config)
		if err != nil {
			return EffectiveConfigResult{}, err
		}
		cfg = loaded
		source = "config"
	} else if flags.Set["config"] {
		return EffectiveConfigResult{}, fmt.Errorf("config file not found: %s", flags.Config)
	}

	if LoadEnvOverrides(cfg) {
		source = "env"
	}

	addr := cfg.Addr()
	if flags.Set["addr"] {
		addr = flags.Addr
		source = "flags"
	}
	return EffectiveConfigResult{Config: cfg, Addr: addr, Source: source}, nil
}

// SessionKey decodes the configured session key. Only values long enough
// to plausibly be a hex-encoded secret (32+ chars, even length) are
// hex-decoded; anything shorter is taken as raw bytes even when it happens
// to be valid hex, so short dev passphrases keep their literal value.
func (c *Config) SessionKey() []byte {
	k := strings.TrimSpace(c.Session.KeyHex)
	if len(k) >= 32 && len(k)%2 == 0 {
		if b, err := hex.DecodeString(k); err == nil {
			return b
		}
	}
	return []byte(k)
}
