package app

import (
	"fmt"
	"os"

	"aino/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	cfg := eff.Config

	switch cfg.Session.Strategy {
	case "signed":
		if len(cfg.SessionKey()) == 0 {
			return fmt.Errorf("session.key is required for the signed strategy")
		}
	case "encrypted":
		if n := len(cfg.SessionKey()); n != 32 {
			return fmt.Errorf("session.key must decode to 32 bytes for the encrypted strategy, got %d", n)
		}
	case "":
		return fmt.Errorf("session.strategy is required: set \"signed\" or \"encrypted\"")
	default:
		return fmt.Errorf("unknown session.strategy %q", cfg.Session.Strategy)
	}

	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}
	return nil
}
