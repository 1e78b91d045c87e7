package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/envutil"
)

// Config holds the file-backed settings that are awkward as single env vars:
// CORS origins, the admin email allowlist, and newsletter pacing. Everything
// else (DB, JWT, SendGrid) stays env-only.
type Config struct {
	AllowedOrigins      []string      `yaml:"allowed_origins"`
	AdminEmails         []string      `yaml:"admin_emails"`
	NewsletterSendDelay time.Duration `yaml:"newsletter_send_delay"`
}

func Default() Config {
	return Config{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		NewsletterSendDelay: 500 * time.Millisecond,
	}
}

// Load reads the YAML file named by AGRILPA_CONFIG, falling back to defaults
// plus env overrides when the variable is unset or the file is absent.
func Load() (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("AGRILPA_CONFIG"))
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		cfg.AllowedOrigins = splitCSV(origins)
	}
	if admins := strings.TrimSpace(os.Getenv("ADMIN_EMAILS")); admins != "" {
		cfg.AdminEmails = splitCSV(admins)
	}
	cfg.NewsletterSendDelay = envutil.Duration("NEWSLETTER_SEND_DELAY", cfg.NewsletterSendDelay)

	for i, e := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return cfg, nil
}

// IsAdminEmail reports whether email is on the allowlist.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
