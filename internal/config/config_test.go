package config

import (
  "os"
  "path/filepath"
  "testing"
  "time"

  "github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
  t.Setenv("AGRILPA_CONFIG", "")
  t.Setenv("ALLOWED_ORIGINS", "")
  t.Setenv("ADMIN_EMAILS", "")
  t.Setenv("NEWSLETTER_SEND_DELAY", "")

  cfg, err := Load()
  require.NoError(t, err)
  require.NotEmpty(t, cfg.AllowedOrigins)
  require.Equal(t, 500*time.Millisecond, cfg.NewsletterSendDelay)
  require.False(t, cfg.IsAdminEmail("anyone@example.com"))
}

func TestLoadReadsYAMLFile(t *testing.T) {
  dir := t.TempDir()
  path := filepath.Join(dir, "agrilpa.yaml")
  raw := []byte("allowed_origins:\n  - https://agrilpa.com\nadmin_emails:\n  - Boss@Agrilpa.com\nnewsletter_send_delay: 2s\n")
  require.NoError(t, os.WriteFile(path, raw, 0o600))
  t.Setenv("AGRILPA_CONFIG", path)
  t.Setenv("ALLOWED_ORIGINS", "")
  t.Setenv("ADMIN_EMAILS", "")
  t.Setenv("NEWSLETTER_SEND_DELAY", "")

  cfg, err := Load()
  require.NoError(t, err)
  require.Equal(t, []string{"https://agrilpa.com"}, cfg.AllowedOrigins)
  require.Equal(t, 2*time.Second, cfg.NewsletterSendDelay)
  require.True(t, cfg.IsAdminEmail(" boss@agrilpa.com "))
}

func TestEnvOverridesFile(t *testing.T) {
  dir := t.TempDir()
  path := filepath.Join(dir, "agrilpa.yaml")
  require.NoError(t, os.WriteFile(path, []byte("admin_emails:\n  - file@agrilpa.com\n"), 0o600))
  t.Setenv("AGRILPA_CONFIG", path)
  t.Setenv("ADMIN_EMAILS", "env@agrilpa.com, second@agrilpa.com")
  t.Setenv("ALLOWED_ORIGINS", "https://app.agrilpa.com")
  t.Setenv("NEWSLETTER_SEND_DELAY", "")

  cfg, err := Load()
  require.NoError(t, err)
  require.Equal(t, []string{"https://app.agrilpa.com"}, cfg.AllowedOrigins)
  require.True(t, cfg.IsAdminEmail("env@agrilpa.com"))
  require.True(t, cfg.IsAdminEmail("second@agrilpa.com"))
  require.False(t, cfg.IsAdminEmail("file@agrilpa.com"))
}

func TestLoadMissingFileFails(t *testing.T) {
  t.Setenv("AGRILPA_CONFIG", "/nonexistent/agrilpa.yaml")
  _, err := Load()
  require.Error(t, err)
}
