package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no stray .env file is picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SENDGRID_API_KEY", "SG.test-key")
	t.Setenv("SENDGRID_FROM_EMAIL", "noreply@lavishtravelsandtours.online")
	t.Setenv("SUPPORT_EMAIL", "support@lavishtravelsandtours.online")
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Lavish Travels & Tours API", cfg.App.Name)
	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "0.0.0.0", cfg.App.Host)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowsAnyOrigin())
	assert.Equal(t, "https://api.sendgrid.com", cfg.Email.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Email.SendTimeout())
	assert.Equal(t, 10, cfg.RateLimit.PerMinute)
	assert.Empty(t, cfg.RateLimit.TrustedProxies)
	assert.Empty(t, cfg.Templates.Dir)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SUPPORT_EMAIL"} {
		t.Run(key, func(t *testing.T) {
			chdirTemp(t)
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidSupportAddress(t *testing.T) {
	chdirTemp(t)
	setRequired(t)
	t.Setenv("SUPPORT_EMAIL", "not-an-address")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	chdirTemp(t)
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", "https://lavishtravelsandtours.online, https://www.lavishtravelsandtours.online")
	t.Setenv("EMAIL_SEND_TIMEOUT_SECONDS", "3")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://lavishtravelsandtours.online", "https://www.lavishtravelsandtours.online"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowsAnyOrigin())
	assert.Equal(t, 3*time.Second, cfg.Email.SendTimeout())
	assert.Equal(t, 0, cfg.RateLimit.PerMinute)
	assert.True(t, cfg.App.Debug)
}

func TestLoad_TrustedProxies(t *testing.T) {
	chdirTemp(t)
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1,2001:db8::/32")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1", "2001:db8::/32"}, cfg.RateLimit.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,load-balancer")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SENDGRID_API_KEY", "")
	t.Setenv("SENDGRID_FROM_EMAIL", "")
	t.Setenv("SUPPORT_EMAIL", "")
	// godotenv does not override variables already present, so clear them first.
	for _, k := range []string{"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SUPPORT_EMAIL"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range []string{"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SUPPORT_EMAIL"} {
			_ = os.Unsetenv(k)
		}
	})

	env := "SENDGRID_API_KEY=SG.from-file\nSENDGRID_FROM_EMAIL=noreply@example.com\nSUPPORT_EMAIL=support@example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte(env), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SG.from-file", cfg.Email.APIKey)
	assert.Equal(t, "support@example.com", cfg.Email.SupportEmail)
}
