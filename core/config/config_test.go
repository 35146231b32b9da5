package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
whatsapp:
  access_token: token
  phone_number_id: "1234"
  verify_token: verify
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://graph.facebook.com/v20.0", cfg.WhatsApp.GraphBaseURL)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Listen)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestNormalizeRejectsMissingCredentials(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing token", Config{WhatsApp: WhatsAppConfig{PhoneNumberID: "1", VerifyToken: "v"}}},
		{"missing phone id", Config{WhatsApp: WhatsAppConfig{AccessToken: "t", VerifyToken: "v"}}},
		{"missing verify token", Config{WhatsApp: WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			assert.Error(t, Normalize(&cfg))
		})
	}
}

func TestNormalizeTrimsGraphBaseURL(t *testing.T) {
	cfg := Config{WhatsApp: WhatsAppConfig{
		AccessToken:   "t",
		PhoneNumberID: "1",
		VerifyToken:   "v",
		GraphBaseURL:  "https://example.test/api/",
	}}
	require.NoError(t, Normalize(&cfg))
	assert.Equal(t, "https://example.test/api", cfg.WhatsApp.GraphBaseURL)
}
