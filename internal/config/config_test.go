package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_GmailFallbacks(t *testing.T) {
	v := newViper()
	v.Set("MONGODB_URI", "mongodb+srv://cluster.example.net")
	v.Set("GMAIL_USER", "studio@gmail.com")
	v.Set("GMAIL_PASS", "app-password")

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "mongodb+srv://cluster.example.net", cfg.Database.URL)
	assert.Equal(t, "mongo", cfg.Database.Driver())
	assert.Equal(t, "studio@gmail.com", cfg.Mail.Username)
	assert.Equal(t, "app-password", cfg.Mail.Password)
	assert.Equal(t, "studio@gmail.com", cfg.Mail.FromEmail)
	assert.Equal(t, "studio@gmail.com", cfg.Mail.Operator)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.SMTPHost)
	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		errMsg string
	}{
		{
			name:   "missing database",
			values: map[string]any{"MAIL_PROVIDER": "console"},
			errMsg: "DATABASE_URL or MONGODB_URI must be set",
		},
		{
			name:   "smtp without credentials",
			values: map[string]any{"DATABASE_URL": "sqlite:///./forms.db"},
			errMsg: "smtp provider requires",
		},
		{
			name: "bad smtp port",
			values: map[string]any{
				"DATABASE_URL":  "sqlite:///./forms.db",
				"SMTP_USERNAME": "u",
				"SMTP_PASSWORD": "p",
				"SMTP_PORT":     70000,
			},
			errMsg: "SMTP_PORT must be between 1 and 65535",
		},
		{
			name:   "unknown provider",
			values: map[string]any{"DATABASE_URL": "sqlite:///./forms.db", "MAIL_PROVIDER": "pigeon"},
			errMsg: `unknown MAIL_PROVIDER "pigeon"`,
		},
		{
			name:   "ses without sender",
			values: map[string]any{"DATABASE_URL": "sqlite:///./forms.db", "MAIL_PROVIDER": "ses"},
			errMsg: "MAIL_FROM and MAIL_OPERATOR must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://forms:secret@db:5432/forms?sslmode=require")
	t.Setenv("MAIL_PROVIDER", "console")
	t.Setenv("ALLOWED_HOSTS", "https://vastucraft.com, https://www.vastucraft.com")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver())
	assert.Equal(t, []string{"https://vastucraft.com", "https://www.vastucraft.com"}, cfg.CORS.AllowedOrigins)
}

func TestDatabaseConfig_Driver(t *testing.T) {
	assert.Equal(t, "sqlite", (&DatabaseConfig{URL: "sqlite:///./forms.db"}).Driver())
	assert.Equal(t, "./forms.db", (&DatabaseConfig{URL: "sqlite:///./forms.db"}).GetSQLitePath())
	assert.Equal(t, "postgres", (&DatabaseConfig{URL: "postgresql://db/forms"}).Driver())
	assert.Equal(t, "mongo", (&DatabaseConfig{URL: "mongodb://localhost:27017"}).Driver())
}
