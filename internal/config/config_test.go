package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 23, cfg.NightAuditHour)
	assert.Equal(t, 50, cfg.NightAuditMinute)
	assert.Equal(t, "0.1", cfg.TaxRate.String())
	assert.Equal(t, "0.3", cfg.DepositRate.String())
	assert.Equal(t, int32(0), cfg.CurrencyDecimals)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.MoMo.Enabled())
	assert.NotEmpty(t, cfg.CORSAllowedOrigins)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NIGHT_AUDIT_AT", "02:15")
	t.Setenv("TAX_RATE", "0.08")
	t.Setenv("MOMO_PARTNER_CODE", "MOMO")
	t.Setenv("MOMO_ACCESS_KEY", "ak")
	t.Setenv("MOMO_SECRET_KEY", "sk")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NightAuditHour)
	assert.Equal(t, 15, cfg.NightAuditMinute)
	assert.Equal(t, "0.08", cfg.TaxRate.String())
	assert.True(t, cfg.MoMo.Enabled())
}

func TestValidation(t *testing.T) {
	cases := map[string]map[string]any{
		"bad clock":         {"NIGHT_AUDIT_AT": "25:00"},
		"negative tax":      {"TAX_RATE": "-0.1"},
		"zero deposit":      {"DEPOSIT_RATE": "0"},
		"default jwt prod":  {"APP_ENV": "production"},
		"bad ttl":           {"JWT_TTL": "soon"},
		"bad callback rate": {"CALLBACK_RATE_PER_MIN": 0},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			v := newViper()
			for k, val := range overrides {
				v.Set(k, val)
			}
			_, err := FromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := parseClock("23:50")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 50, m)

	_, _, err = parseClock("2350")
	assert.Error(t, err)
}
