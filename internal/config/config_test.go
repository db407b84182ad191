package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("USE_MOCK_NEWS", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("APP_ENV", "development")

	cfg := FromEnv()

	assert.True(t, cfg.UseMockNews, "fixture mode is the default")
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "newsinflight:", cfg.RedisPrefix)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("USE_MOCK_NEWS", "maybe")
	t.Setenv("RATE_LIMIT_RPS", "lots")
	t.Setenv("CACHE_TTL", "soon")

	cfg := FromEnv()

	assert.True(t, cfg.UseMockNews)
	assert.Equal(t, 10, cfg.RateLimitRPS)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "development without secret",
			cfg:  Config{Env: "development", UseMockNews: true, BackendTimeout: time.Second},
		},
		{
			name:    "production without secret",
			cfg:     Config{Env: "production", UseMockNews: true, BackendTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "live mode without database",
			cfg:     Config{Env: "development", UseMockNews: false, BackendTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "fixture key without bucket",
			cfg:     Config{Env: "development", UseMockNews: true, FixtureObjectKey: "news.json", BackendTimeout: time.Second},
			wantErr: true,
		},
		{
			name: "live mode with database",
			cfg: Config{
				Env:            "production",
				UseMockNews:    false,
				DatabaseURL:    "postgres://localhost/news",
				AuthJWTSecret:  "secret",
				BackendTimeout: time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
