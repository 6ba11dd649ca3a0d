package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, BackendWikipedia, cfg.Knowledge.Backend)
	assert.Equal(t, 2, cfg.Knowledge.Retries)
	assert.Equal(t, 300*time.Millisecond, cfg.Knowledge.RetryBaseDelay)
	assert.Equal(t, 15*time.Second, cfg.Knowledge.RequestTimeout)
	assert.Equal(t, 200, cfg.Knowledge.MaxLinks)
	assert.Equal(t, 7, cfg.Search.MaxDepth)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 30*time.Millisecond, cfg.Search.Pacing)
	assert.False(t, cfg.Search.Strict)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KNOWLEDGE_MAX_LINKS", "50")
	t.Setenv("SEARCH_TIMEOUT", "4s")
	t.Setenv("SEARCH_STRICT", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 50, cfg.Knowledge.MaxLinks)
	assert.Equal(t, 4*time.Second, cfg.Search.Timeout)
	assert.True(t, cfg.Search.Strict)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linktrace.yaml")
	body := []byte("search:\n  max_depth: 4\nknowledge:\n  retries: 1\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Search.MaxDepth)
	assert.Equal(t, 1, cfg.Knowledge.Retries)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "unknown backend", env: map[string]string{"KNOWLEDGE_BACKEND": "dbpedia"}},
		{name: "neo4j without uri", env: map[string]string{"KNOWLEDGE_BACKEND": "neo4j"}},
		{name: "depth above limit", env: map[string]string{"SEARCH_MAX_DEPTH": "11"}},
		{name: "negative retries", env: map[string]string{"KNOWLEDGE_RETRIES": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := HTTPConfig{AllowedOriginsCSV: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	assert.Nil(t, HTTPConfig{}.AllowedOrigins())
}
