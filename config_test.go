package requesty

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
base_url: https://api.test/v1
app_name: billing
data_conversion: text
headers:
  Authorization: Bearer abc
timeout: 750ms
retry: 2
debug: true
`))

	require.NoError(t, err)
	assert.Equal(t, "https://api.test/v1", cfg.BaseURL)
	assert.Equal(t, "billing", cfg.AppName)
	assert.Equal(t, FormatText, cfg.ResponseFormat)
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"}, cfg.Headers)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 2, cfg.Retry)
	assert.True(t, cfg.Debug)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("base_url: https://api.test\n"))

	require.NoError(t, err)
	assert.Equal(t, "myApp", cfg.AppName)
	assert.Equal(t, FormatJSON, cfg.ResponseFormat)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.Retry)
	assert.False(t, cfg.Debug)
}

func TestParseConfigMillisecondTimeout(t *testing.T) {
	cfg, err := ParseConfig([]byte("base_url: https://api.test\ntimeout: 1500\n"))

	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing base url", "retry: 1\n", "baseURL is required"},
		{"bad format", "base_url: https://api.test\ndata_conversion: xml\n", "not json or text"},
		{"bad duration", "base_url: https://api.test\ntimeout: soon\n", "invalid duration"},
		{"negative retry", "base_url: https://api.test\nretry: -2\n", "retry must be non-negative"},
		{"malformed", "base_url: [\n", "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requesty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://api.test\nretry: 4\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Retry)

	c := NewFromConfig(cfg)
	assert.True(t, c.IsValid())
	assert.Equal(t, 4, c.Config().Retry)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidateLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = testBaseURL
	cfg.Timeout = 11 * time.Minute
	cfg.Retry = 101

	problems := cfg.Validate()

	assert.Len(t, problems, 2)
}
