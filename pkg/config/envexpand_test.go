package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TOOL_TRANSPORT_ENDPOINT", "https://tools.internal:9443")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5432")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "braced variable",
			input:    "endpoint: ${TOOL_TRANSPORT_ENDPOINT}",
			expected: "endpoint: https://tools.internal:9443",
		},
		{
			name:     "bare variable",
			input:    "endpoint: $TOOL_TRANSPORT_ENDPOINT",
			expected: "endpoint: https://tools.internal:9443",
		},
		{
			name:     "two variables in one value",
			input:    "dsn: ${DB_HOST}:${DB_PORT}",
			expected: "dsn: db.internal:5432",
		},
		{
			name:     "missing variable expands to empty",
			input:    "endpoint: ${NOT_SET_ANYWHERE}",
			expected: "endpoint: ",
		},
		{
			name:     "no variables passes through",
			input:    "embedding_dimension: 1536",
			expected: "embedding_dimension: 1536",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(ExpandEnv([]byte(tt.input))))
		})
	}
}

func TestExpandEnvInsideYAMLDocument(t *testing.T) {
	t.Setenv("TOOL_TRANSPORT_ENDPOINT", "https://tools.internal:9443")

	input := []byte(`
tool_transport:
  endpoint: ${TOOL_TRANSPORT_ENDPOINT}
  api_key_env: TOOL_TRANSPORT_API_KEY
`)

	var cfg OpsAgentYAMLConfig
	require.NoError(t, yaml.Unmarshal(ExpandEnv(input), &cfg))
	require.NotNil(t, cfg.Transport)
	assert.Equal(t, "https://tools.internal:9443", cfg.Transport.Endpoint)
	assert.Equal(t, "TOOL_TRANSPORT_API_KEY", cfg.Transport.APIKeyEnv)
}
