package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floe-dev/floectl/pkg/suggest"
)

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.API.BaseURL = "https://floe.example.com"
		return cfg
	}

	tests := []struct {
		name    string
		config  func() *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			config: valid,
		},
		{
			name: "missing base url",
			config: func() *Config {
				cfg := valid()
				cfg.API.BaseURL = ""
				return cfg
			},
			wantErr: true,
			errMsg:  "api.base_url is required",
		},
		{
			name: "missing timeout",
			config: func() *Config {
				cfg := valid()
				cfg.API.Timeout = 0
				return cfg
			},
			wantErr: true,
			errMsg:  "api.timeout is required",
		},
		{
			name: "suggest enabled without model",
			config: func() *Config {
				cfg := valid()
				cfg.Suggest = suggest.Config{Enabled: true, APIKey: "key", MaxTokens: 200}
				return cfg
			},
			wantErr: true,
			errMsg:  "suggest.model is required",
		},
		{
			name: "suggest enabled with model",
			config: func() *Config {
				cfg := valid()
				cfg.Suggest = suggest.Config{Enabled: true, Model: "gpt-4o-mini", MaxTokens: 200}
				return cfg
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyAgainstEmbeddedSchema(tt.config())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	schema, err := GenerateSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)

	// verify schema can be marshaled to JSON
	data, err := schema.MarshalJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// verify it contains expected fields
	schemaStr := string(data)
	assert.Contains(t, schemaStr, "Config")
	assert.Contains(t, schemaStr, "api")
	assert.Contains(t, schemaStr, "preview")
	assert.Contains(t, schemaStr, "suggest")
}
