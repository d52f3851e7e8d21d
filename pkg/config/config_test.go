package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bloggen.yaml")

	configData := `
llm:
  base_url: "https://api.openai.com/v1"
  model: "gpt-4-turbo-preview"
  api_key: "sk-test"
  max_tokens: 1500
  temperature: 0.5
  rate_limit: 0.5

registry:
  base_url: "https://registry.example.com"
  rate_limit: 1.5

cms:
  base_url: "https://api.webflow.com/v2"
  collection_id: "abc123"
  token: "wf-test"

output:
  dir: "./out"
  html_preview: true

pipeline:
  workers: 3

server:
  addr: ":9090"
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://api.openai.com/v1", config.LLM.BaseURL)
	assert.Equal(t, "gpt-4-turbo-preview", config.LLM.Model)
	assert.Equal(t, 1500, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "https://registry.example.com", config.Registry.BaseURL)
	assert.Equal(t, "abc123", config.CMS.CollectionID)
	assert.Equal(t, "./out", config.Output.Dir)
	assert.True(t, config.Output.HTMLPreview)
	assert.Equal(t, 3, config.Pipeline.Workers)
	assert.Equal(t, ":9090", config.Server.Addr)
}

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bloggen.yaml")

	err := os.WriteFile(configPath, []byte("llm:\n  api_key: sk-test\n"), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-turbo-preview", config.LLM.Model)
	assert.Equal(t, 2000, config.LLM.MaxTokens)
	assert.Equal(t, "./blogs", config.Output.Dir)
	assert.Equal(t, 1, config.Pipeline.Workers)
	assert.Equal(t, "https://api.webflow.com/v2", config.CMS.BaseURL)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		config        Config
		expectedErrs  int
		errorMessages []string
	}{
		{
			name: "valid config",
			config: Config{
				LLM: LLMConfig{
					APIKey:      "sk-test",
					MaxTokens:   1000,
					Temperature: 0.7,
					RateLimit:   1.0,
				},
				Registry: RegistryConfig{
					BaseURL:   "https://registry.example.com",
					RateLimit: 2.0,
				},
				CMS: CMSConfig{
					BaseURL:      "https://api.webflow.com/v2",
					CollectionID: "abc123",
					Token:        "wf-test",
				},
				Output:   OutputConfig{Dir: "./blogs"},
				Pipeline: PipelineConfig{Workers: 1},
			},
			expectedErrs: 0,
		},
		{
			name: "missing secrets",
			config: Config{
				LLM: LLMConfig{
					MaxTokens:   1000,
					Temperature: 0.7,
					RateLimit:   1.0,
				},
				Registry: RegistryConfig{
					BaseURL:   "https://registry.example.com",
					RateLimit: 2.0,
				},
				CMS: CMSConfig{
					CollectionID: "abc123",
				},
				Output:   OutputConfig{Dir: "./blogs"},
				Pipeline: PipelineConfig{Workers: 1},
			},
			expectedErrs: 2,
			errorMessages: []string{
				"llm.api_key: model API key is required",
				"cms.token: CMS API token is required",
			},
		},
		{
			name: "out of range values",
			config: Config{
				LLM: LLMConfig{
					APIKey:      "sk-test",
					MaxTokens:   5000, // Invalid
					Temperature: 3.0,  // Invalid
					RateLimit:   1.0,
				},
				Registry: RegistryConfig{
					BaseURL:   "https://registry.example.com",
					RateLimit: 2.0,
				},
				CMS: CMSConfig{
					CollectionID: "abc123",
					Token:        "wf-test",
				},
				Output:   OutputConfig{Dir: "./blogs"},
				Pipeline: PipelineConfig{Workers: 0}, // Invalid
			},
			expectedErrs: 3,
			errorMessages: []string{
				"llm.max_tokens: max_tokens must be between 1 and 4096",
				"llm.temperature: temperature must be between 0 and 2",
				"pipeline.workers: workers must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := tt.config.Validate()
			assert.Len(t, errors, tt.expectedErrs)

			if tt.errorMessages != nil {
				for i, msg := range tt.errorMessages {
					assert.Contains(t, errors[i].Error(), msg)
				}
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	// Set environment variables
	os.Setenv("OPENAI_API_KEY", "sk-from-env")
	os.Setenv("WEBFLOW_API_TOKEN", "wf-from-env")
	os.Setenv("OPENAI_BASE_URL", "http://env-model:8000/v1")
	defer func() {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("WEBFLOW_API_TOKEN")
		os.Unsetenv("OPENAI_BASE_URL")
	}()

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "sk-from-env", config.LLM.APIKey)
	assert.Equal(t, "wf-from-env", config.CMS.Token)
	assert.Equal(t, "http://env-model:8000/v1", config.LLM.BaseURL)
}
