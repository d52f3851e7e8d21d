package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	RateLimit   float64 `yaml:"rate_limit"`
}

type RegistryConfig struct {
	BaseURL   string  `yaml:"base_url"`
	RateLimit float64 `yaml:"rate_limit"`
}

type CMSConfig struct {
	BaseURL      string `yaml:"base_url"`
	CollectionID string `yaml:"collection_id"`
	Token        string `yaml:"token"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	HTMLPreview bool   `yaml:"html_preview"`
}

type PipelineConfig struct {
	Workers int    `yaml:"workers"`
	Catalog string `yaml:"catalog"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Registry RegistryConfig `yaml:"registry"`
	CMS      CMSConfig      `yaml:"cms"`
	Output   OutputConfig   `yaml:"output"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"bloggen.yaml",
			"bloggen.yml",
			filepath.Join(os.Getenv("HOME"), ".config/bloggen/config.yaml"),
			"/etc/bloggen/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4-turbo-preview"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.RateLimit == 0 {
		config.LLM.RateLimit = 1.0
	}

	if config.Registry.BaseURL == "" {
		config.Registry.BaseURL = "https://connectors.airbyte.com/files"
	}
	if config.Registry.RateLimit == 0 {
		config.Registry.RateLimit = 2.0
	}

	if config.CMS.BaseURL == "" {
		config.CMS.BaseURL = "https://api.webflow.com/v2"
	}
	if config.CMS.CollectionID == "" {
		config.CMS.CollectionID = "66200272dd44bc109a1d8cff"
	}

	if config.Output.Dir == "" {
		config.Output.Dir = "./blogs"
	}

	if config.Pipeline.Workers == 0 {
		config.Pipeline.Workers = 1
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if token := os.Getenv("WEBFLOW_API_TOKEN"); token != "" {
		config.CMS.Token = token
	}
}
