package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration before any connector is processed.
// Missing secrets are reported here so a run fails fast instead of deep
// inside a model or CMS request.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "model API key is required (set OPENAI_API_KEY)",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.LLM.BaseURL != "" {
		if _, err := url.Parse(c.LLM.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid model API base URL",
			})
		}
	}

	// Validate registry config
	if c.Registry.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "registry.base_url",
			Message: "connector registry base URL is required",
		})
	} else if _, err := url.Parse(c.Registry.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "registry.base_url",
			Message: "invalid connector registry base URL",
		})
	}

	if c.Registry.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "registry.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	// Validate CMS config
	if c.CMS.Token == "" {
		errors = append(errors, ValidationError{
			Field:   "cms.token",
			Message: "CMS API token is required (set WEBFLOW_API_TOKEN)",
		})
	}

	if c.CMS.CollectionID == "" {
		errors = append(errors, ValidationError{
			Field:   "cms.collection_id",
			Message: "CMS collection ID is required",
		})
	}

	if _, err := url.Parse(c.CMS.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "cms.base_url",
			Message: "invalid CMS base URL",
		})
	}

	// Validate output config
	if c.Output.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Message: "output directory is required",
		})
	}

	// Validate pipeline config
	if c.Pipeline.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "pipeline.workers",
			Message: "workers must be positive",
		})
	}

	return errors
}
