package types

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/mkarl/bloggen/internal/models"
)

// Core interfaces
type SchemaClient interface {
	GetConfigSchema(ctx context.Context, canonicalID string) (models.ConfigSchema, error)
}

type ChatClient interface {
	Generate(ctx context.Context, history []llms.MessageContent, prompt string) (string, error)
}

type LocalPublisher interface {
	Write(post models.BlogPost) (string, error)
}

type CMSPublisher interface {
	Upload(ctx context.Context, post models.BlogPost) (models.UploadResult, error)
}

type RunLedger interface {
	BeginRun() (string, error)
	RecordPost(rec models.PostRecord) error
	FinishRun(runID string) error
	Close() error
}

type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	RateLimit   float64
}

type RegistryConfig struct {
	BaseURL   string
	RateLimit float64
}

type CMSConfig struct {
	BaseURL      string
	CollectionID string
	Token        string
}

type PipelineConfig struct {
	OutputDir string
	Workers   int
	DryRun    bool
}
