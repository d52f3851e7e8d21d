package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkarl/bloggen/internal/models"
)

// defaultSources is the built-in catalog of connectors to generate posts
// for. Order matters: connectors are processed in catalog order.
var defaultSources = []models.ConnectorDescriptor{
	{CanonicalID: "source-github", DisplayName: "GitHub"},
	{CanonicalID: "source-stripe", DisplayName: "Stripe"},
	{CanonicalID: "source-salesforce", DisplayName: "Salesforce"},
	{CanonicalID: "source-shopify", DisplayName: "Shopify"},
	{CanonicalID: "source-hubspot", DisplayName: "HubSpot"},
	{CanonicalID: "source-postgres", DisplayName: "Postgres"},
	{CanonicalID: "source-google-sheets", DisplayName: "Google Sheets"},
	{CanonicalID: "source-zendesk-support", DisplayName: "Zendesk Support"},
	{CanonicalID: "source-slack", DisplayName: "Slack"},
	{CanonicalID: "source-mailchimp", DisplayName: "Mailchimp"},
}

// Default returns a copy of the built-in catalog.
func Default() []models.ConnectorDescriptor {
	out := make([]models.ConnectorDescriptor, len(defaultSources))
	copy(out, defaultSources)
	return out
}

// Load reads a catalog override from a YAML file. An empty path returns
// the built-in catalog.
func Load(path string) ([]models.ConnectorDescriptor, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %v", err)
	}

	var sources []models.ConnectorDescriptor
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("error parsing catalog file: %v", err)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no connectors", path)
	}

	for i, s := range sources {
		if s.CanonicalID == "" || s.DisplayName == "" {
			return nil, fmt.Errorf("catalog entry %d: canonical_id and display_name are required", i)
		}
	}

	return sources, nil
}

// Find returns the descriptor with the given canonical ID.
func Find(sources []models.ConnectorDescriptor, canonicalID string) (models.ConnectorDescriptor, bool) {
	for _, s := range sources {
		if s.CanonicalID == canonicalID {
			return s, true
		}
	}
	return models.ConnectorDescriptor{}, false
}
