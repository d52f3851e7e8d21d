package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkarl/bloggen/internal/models"
)

// snippetTemplate is the fixed usage walkthrough embedded into chapter 2.
// Only the connector ID and the generated configuration literal vary.
const snippetTemplate = `pip install airbyte

import airbyte as ab

# Create and configure the source connector, don't forget to use your own values in the config:
source = ab.get_source(
    "%s",
    install_if_missing=True,
    config=%s
)

# Verify the config and credentials:
source.check()

# List the available streams available for the %s connector:
source.get_available_streams()

# Select all streams to load to cache. You can also select some of them with the ` + "`select_streams()`" + ` method.
source.select_all_streams()

# Read into DuckDB local default cache. You could also use a custom cache here (Postgres, Snowflake, BigQuery, etc.)
cache = ab.get_default_cache()
result = source.read(cache=cache)

# Read a stream from the cache into a pandas Dataframe, replace with the stream you're interested in. You can also read from the cache into SQL, or documents (for LLMs).
df = cache["your_stream"].to_pandas()`

// SynthesizeSnippet asks the model to fill in a schema-shaped configuration
// and interpolates it into the usage template. The model call happens with
// an empty history: the snippet conversation must not leak into the
// chapter conversation.
func (g *Generator) SynthesizeSnippet(ctx context.Context, schema models.ConfigSchema) (string, error) {
	config, err := g.chat.Generate(ctx, nil, snippetPrompt(schema.Spec))
	if err != nil {
		return "", fmt.Errorf("snippet generation for %s failed: %w", schema.ConnectorID, err)
	}

	config = stripCodeFences(config)
	if config == "" {
		return "", fmt.Errorf("snippet generation for %s produced no configuration", schema.ConnectorID)
	}

	return fmt.Sprintf(snippetTemplate, schema.ConnectorID, config, schema.ConnectorID), nil
}

// stripCodeFences removes markdown fence markers and their language label
// from a model response. Models are asked to omit fences but not all of
// them comply, so the cleanup is textual rather than trusting the output.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
