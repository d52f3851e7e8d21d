package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/mkarl/bloggen/internal/models"
	"github.com/mkarl/bloggen/pkg/registry"
)

type fakeRegistry struct {
	missing map[string]bool
	broken  map[string]bool
}

func (f *fakeRegistry) GetConfigSchema(_ context.Context, id string) (models.ConfigSchema, error) {
	if f.missing[id] {
		return models.ConfigSchema{}, fmt.Errorf("%s: %w", id, registry.ErrNotFound)
	}
	if f.broken[id] {
		return models.ConfigSchema{}, errors.New("registry unavailable")
	}
	return models.ConfigSchema{ConnectorID: id, Spec: []byte(`{"type":"object"}`)}, nil
}

type fakeChat struct {
	mu       sync.Mutex
	calls    int
	failWhen string // substring of prompt that triggers an error
}

func (f *fakeChat) Generate(_ context.Context, _ []llms.MessageContent, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWhen != "" && strings.Contains(prompt, f.failWhen) {
		return "", errors.New("model unavailable")
	}
	return fmt.Sprintf("generated text %d", f.calls), nil
}

type fakeLocal struct {
	mu      sync.Mutex
	written []string
	failFor string
}

func (f *fakeLocal) Write(post models.BlogPost) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.Connector.CanonicalID == f.failFor {
		return "", errors.New("disk full")
	}
	f.written = append(f.written, post.Connector.CanonicalID)
	return "./blogs/" + post.Connector.CanonicalID + ".md", nil
}

type fakeCMS struct {
	mu       sync.Mutex
	uploaded []string
	status   int
}

func (f *fakeCMS) Upload(_ context.Context, post models.BlogPost) (models.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, post.Connector.CanonicalID)
	status := f.status
	if status == 0 {
		status = 202
	}
	return models.UploadResult{
		Success:    status == 200 || status == 201 || status == 202,
		StatusCode: status,
	}, nil
}

func testConnectors() []models.ConnectorDescriptor {
	return []models.ConnectorDescriptor{
		{CanonicalID: "source-github", DisplayName: "GitHub"},
		{CanonicalID: "source-stripe", DisplayName: "Stripe"},
		{CanonicalID: "source-slack", DisplayName: "Slack"},
	}
}

func TestRunAllSucceed(t *testing.T) {
	local := &fakeLocal{}
	cms := &fakeCMS{}
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{},
		Local:    local,
		CMS:      cms,
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors())
	require.Len(t, results, 3)

	for _, r := range results {
		assert.Equal(t, StatusOK, r.Status)
		assert.True(t, r.Upload.Success)
		assert.NotEmpty(t, r.FilePath)
	}
	assert.Equal(t, []string{"source-github", "source-stripe", "source-slack"}, local.written)
	assert.Equal(t, []string{"source-github", "source-stripe", "source-slack"}, cms.uploaded)
}

func TestRunIsolatesGenerationFailure(t *testing.T) {
	// The Stripe chapters fail; GitHub and Slack must still be written
	// and uploaded.
	local := &fakeLocal{}
	cms := &fakeCMS{}
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{failWhen: "Stripe"},
		Local:    local,
		CMS:      cms,
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors())
	require.Len(t, results, 3)

	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Error(t, results[1].Err)
	assert.Equal(t, StatusOK, results[2].Status)

	assert.Equal(t, []string{"source-github", "source-slack"}, local.written)
	assert.Equal(t, []string{"source-github", "source-slack"}, cms.uploaded)
}

func TestRunSkipsUnknownConnector(t *testing.T) {
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{missing: map[string]bool{"source-stripe": true}},
		Chat:     &fakeChat{},
		Local:    &fakeLocal{},
		CMS:      &fakeCMS{},
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors())
	assert.Equal(t, StatusOK, results[0].Status)
	assert.Equal(t, StatusSkipped, results[1].Status)
	assert.Equal(t, StatusOK, results[2].Status)
}

func TestRunContinuesPastWriteFailure(t *testing.T) {
	local := &fakeLocal{failFor: "source-github"}
	cms := &fakeCMS{}
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{},
		Local:    local,
		CMS:      cms,
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors())
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Equal(t, StatusOK, results[1].Status)
	assert.Equal(t, StatusOK, results[2].Status)

	// A failed write also means no upload for that connector.
	assert.NotContains(t, cms.uploaded, "source-github")
}

func TestRunReportsCMSRejection(t *testing.T) {
	cms := &fakeCMS{status: 401}
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{},
		Local:    &fakeLocal{},
		CMS:      cms,
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors()[:1])
	require.Len(t, results, 1)

	// Rejection is reported, not fatal: the post was written locally.
	assert.Equal(t, StatusOK, results[0].Status)
	assert.False(t, results[0].Upload.Success)
	assert.Equal(t, 401, results[0].Upload.StatusCode)
}

func TestRunDryRunSkipsUpload(t *testing.T) {
	cms := &fakeCMS{}
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{},
		Local:    &fakeLocal{},
		CMS:      cms,
		DryRun:   true,
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors())
	for _, r := range results {
		assert.Equal(t, StatusOK, r.Status)
	}
	assert.Empty(t, cms.uploaded)
}

func TestRunConcurrentWorkers(t *testing.T) {
	local := &fakeLocal{}
	cms := &fakeCMS{}
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{},
		Local:    local,
		CMS:      cms,
		Workers:  3,
	})
	require.NoError(t, err)

	results := p.Run(context.Background(), testConnectors())
	require.Len(t, results, 3)

	// Results stay in catalog order even when work is concurrent.
	for i, c := range testConnectors() {
		assert.Equal(t, c.CanonicalID, results[i].Connector.CanonicalID)
		assert.Equal(t, StatusOK, results[i].Status)
	}
	assert.ElementsMatch(t, []string{"source-github", "source-stripe", "source-slack"}, local.written)
}

func TestRunEmitsEvents(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	p, err := NewWithConfig(Config{
		Registry: &fakeRegistry{},
		Chat:     &fakeChat{},
		Local:    &fakeLocal{},
		CMS:      &fakeCMS{},
		OnEvent: func(e Event) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	p.Run(context.Background(), testConnectors()[:1])

	require.NotEmpty(t, events)
	assert.Equal(t, "introspect", events[0].Stage)
	last := events[len(events)-1]
	assert.Equal(t, "done", last.Stage)
	assert.Equal(t, "ok", last.Status)
}
