package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkarl/bloggen/internal/models"
)

// publishDate is the fixed publish timestamp stamped on every draft.
const publishDate = "2024-04-24T12:00:00.000Z"

// timeToRead is the fixed reading-time label for every post.
const timeToRead = "10 min read"

type WebflowConfig struct {
	BaseURL      string
	CollectionID string
	Token        string
	Timeout      time.Duration
}

// WebflowUploader submits assembled posts as draft items to a Webflow
// collection.
type WebflowUploader struct {
	config WebflowConfig
	client *http.Client
}

func NewWebflowUploader(config WebflowConfig) (*WebflowUploader, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("webflow API token is required")
	}
	if config.CollectionID == "" {
		return nil, fmt.Errorf("webflow collection ID is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.webflow.com/v2"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &WebflowUploader{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

type itemFields struct {
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	SEOTitleTag        string `json:"seo-title-tag"`
	SEOMetaDescription string `json:"seo-meta-description"`
	PublishDate        string `json:"publish-date"`
	TimeToRead         string `json:"time-to-read"`
	PostBody           string `json:"post-body"`
}

type itemPayload struct {
	IsArchived bool       `json:"isArchived"`
	IsDraft    bool       `json:"isDraft"`
	FieldData  itemFields `json:"fieldData"`
}

// Slug derives the CMS slug from a canonical connector ID: the fixed
// "source-" prefix is dropped and the pipeline suffix appended, so
// "source-github" becomes "github-python".
func Slug(canonicalID string) string {
	return strings.TrimPrefix(canonicalID, "source-") + "-python"
}

// Upload POSTs the post as a non-archived draft item. A non-2xx status is
// reported through UploadResult, not an error: the caller logs it and
// moves on to the next connector.
func (u *WebflowUploader) Upload(ctx context.Context, post models.BlogPost) (models.UploadResult, error) {
	title := fmt.Sprintf("How To Create a %s Python Pipeline with PyAirbyte", post.Connector.DisplayName)

	payload := itemPayload{
		IsArchived: false,
		IsDraft:    true,
		FieldData: itemFields{
			Name:               title,
			Slug:               Slug(post.Connector.CanonicalID),
			SEOTitleTag:        title,
			SEOMetaDescription: fmt.Sprintf("Learn how to create a %s Python data pipeline with our easy step-by-step guide. Master the setup using PyAirbyte to efficiently manage your %s data.", post.Connector.DisplayName, post.Connector.DisplayName),
			PublishDate:        publishDate,
			TimeToRead:         timeToRead,
			PostBody:           post.Body,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.UploadResult{}, err
	}

	endpoint := fmt.Sprintf("%s/collections/%s/items", u.config.BaseURL, u.config.CollectionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.UploadResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+u.config.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("webflow request for %s failed: %w", post.Connector.CanonicalID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.UploadResult{}, err
	}

	return models.UploadResult{
		Success:    isSuccessStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}

func isSuccessStatus(code int) bool {
	switch code {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return true
	}
	return false
}
