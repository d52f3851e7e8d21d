package publish

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"

	"github.com/mkarl/bloggen/internal/models"
)

type LocalWriterConfig struct {
	Dir         string
	HTMLPreview bool
}

// LocalWriter writes assembled posts to disk, one file per connector.
type LocalWriter struct {
	config LocalWriterConfig
	md     goldmark.Markdown
}

func NewLocalWriter(config LocalWriterConfig) (*LocalWriter, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &LocalWriter{
		config: config,
		md:     goldmark.New(),
	}, nil
}

// Write stores the post body at <dir>/<canonical_id>.md, overwriting any
// previous run's output. When HTML preview is enabled it also renders
// <canonical_id>.html next to it. Returns the markdown path.
func (w *LocalWriter) Write(post models.BlogPost) (string, error) {
	path := filepath.Join(w.config.Dir, post.Connector.CanonicalID+".md")
	if err := os.WriteFile(path, []byte(post.Body), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	if w.config.HTMLPreview {
		var buf bytes.Buffer
		if err := w.md.Convert([]byte(post.Body), &buf); err != nil {
			return "", fmt.Errorf("rendering HTML preview for %s: %w", post.Connector.CanonicalID, err)
		}
		htmlPath := filepath.Join(w.config.Dir, post.Connector.CanonicalID+".html")
		if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", htmlPath, err)
		}
	}

	return path, nil
}
