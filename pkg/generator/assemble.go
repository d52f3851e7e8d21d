package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkarl/bloggen/internal/models"
)

// ErrMissingChapter means a chapter arrived blank at assembly time. That
// is a programming defect upstream, fatal for the connector it belongs to.
var ErrMissingChapter = errors.New("missing chapter")

// CTASet holds the static calls-to-action spliced into every post.
type CTASet struct {
	DocsQuickstarts string
	SlackNewsletter string
}

// DefaultCTAs returns the process-wide calls-to-action.
func DefaultCTAs() CTASet {
	return CTASet{
		DocsQuickstarts: "For keeping up with the latest PyAirbyte's features, make sure to check [our documentation](https://docs.airbyte.com/using-airbyte/pyairbyte/getting-started). And if you're eager to see more code examples with PyAirbyte, check out our [Quickstarts library](https://github.com/airbytehq/quickstarts/tree/main/pyairbyte_notebooks).",
		SlackNewsletter: "Do you have any questions or feedback for us? You can keep in touch by joining our [Slack channel](https://airbyte.com/community/community)! If you want to keep up to date with new PyAirbyte features, [subscribe to our newsletter](https://airbyte.com/community/newsletter).",
	}
}

// Assemble concatenates the chapters and CTAs into the final document.
// The order here is fixed and independent of generation order: the
// introduction goes first even though it was generated last.
func Assemble(chapters models.Chapters, ctas CTASet) (string, error) {
	sections := []struct {
		name string
		text string
	}{
		{"introduction", chapters.Introduction},
		{"chapter_1", chapters.Chapter1},
		{"chapter_2", chapters.Chapter2},
		{"docs_quickstarts_cta", ctas.DocsQuickstarts},
		{"chapter_3", chapters.Chapter3},
		{"conclusion", chapters.Conclusion},
		{"slack_newsletter_cta", ctas.SlackNewsletter},
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.text == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingChapter, s.name)
		}
		parts = append(parts, s.text)
	}

	return strings.Join(parts, "\n\n"), nil
}
