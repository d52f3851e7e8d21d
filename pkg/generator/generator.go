package generator

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/mkarl/bloggen/internal/models"
	"github.com/mkarl/bloggen/internal/types"
	"github.com/mkarl/bloggen/pkg/llm"
)

// Generator produces blog chapters for one connector at a time.
type Generator struct {
	chat types.ChatClient
}

func New(chat types.ChatClient) *Generator {
	return &Generator{chat: chat}
}

// GenerateChapters runs the fixed prompt sequence for one connector. The
// conversation history starts empty and every completion is appended as
// an assistant turn before the next prompt, so later chapters see the
// earlier ones. A single model failure aborts this connector's chapters.
func (g *Generator) GenerateChapters(ctx context.Context, connector models.ConnectorDescriptor, snippet string) (models.Chapters, error) {
	var chapters models.Chapters
	var history []llms.MessageContent

	for _, cp := range chapterPrompts(connector.DisplayName, snippet) {
		text, err := g.chat.Generate(ctx, history, cp.prompt)
		if err != nil {
			return models.Chapters{}, fmt.Errorf("generating %s for %s: %w", cp.name, connector.CanonicalID, err)
		}
		history = llm.AppendExchange(history, cp.prompt, text)

		switch cp.name {
		case "introduction":
			chapters.Introduction = text
		case "chapter_1":
			chapters.Chapter1 = text
		case "chapter_2":
			chapters.Chapter2 = text
		case "chapter_3":
			chapters.Chapter3 = text
		case "conclusion":
			chapters.Conclusion = text
		}
	}

	return chapters, nil
}
