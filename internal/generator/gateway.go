package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bryanpdl/briefly/internal/apperr"
)

// Gateway turns form data into brief text and regenerates single sections.
type Gateway struct {
	llm    LLMClient
	logger *slog.Logger
}

// NewGateway creates a Gateway over llm.
func NewGateway(llm LLMClient, logger *slog.Logger) (*Gateway, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{llm: llm, logger: logger}, nil
}

// Generate produces the full brief text for form.
func (g *Gateway) Generate(ctx context.Context, form FormData) (string, error) {
	if err := form.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	prompt := BuildBriefPrompt(form)
	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		g.logger.Error("brief generation failed", "project", form.ProjectName, "error", err)
		return "", fmt.Errorf("%w: %w", apperr.ErrGeneration, err)
	}
	text := Clean(raw)
	if text == "" {
		return "", fmt.Errorf("%w: model returned empty brief", apperr.ErrGeneration)
	}
	g.logger.Info("brief generated", "project", form.ProjectName, "bytes", len(text))
	return text, nil
}

// RegenerateSection asks for a new body for the section titled title within brief.
// The returned text never includes the heading.
func (g *Gateway) RegenerateSection(ctx context.Context, brief, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: section title is required", apperr.ErrInvalidInput)
	}
	raw, err := g.llm.Complete(ctx, BuildSectionPrompt(brief, title))
	if err != nil {
		g.logger.Error("section regeneration failed", "section", title, "error", err)
		return "", fmt.Errorf("%w: %w", apperr.ErrGeneration, err)
	}
	text := CleanSection(raw, title)
	if text == "" {
		return "", fmt.Errorf("%w: model returned empty section", apperr.ErrGeneration)
	}
	return text, nil
}
