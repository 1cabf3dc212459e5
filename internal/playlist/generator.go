package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"moodify/internal/ai"
	"moodify/internal/metrics"
)

// TextGenerator returns the raw generation response for prompt.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type GeneratorOptions struct {
	Client    TextGenerator
	Model     string
	Validator Validator
}

// Generator runs the full recommendation pipeline for one descriptor.
type Generator struct {
	client    TextGenerator
	model     string
	assembler *Assembler
}

func NewGenerator(opts GeneratorOptions) *Generator {
	model := opts.Model
	if model == "" {
		model = ai.DefaultModel
	}
	return &Generator{
		client:    opts.Client,
		model:     model,
		assembler: NewAssembler(opts.Validator),
	}
}

var lineBreakRE = regexp.MustCompile(`\r?\n`)

// Generate returns exactly ResultSize decorated songs for d. Only a failed
// or empty generation call is reported as an error.
func (g *Generator) Generate(ctx context.Context, d ai.Descriptor) ([]string, error) {
	prompt := ai.BuildPrompt(d)

	raw, err := g.client.Generate(ctx, g.model, prompt)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		slog.Error("error while calling model", "model", g.model, "err", err)
		return nil, fmt.Errorf("error contacting gemini api (model=%s): %w", g.model, err)
	}
	if strings.TrimSpace(raw) == "" {
		metrics.Recommendations.WithLabelValues("empty").Inc()
		slog.Warn("empty response from gemini api", "model", g.model)
		return nil, ai.ErrEmptyResponse
	}
	slog.Debug("gemini response", "body", raw)

	text := ai.SanitizeText(ai.ExtractText(raw))
	songs := g.assembler.Assemble(ctx, lineBreakRE.Split(text, -1))
	metrics.Recommendations.WithLabelValues("ok").Inc()
	return songs, nil
}
