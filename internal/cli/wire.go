package cli

import (
	"moodify/internal/ai"
	"moodify/internal/config"
	"moodify/internal/existence"
	"moodify/internal/playlist"
)

// newGenerator wires the pipeline from cfg. The existence cache lives as
// long as the returned generator.
func newGenerator(cfg config.Config) *playlist.Generator {
	client := ai.NewGeminiClient(ai.GeminiOptions{
		BaseURL:  cfg.Gemini.BaseURL,
		APIKey:   cfg.Gemini.APIKey,
		Versions: cfg.Gemini.VersionList(),
		Timeout:  cfg.Gemini.Timeout,
		Breaker:  cfg.Gemini.Breaker,
	})
	checker := existence.NewChecker(existence.CheckerOptions{
		BaseURL:      cfg.Search.BaseURL,
		UserAgent:    cfg.Search.UserAgent,
		Timeout:      cfg.Search.Timeout,
		MaxBodyBytes: cfg.Search.MaxBodyBytes,
	})
	validator := existence.NewValidator(checker, existence.NewCache(cfg.Cache.Capacity))
	return playlist.NewGenerator(playlist.GeneratorOptions{
		Client:    client,
		Model:     cfg.Gemini.Model,
		Validator: validator,
	})
}
