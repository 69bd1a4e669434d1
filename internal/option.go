package internal

import (
	"github.com/bryanpdl/briefly/internal/generator"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	llm    generator.LLMClient
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLLMClient replaces the model client built from the llm config section.
func WithLLMClient(c generator.LLMClient) Option {
	return func(a *application) {
		a.llm = c
	}
}
