package pipeline

import (
	"github.com/sweetpotato0/docqa/cache"
	"github.com/sweetpotato0/docqa/react"
)

// Config holds pipeline settings.
type Config struct {
	AnalyzerPrompt   string
	SynthesisPrompt  string
	MaxIterations    int
	ObservationLimit int
	TopChunks        int
	Grader           *react.Grader
	MaxAttempts      int
	ResultCache      cache.Store
}

// Option configures the pipeline.
type Option func(*Config)

// WithAnalyzerPrompt overrides the analyze stage prompt.
func WithAnalyzerPrompt(prompt string) Option {
	return func(c *Config) {
		if prompt != "" {
			c.AnalyzerPrompt = prompt
		}
	}
}

// WithSynthesisPrompt overrides the synthesize stage prompt.
func WithSynthesisPrompt(prompt string) Option {
	return func(c *Config) {
		if prompt != "" {
			c.SynthesisPrompt = prompt
		}
	}
}

// WithMaxIterations caps the evidence-gathering loop (default 5).
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithObservationLimit caps tool observation length (default 500).
func WithObservationLimit(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ObservationLimit = n
		}
	}
}

// WithTopChunks overrides how many global nearest chunks feed the file
// ranking (default 20).
func WithTopChunks(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TopChunks = n
		}
	}
}

// WithSelfCorrection wraps the evidence-gathering loop with grading and
// bounded retries.
func WithSelfCorrection(grader *react.Grader) Option {
	return func(c *Config) {
		c.Grader = grader
	}
}

// WithMaxAttempts caps self-correction retries (default 5). Only meaningful
// together with WithSelfCorrection.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// WithResultCache stores finished results keyed by the question, so repeated
// questions skip the pipeline.
func WithResultCache(store cache.Store) Option {
	return func(c *Config) {
		c.ResultCache = store
	}
}
