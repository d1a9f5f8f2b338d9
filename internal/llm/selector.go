package llm

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/scholarai/discovery-service/internal/config"
)

// remoteProvider is a Provider that may or may not carry credentials.
type remoteProvider interface {
	Provider
	Configured() bool
}

// Selector picks the active summarization provider per request. Selection
// is never cached, so a local server started mid-session is picked up on
// the next request.
type Selector struct {
	mode   string
	local  LocalProvider
	remote remoteProvider
	logger zerolog.Logger
}

// NewSelector creates a provider selector for the configured mode.
func NewSelector(cfg config.LLMConfig, local LocalProvider, remote remoteProvider, logger zerolog.Logger) *Selector {
	return &Selector{
		mode:   strings.ToLower(cfg.Mode),
		local:  local,
		remote: remote,
		logger: logger.With().Str("component", "llm_selector").Logger(),
	}
}

// Select returns the provider to use for one summarization request.
//
// Mode "openai" picks the remote provider when a key is configured and
// otherwise falls through to auto selection. Mode "ollama" picks the
// local provider unconditionally, without probing, so misconfiguration
// surfaces as a call failure rather than silent fallback. Auto mode
// probes the local server first and falls back to the remote provider;
// ErrNoProvider is returned when neither is usable.
func (s *Selector) Select(ctx context.Context) (Provider, error) {
	if s.mode == config.ProviderModeOpenAI && s.remote.Configured() {
		return s.remote, nil
	}
	if s.mode == config.ProviderModeOllama {
		return s.local, nil
	}

	if s.local.Available(ctx) {
		return s.local, nil
	}
	s.logger.Debug().Msg("local provider unavailable, checking remote fallback")
	if s.remote.Configured() {
		return s.remote, nil
	}
	return nil, ErrNoProvider
}

// LocalAvailable probes the local provider for health reporting.
func (s *Selector) LocalAvailable(ctx context.Context) bool {
	return s.local.Available(ctx)
}

// ActiveName returns the name of the provider Select would currently
// pick, or empty when none is available.
func (s *Selector) ActiveName(ctx context.Context) string {
	p, err := s.Select(ctx)
	if err != nil {
		return ""
	}
	return p.Name()
}
