package llm

import (
	"context"
	"fmt"
	"net/http"
)

// CompletionRequest is one chat-style completion: a system instruction
// followed by the user's text.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
}

// Stream is a lazy, ordered sequence of text fragments.
type Stream interface {
	// Recv returns the next non-empty fragment, or io.EOF once the stream
	// has ended normally.
	Recv() (string, error)
	// Close releases the underlying connection.
	Close() error
}

// Provider represents LLM provider interface
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// StreamCompletion opens a streaming completion bound to ctx.
	StreamCompletion(ctx context.Context, req CompletionRequest) (Stream, error)
}

// ProviderConfig carries what a provider needs to reach its API.
type ProviderConfig struct {
	APIKey     string
	BaseURL    string
	Headers    map[string]string
	HTTPClient *http.Client // optional; NewHTTPClient(Headers) when nil
}

// ProviderFactory is a function that creates a new Provider
type ProviderFactory func(ProviderConfig) (Provider, error)

var providerFactories = make(map[string]ProviderFactory)

// RegisterProvider makes provider available by name
func RegisterProvider(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

// GetProvider creates a new provider by name
func GetProvider(name string, cfg ProviderConfig) (Provider, error) {
	factory, ok := providerFactories[name]
	if !ok {
		return nil, NewLLMError(ConfigError, fmt.Sprintf("unknown provider: %s", name), nil)
	}
	return factory(cfg)
}
