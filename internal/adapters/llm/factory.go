package llm

import (
	"fmt"
	"strings"
)

// NewProvider builds the provider named by config.Provider.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "", "gemini":
		return NewGeminiProvider(config)
	case "openai":
		return NewOpenAIProvider(config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, config.Provider)
	}
}
