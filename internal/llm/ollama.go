package llm

import "fmt"

const defaultOllamaURL = "http://localhost:11434/v1"

// NewOllamaProvider targets a local Ollama server through its OpenAI-compatible
// endpoint, keeping health data on the machine. No API key is required.
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaURL
	}
	if config.APIKey == "" {
		config.APIKey = "ollama"
	}
	if config.Timeout == 0 {
		config.Timeout = 60
	}
	return newChatProvider("ollama", config), nil
}
