package providers

import (
	"fmt"
	"os"
	"strings"

	"github.com/sidecue/sidecue/internal/llm"
)

// NewCandidateFromEnv creates one llm.Candidate for a named provider tier
// based on environment variables.
func NewCandidateFromEnv(provider string) (llm.Candidate, error) {
	switch provider {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return llm.Candidate{}, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}

		modelName := os.Getenv("ANTHROPIC_MODEL")
		if modelName == "" {
			modelName = "claude-3-5-sonnet-20241022"
		}

		client, err := NewAnthropicClient(apiKey, modelName)
		if err != nil {
			return llm.Candidate{}, fmt.Errorf("failed to create Anthropic client: %w", err)
		}

		return llm.Candidate{Model: modelName, Client: client}, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return llm.Candidate{}, fmt.Errorf("OPENAI_API_KEY not set")
		}

		modelName := os.Getenv("OPENAI_MODEL")
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}

		baseURL := os.Getenv("OPENAI_BASE_URL") // For OpenAI-compatible APIs

		client, err := NewOpenAIClient(apiKey, modelName, baseURL)
		if err != nil {
			return llm.Candidate{}, fmt.Errorf("failed to create OpenAI client: %w", err)
		}

		return llm.Candidate{Model: modelName, Client: client}, nil

	case "deepseek":
		// DeepSeek (OpenAI-compatible)
		apiKey := os.Getenv("DEEPSEEK_API_KEY")
		if apiKey == "" {
			return llm.Candidate{}, fmt.Errorf("DEEPSEEK_API_KEY not set")
		}

		modelName := os.Getenv("DEEPSEEK_MODEL")
		if modelName == "" {
			modelName = "deepseek-chat"
		}

		client, err := NewOpenAIClient(apiKey, modelName, "https://api.deepseek.com/v1")
		if err != nil {
			return llm.Candidate{}, fmt.Errorf("failed to create DeepSeek client: %w", err)
		}

		return llm.Candidate{Model: modelName, Client: client}, nil

	case "groq":
		// Groq (OpenAI-compatible, very fast inference)
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return llm.Candidate{}, fmt.Errorf("GROQ_API_KEY not set")
		}

		modelName := os.Getenv("GROQ_MODEL")
		if modelName == "" {
			modelName = "llama-3.1-70b-versatile"
		}

		client, err := NewOpenAIClient(apiKey, modelName, "https://api.groq.com/openai/v1")
		if err != nil {
			return llm.Candidate{}, fmt.Errorf("failed to create Groq client: %w", err)
		}

		return llm.Candidate{Model: modelName, Client: client}, nil

	case "ollama":
		// Ollama local server (OpenAI-compatible)
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}

		modelName := os.Getenv("OLLAMA_MODEL")
		if modelName == "" {
			modelName = "llama3.1"
		}

		apiKey := os.Getenv("OLLAMA_API_KEY")
		if apiKey == "" {
			apiKey = "ollama"
		}

		client, err := NewOpenAIClient(apiKey, modelName, baseURL)
		if err != nil {
			return llm.Candidate{}, fmt.Errorf("failed to create Ollama client: %w", err)
		}

		return llm.Candidate{Model: modelName, Client: client}, nil

	default:
		return llm.Candidate{}, fmt.Errorf("unknown provider: %s (supported: anthropic, openai, deepseek, groq, ollama)", provider)
	}
}

// NewChainFromEnv builds the ordered fallback chain from SIDECUE_MODEL_CHAIN,
// a comma-separated provider list. Providers whose credentials are missing
// are skipped; an empty result means no backend is available and callers
// must fall back to canned responses.
func NewChainFromEnv() ([]llm.Candidate, []error) {
	chain := os.Getenv("SIDECUE_MODEL_CHAIN")
	if chain == "" {
		chain = "anthropic,openai"
	}

	var candidates []llm.Candidate
	var skipped []error
	for _, provider := range strings.Split(chain, ",") {
		provider = strings.TrimSpace(provider)
		if provider == "" {
			continue
		}
		cand, err := NewCandidateFromEnv(provider)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		candidates = append(candidates, cand)
	}

	return candidates, skipped
}
