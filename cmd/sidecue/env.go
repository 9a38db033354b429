package main

import (
	"os"

	"github.com/sidecue/sidecue/internal/config"
)

// applyConfigToEnv populates provider environment variables from the
// saved config. Config wins over potentially stale shell variables so
// that saved setup choices take effect without a new shell.
func applyConfigToEnv(cfg *config.Config) {
	if cfg.Provider != "" {
		os.Setenv("SIDECUE_PROVIDER", cfg.Provider)
	}
	if cfg.ModelChain != "" {
		os.Setenv("SIDECUE_MODEL_CHAIN", cfg.ModelChain)
	}
	if cfg.APIKey != "" {
		switch cfg.Provider {
		case "openai":
			os.Setenv("OPENAI_API_KEY", cfg.APIKey)
		case "anthropic":
			os.Setenv("ANTHROPIC_API_KEY", cfg.APIKey)
		case "deepseek":
			os.Setenv("DEEPSEEK_API_KEY", cfg.APIKey)
		case "groq":
			os.Setenv("GROQ_API_KEY", cfg.APIKey)
		}
	}
	if cfg.Model != "" {
		switch cfg.Provider {
		case "openai":
			os.Setenv("OPENAI_MODEL", cfg.Model)
		case "anthropic":
			os.Setenv("ANTHROPIC_MODEL", cfg.Model)
		case "deepseek":
			os.Setenv("DEEPSEEK_MODEL", cfg.Model)
		case "groq":
			os.Setenv("GROQ_MODEL", cfg.Model)
		case "ollama":
			os.Setenv("OLLAMA_MODEL", cfg.Model)
		}
	}
	if cfg.BaseURL != "" {
		switch cfg.Provider {
		case "openai":
			os.Setenv("OPENAI_BASE_URL", cfg.BaseURL)
		case "ollama":
			os.Setenv("OLLAMA_BASE_URL", cfg.BaseURL)
		}
	}
}
