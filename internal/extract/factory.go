package extract

import (
	"fmt"

	"github.com/meetscribe/meetscribe/internal/config"
	"github.com/meetscribe/meetscribe/internal/extract/anthropic"
	"github.com/meetscribe/meetscribe/internal/extract/mock"
	"github.com/meetscribe/meetscribe/internal/extract/ollama"
	"github.com/meetscribe/meetscribe/internal/extract/openai"
	"github.com/meetscribe/meetscribe/pkg/models"
)

// NewProvider constructs the appropriate extraction provider based on config.
// Called once at server startup.
func NewProvider(cfg config.ExtractConfig) (models.Extractor, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider %q: must be one of openai, anthropic, ollama, mock", cfg.Provider)
	}
}
