package ai

import (
	"context"

	"github.com/inkwell-hq/inkwell/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.ai",
	fx.Provide(NewTextGeneratorFromConfig),
	fx.Provide(NewImageGeneratorFromConfig),
)

func NewTextGeneratorFromConfig(cfg config.Config) (TextGenerator, error) {
	return NewGemini(context.Background(), GeminiConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
}

func NewImageGeneratorFromConfig(cfg config.Config) (ImageGenerator, error) {
	return NewClipDrop(ClipDropConfig{
		APIKey:  cfg.ClipDropAPIKey,
		BaseURL: cfg.ClipDropBaseURL,
	})
}
