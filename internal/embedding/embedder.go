// Package embedding selects the text embedder described by configuration.
package embedding

import (
	"fmt"
	"time"

	"productrag/internal/config"
	"productrag/internal/domain"
	"productrag/internal/embedding/hash"
	"productrag/internal/embedding/openai"
)

// New returns the embedder named by cfg.Type.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "", "hash":
		return hash.New(cfg.Dimension), nil
	case "openai":
		oc := config.OpenAIEmbedderConfig{}
		if cfg.OpenAI != nil {
			oc = *cfg.OpenAI
		}
		c, err := openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Dimension: cfg.Dimension,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unknown embedder type %q", domain.ErrInvalidArgument, cfg.Type)
	}
}
