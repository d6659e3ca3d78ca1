package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aman-CERP/versio/internal/config"
	verrors "github.com/Aman-CERP/versio/internal/errors"
)

// ProviderType represents an embedding provider
type ProviderType string

const (
	// ProviderStatic uses hash-based embeddings (offline, deterministic).
	ProviderStatic ProviderType = config.ProviderStatic

	// ProviderOllama uses the Ollama HTTP API.
	ProviderOllama ProviderType = config.ProviderOllama
)

// String returns the string representation of ProviderType
func (p ProviderType) String() string {
	return string(p)
}

// ParseProvider converts a string to ProviderType.
func ParseProvider(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "":
		return ProviderStatic, nil
	case "ollama":
		return ProviderOllama, nil
	default:
		return "", verrors.New(verrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown embedding provider %q", s), nil).
			WithSuggestion("Use one of: " + strings.Join(ValidProviders(), ", "))
	}
}

// ValidProviders returns all valid provider names
func ValidProviders() []string {
	return []string{string(ProviderStatic), string(ProviderOllama)}
}

// NewEmbedder creates the embedder named by cfg.Provider. The result is
// wrapped in a CachedEmbedder unless cfg.CacheSize is 0.
//
// There is no silent fallback: an unreachable Ollama is an error, since an
// index built by one model cannot be queried with another.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingsConfig) (Embedder, error) {
	provider, err := ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	var embedder Embedder
	switch provider {
	case ProviderOllama:
		ollamaCfg := DefaultOllamaConfig()
		if cfg.OllamaHost != "" {
			ollamaCfg.Host = cfg.OllamaHost
		}
		if cfg.Model != "" {
			ollamaCfg.Model = cfg.Model
		}
		if cfg.Timeout > 0 {
			ollamaCfg.Timeout = cfg.Timeout
		}
		ollama, err := NewOllamaEmbedder(ctx, ollamaCfg)
		if err != nil {
			return nil, fmt.Errorf("ollama unavailable: %w", err)
		}
		embedder = ollama
	default:
		embedder = NewStaticEmbedderWithDimensions(cfg.Dimensions)
	}

	slog.Debug("embedder_created",
		slog.String("provider", provider.String()),
		slog.String("model", embedder.ModelName()),
		slog.Int("dimensions", embedder.Dimensions()),
		slog.Int("cache_size", cfg.CacheSize))

	if cfg.CacheSize > 0 {
		embedder = NewCachedEmbedder(embedder, cfg.CacheSize)
	}
	return embedder, nil
}

// EmbedderInfo contains information about an embedder
type EmbedderInfo struct {
	Provider   ProviderType
	Model      string
	Dimensions int
	Available  bool
}

// GetInfo returns information about an embedder
func GetInfo(ctx context.Context, embedder Embedder) EmbedderInfo {
	info := EmbedderInfo{
		Provider:   ProviderStatic,
		Model:      embedder.ModelName(),
		Dimensions: embedder.Dimensions(),
		Available:  embedder.Available(ctx),
	}

	inner := embedder
	if cached, ok := embedder.(*CachedEmbedder); ok {
		inner = cached.Inner()
	}
	if _, ok := inner.(*OllamaEmbedder); ok {
		info.Provider = ProviderOllama
	}
	return info
}
