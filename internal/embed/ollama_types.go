package embed

import "time"

const (
	// DefaultOllamaHost is where a stock `ollama serve` listens.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is used when embeddings.model is empty.
	DefaultOllamaModel = "nomic-embed-text"

	// OllamaConnectTimeout is added to the request timeout for the
	// discovery calls made by NewOllamaEmbedder.
	OllamaConnectTimeout = 5 * time.Second

	// OllamaPoolSize is the idle connection pool size.
	OllamaPoolSize = 4
)

// OllamaConfig configures an OllamaEmbedder. Zero fields take the values
// from DefaultOllamaConfig.
type OllamaConfig struct {
	Host  string
	Model string

	// Dimensions fixes the vector length. 0 detects it with a probe request.
	Dimensions int

	// Timeout bounds a single /api/embed call.
	Timeout time.Duration

	PoolSize int

	// MaxFailures is the number of consecutive failed requests after which
	// calls are rejected without contacting the server.
	MaxFailures int

	// SkipHealthCheck disables model resolution and dimension probing.
	SkipHealthCheck bool
}

// DefaultOllamaConfig returns the configuration for a local server.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:        DefaultOllamaHost,
		Model:       DefaultOllamaModel,
		Timeout:     DefaultTimeout,
		PoolSize:    OllamaPoolSize,
		MaxFailures: 5,
	}
}

// Wire types for the two endpoints the embedder calls.
type (
	embedRequest struct {
		Model string `json:"model"`
		Input string `json:"input"`
	}

	embedResponse struct {
		Model      string      `json:"model"`
		Embeddings [][]float64 `json:"embeddings"`
	}

	tagsResponse struct {
		Models []installedModel `json:"models"`
	}

	installedModel struct {
		Name string `json:"name"`
	}
)
