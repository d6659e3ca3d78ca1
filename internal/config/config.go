package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	verrors "github.com/Aman-CERP/versio/internal/errors"
)

// Strategy names accepted by search.strategy.
const (
	StrategyLexical  = "lexical"
	StrategySemantic = "semantic"
	StrategyFusion   = "fusion"
)

// Embedding providers accepted by embeddings.provider.
const (
	ProviderStatic = "static"
	ProviderOllama = "ollama"
)

// Config represents the complete versio configuration.
type Config struct {
	Version     int               `yaml:"version" json:"version"`
	Paths       PathsConfig       `yaml:"paths" json:"paths"`
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking"`
	BM25        BM25Config        `yaml:"bm25" json:"bm25"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Embeddings  EmbeddingsConfig  `yaml:"embeddings" json:"embeddings"`
	Performance PerformanceConfig `yaml:"performance" json:"performance"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// PathsConfig locates the source corpus and the indexed database.
type PathsConfig struct {
	// CorpusDB is the source corpus copied by `versio index`.
	CorpusDB string `yaml:"corpus_db" json:"corpus_db" validate:"required"`
	// OutDir receives the derived index database.
	OutDir string `yaml:"out_dir" json:"out_dir"`
	// IndexDB overrides the derived index database path.
	// Empty means OutDir/scriptures_chunk{max}_overlap{overlap}.db.
	IndexDB string `yaml:"index_db" json:"index_db"`
}

// ChunkingConfig configures sentence chunking for embeddings.
type ChunkingConfig struct {
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"gte=1"`
	// Overlap is recorded in the output name and index state only.
	// Chunks never share sentences.
	Overlap int `yaml:"overlap" json:"overlap" validate:"gte=0"`
}

// BM25Config holds the BM25 saturation and length-normalisation constants.
type BM25Config struct {
	K1 float64 `yaml:"k1" json:"k1" validate:"gte=0"`
	B  float64 `yaml:"b" json:"b" validate:"gte=0,lte=1"`
}

// SearchConfig configures the query engines.
type SearchConfig struct {
	Strategy   string        `yaml:"strategy" json:"strategy" validate:"oneof=lexical semantic fusion"`
	Threshold  float64       `yaml:"threshold" json:"threshold" validate:"gte=-1,lte=1"`
	MaxResults int           `yaml:"max_results" json:"max_results" validate:"gte=1"`
	Volumes    VolumesConfig `yaml:"volumes" json:"volumes"`

	// LexicalVolumeFilter applies the volume flags to BM25 search as well.
	// Disable to rank lexical hits across every volume.
	LexicalVolumeFilter bool `yaml:"lexical_volume_filter" json:"lexical_volume_filter"`

	// PhraseFilter treats "quoted phrases" in a query as required substrings.
	PhraseFilter bool `yaml:"phrase_filter" json:"phrase_filter"`
}

// VolumesConfig holds the per-volume inclusion flags.
type VolumesConfig struct {
	BookOfMormon         bool `yaml:"book_of_mormon" json:"book_of_mormon"`
	DoctrineAndCovenants bool `yaml:"doctrine_and_covenants" json:"doctrine_and_covenants"`
	NewTestament         bool `yaml:"new_testament" json:"new_testament"`
	OldTestament         bool `yaml:"old_testament" json:"old_testament"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	Provider   string `yaml:"provider" json:"provider" validate:"oneof=static ollama"`
	Model      string `yaml:"model" json:"model"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host" validate:"omitempty,url"`
	// Dimensions is the static embedder width. Ollama reports its own.
	Dimensions int `yaml:"dimensions" json:"dimensions" validate:"gte=0"`
	// CacheSize is the number of query embeddings kept in memory.
	CacheSize         int           `yaml:"cache_size" json:"cache_size" validate:"gte=0"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries" validate:"gte=0"`
	RetryInitialDelay time.Duration `yaml:"retry_initial_delay" json:"retry_initial_delay" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

// PerformanceConfig configures performance tuning options.
type PerformanceConfig struct {
	IndexWorkers  int `yaml:"index_workers" json:"index_workers" validate:"gte=1"`
	SQLiteCacheMB int `yaml:"sqlite_cache_mb" json:"sqlite_cache_mb" validate:"gte=1"` // default: 64
}

// LoggingConfig configures the structured log file.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb" validate:"gte=1"`
	MaxFiles  int    `yaml:"max_files" json:"max_files" validate:"gte=1"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			CorpusDB: "scriptures.db",
			OutDir:   ".",
		},
		Chunking: ChunkingConfig{
			MaxTokens: 128,
			Overlap:   16,
		},
		BM25: BM25Config{
			K1: 1.5,
			B:  0.75,
		},
		Search: SearchConfig{
			Strategy:   StrategyFusion,
			Threshold:  0.7,
			MaxResults: 30,
			Volumes: VolumesConfig{
				BookOfMormon:         true,
				DoctrineAndCovenants: true,
				NewTestament:         true,
				OldTestament:         true,
			},
			LexicalVolumeFilter: true,
			PhraseFilter:        true,
		},
		Embeddings: EmbeddingsConfig{
			Provider:          ProviderStatic,
			Model:             "nomic-embed-text",
			OllamaHost:        "", // Empty uses default http://localhost:11434
			Dimensions:        384,
			CacheSize:         256,
			MaxRetries:        3,
			RetryInitialDelay: 500 * time.Millisecond,
			Timeout:           30 * time.Second,
		},
		Performance: PerformanceConfig{
			IndexWorkers:  runtime.NumCPU(),
			SQLiteCacheMB: 64,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      "", // Empty uses ~/.versio/logs/versio.log
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// IndexFileName returns the derived index database name for the chunking
// parameters, e.g. scriptures_chunk128_overlap16.db.
func IndexFileName(maxTokens, overlap int) string {
	return fmt.Sprintf("scriptures_chunk%d_overlap%d.db", maxTokens, overlap)
}

// IndexDBPath returns the database that holds the indexes.
func (c *Config) IndexDBPath() string {
	if c.Paths.IndexDB != "" {
		return c.Paths.IndexDB
	}
	return filepath.Join(c.Paths.OutDir, IndexFileName(c.Chunking.MaxTokens, c.Chunking.Overlap))
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/versio/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/versio/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "versio", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "versio", "config.yaml")
	}
	return filepath.Join(home, ".config", "versio", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the given project directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/versio/config.yaml)
//  3. Project config (.versio.yaml in dir)
//  4. Environment variables (VERSIO_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, preferring
// .versio.yaml over .versio.yml. Empty when neither exists.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{".versio.yaml", ".versio.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadFromFile applies .versio.yaml or .versio.yml from dir if present.
func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

// loadYAML decodes path over the current values. Keys absent from the file
// keep their current value, so an explicit false or 0 in the file wins.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return verrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax and field names, or run 'versio config init' to regenerate it")
	}
	return nil
}

// applyEnvOverrides applies VERSIO_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"VERSIO_CORPUS_DB":           &c.Paths.CorpusDB,
		"VERSIO_OUT_DIR":             &c.Paths.OutDir,
		"VERSIO_INDEX_DB":            &c.Paths.IndexDB,
		"VERSIO_STRATEGY":            &c.Search.Strategy,
		"VERSIO_EMBEDDINGS_PROVIDER": &c.Embeddings.Provider,
		"VERSIO_EMBEDDINGS_MODEL":    &c.Embeddings.Model,
		"VERSIO_OLLAMA_HOST":         &c.Embeddings.OllamaHost,
		"VERSIO_LOG_LEVEL":           &c.Logging.Level,
		"VERSIO_LOG_FILE":            &c.Logging.File,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"VERSIO_CHUNK_MAX_TOKENS": &c.Chunking.MaxTokens,
		"VERSIO_CHUNK_OVERLAP":    &c.Chunking.Overlap,
		"VERSIO_MAX_RESULTS":      &c.Search.MaxResults,
		"VERSIO_INDEX_WORKERS":    &c.Performance.IndexWorkers,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return envError(key, v, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"VERSIO_THRESHOLD": &c.Search.Threshold,
		"VERSIO_BM25_K1":   &c.BM25.K1,
		"VERSIO_BM25_B":    &c.BM25.B,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return envError(key, v, err)
			}
			*dst = f
		}
	}

	bools := map[string]*bool{
		"VERSIO_PHRASE_FILTER":         &c.Search.PhraseFilter,
		"VERSIO_LEXICAL_VOLUME_FILTER": &c.Search.LexicalVolumeFilter,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return envError(key, v, err)
			}
			*dst = b
		}
	}

	return nil
}

func envError(key, value string, cause error) error {
	return verrors.ConfigError(fmt.Sprintf("invalid value %q for %s", value, key), cause).
		WithDetail("env", key)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML key so messages match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return verrors.ConfigError(formatFieldError(fieldErrs[0]), err).
				WithSuggestion("Fix the value in your config file or VERSIO_* environment")
		}
		return verrors.ConfigError("invalid configuration", err)
	}

	if c.Chunking.Overlap >= c.Chunking.MaxTokens {
		return verrors.ConfigError(fmt.Sprintf(
			"chunking.overlap must be less than chunking.max_tokens, got %d >= %d",
			c.Chunking.Overlap, c.Chunking.MaxTokens), nil)
	}
	if c.Embeddings.Provider == ProviderOllama && c.Embeddings.Model == "" {
		return verrors.ConfigError("embeddings.model is required for the ollama provider", nil)
	}

	return nil
}

// formatFieldError turns a validator failure into "search.strategy must be ...".
func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s, got %v", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be > %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
