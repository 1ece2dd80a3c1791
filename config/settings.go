// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	LLM       LLMConfig
	Server    ServerConfig
	Data      DataConfig
	Retrieval RetrievalConfig
	Embedding EmbeddingConfig
	Log       LogConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string // empty means the pipeline is not ready
	MaxTokens   uint32
	Temperature float64
	CallTimeout time.Duration
}

// ServerConfig holds HTTP endpoint configuration.
type ServerConfig struct {
	Addr           string
	RequestTimeout time.Duration
}

// DataConfig holds SQL store configuration.
type DataConfig struct {
	SQLitePath  string
	MaxRows     int
	ToolTimeout time.Duration
}

// RetrievalConfig holds document index configuration.
type RetrievalConfig struct {
	TopK             int
	Backend          string // file, chroma, pgvector
	IndexPath        string
	ChromaURL        string
	ChromaCollection string
	PgVectorDSN      string
	PgVectorTable    string
}

// EmbeddingConfig holds query embedder configuration.
type EmbeddingConfig struct {
	Backend   string // ollama, openai
	Model     string
	OllamaURL string
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-3.5-turbo", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-haiku-4-5", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// DefaultOllamaEmbeddingModel is the embedding model used when none is set.
const DefaultOllamaEmbeddingModel = "nomic-embed-text"

var indexBackends = map[string]bool{"file": true, "chroma": true, "pgvector": true}

var embedderBackends = map[string]bool{"ollama": true, "openai": true}

// New creates settings for the specified provider, loading values from environment variables.
// An empty provider falls back to LLM_PROVIDER, then openai.
// Returns an error if the provider is unknown or environment variables contain invalid values.
// A missing API key is not an error; it leaves LLM.APIKey empty.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = getEnvString("LLM_PROVIDER", "openai")
	}
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	s.LLM = LLMConfig{
		Provider: provider,
		Model:    getEnvString(info.modelEnv, info.defaultModel),
		APIKey:   os.Getenv(info.apiKeyEnv),
	}
	s.LLM.MaxTokens, err = getEnvUint32("LLM_MAX_TOKENS", 1024)
	collect(err)
	s.LLM.Temperature, err = getEnvFloat64("LLM_TEMPERATURE", 0)
	collect(err)
	s.LLM.CallTimeout, err = getEnvDuration("LLM_CALL_TIMEOUT", 30*time.Second)
	collect(err)

	s.Server.Addr = getEnvString("SERVER_ADDR", ":8000")
	s.Server.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 60*time.Second)
	collect(err)

	s.Data.SQLitePath = getEnvString("SQLITE_PATH", "healthcare.db")
	s.Data.MaxRows, err = getEnvInt("SQL_MAX_ROWS", 200)
	collect(err)
	s.Data.ToolTimeout, err = getEnvDuration("TOOL_TIMEOUT", 20*time.Second)
	collect(err)

	s.Retrieval = RetrievalConfig{
		Backend:          strings.ToLower(getEnvString("INDEX_BACKEND", "file")),
		IndexPath:        getEnvString("INDEX_PATH", "pdf_index.json"),
		ChromaURL:        getEnvString("CHROMA_URL", "http://localhost:8001"),
		ChromaCollection: getEnvString("CHROMA_COLLECTION", "healthcare_docs"),
		PgVectorDSN:      os.Getenv("PGVECTOR_DSN"),
		PgVectorTable:    getEnvString("PGVECTOR_TABLE", "document_chunks"),
	}
	s.Retrieval.TopK, err = getEnvInt("RETRIEVAL_TOP_K", 5)
	collect(err)

	s.Embedding = EmbeddingConfig{
		Backend:   strings.ToLower(getEnvString("EMBEDDER", "ollama")),
		Model:     getEnvString("EMBEDDING_MODEL", DefaultOllamaEmbeddingModel),
		OllamaURL: getEnvString("OLLAMA_URL", "http://localhost:11434"),
	}

	s.Log = LogConfig{
		Level:  getEnvString("LOG_LEVEL", "info"),
		Format: getEnvString("LOG_FORMAT", "text"),
	}

	if len(errs) > 0 {
		return Settings{}, errs[0]
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// Validate checks value ranges and backend names.
func (s Settings) Validate() error {
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", s.Retrieval.TopK)
	}
	if s.Data.MaxRows <= 0 {
		return fmt.Errorf("SQL_MAX_ROWS must be positive, got %d", s.Data.MaxRows)
	}
	if s.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", s.Server.RequestTimeout)
	}
	if !indexBackends[s.Retrieval.Backend] {
		return fmt.Errorf("unknown index backend: %q", s.Retrieval.Backend)
	}
	if !embedderBackends[s.Embedding.Backend] {
		return fmt.Errorf("unknown embedder: %q", s.Embedding.Backend)
	}
	if s.Retrieval.Backend == "pgvector" && s.Retrieval.PgVectorDSN == "" {
		return fmt.Errorf("PGVECTOR_DSN is required for the pgvector backend")
	}
	return nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
