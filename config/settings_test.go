package config

import (
	"os"
	"testing"
	"time"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{
		"LLM_PROVIDER", "OPENAI_MODEL", "LLM_TEMPERATURE", "REQUEST_TIMEOUT",
		"RETRIEVAL_TOP_K", "SQL_MAX_ROWS", "INDEX_BACKEND", "EMBEDDER",
	} {
		t.Setenv(key, "")
	}

	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
	if settings.LLM.Model != "gpt-3.5-turbo" {
		t.Errorf("expected model 'gpt-3.5-turbo', got %q", settings.LLM.Model)
	}
	if settings.LLM.Temperature != 0 {
		t.Errorf("expected temperature 0, got %v", settings.LLM.Temperature)
	}
	if settings.Retrieval.TopK != 5 {
		t.Errorf("expected top-k 5, got %d", settings.Retrieval.TopK)
	}
	if settings.Data.MaxRows != 200 {
		t.Errorf("expected 200 max rows, got %d", settings.Data.MaxRows)
	}
	if settings.Server.RequestTimeout != 60*time.Second {
		t.Errorf("expected 60s request timeout, got %s", settings.Server.RequestTimeout)
	}
	if settings.Retrieval.Backend != "file" {
		t.Errorf("expected file index backend, got %q", settings.Retrieval.Backend)
	}
}

func TestNewMissingAPIKeyIsNotAnError(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.APIKey != "" {
		t.Errorf("expected empty API key, got %q", settings.LLM.APIKey)
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Setenv("OPENAI_API_KEY", "test-key")
	defer os.Setenv("OPENAI_API_KEY", original)

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	original := os.Getenv("LLM_MAX_TOKENS")
	os.Setenv("LLM_MAX_TOKENS", "not-a-number")
	defer os.Setenv("LLM_MAX_TOKENS", original)

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestNewDurationFormats(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "15")
	t.Setenv("LLM_CALL_TIMEOUT", "1500ms")

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Server.RequestTimeout != 15*time.Second {
		t.Errorf("expected 15s, got %s", settings.Server.RequestTimeout)
	}
	if settings.LLM.CallTimeout != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %s", settings.LLM.CallTimeout)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	t.Setenv("INDEX_BACKEND", "faiss")

	if _, err := New("openai"); err == nil {
		t.Error("expected error for unknown index backend")
	}
}

func TestNewPgVectorRequiresDSN(t *testing.T) {
	t.Setenv("INDEX_BACKEND", "pgvector")
	t.Setenv("PGVECTOR_DSN", "")

	if _, err := New("openai"); err == nil {
		t.Error("expected error for pgvector without DSN")
	}
}

func TestNewRejectsNonPositiveTopK(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "0")

	if _, err := New("openai"); err == nil {
		t.Error("expected error for zero top-k")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	if len(providers) != 4 {
		t.Errorf("expected 4 supported providers, got %d", len(providers))
	}
}
