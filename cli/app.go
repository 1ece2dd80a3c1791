// Application wiring for CLI commands.
//
// Information Hiding:
// - Backend selection (provider, embedder, index) hidden
// - Resource cleanup hidden behind App.Close

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/richinex/healthrouter/config"
	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/pipeline"
	"github.com/richinex/healthrouter/storage"
	"github.com/richinex/healthrouter/tools"
)

// schemaTimeout bounds schema introspection at startup.
const schemaTimeout = 5 * time.Second

// App holds a wired pipeline and the resources behind it.
type App struct {
	Settings config.Settings
	Pipeline *pipeline.Pipeline
	Logger   *logrus.Logger

	closers []io.Closer
}

// Close releases the store and index handles.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build wires the pipeline from settings. A missing API key is logged and
// yields a pipeline that is not ready; a missing database is an error.
func Build(settings config.Settings) (*App, error) {
	logger := logging.New(settings.Log.Level, settings.Log.Format)
	app := &App{Settings: settings, Logger: logger}

	client, err := createClient(settings)
	if err != nil {
		logger.WithError(err).Warn("LLM backend not configured, agent will not be ready")
	}

	store, err := storage.OpenHealthcare(settings.Data.SQLitePath)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, store)

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	schema, err := store.Schema(ctx)
	if err != nil || len(schema.Tables) == 0 {
		logger.WithError(err).Warn("schema introspection failed, using default schema")
		schema = storage.DefaultSchema()
	}

	embedder, err := createEmbedder(settings)
	if err != nil {
		app.Close()
		return nil, err
	}
	index, err := createIndex(settings, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closer, ok := index.(io.Closer); ok {
		app.closers = append(app.closers, closer)
	}

	sqlTool := tools.NewSQLTool(store, client,
		tools.WithSchema(schema),
		tools.WithMaxRows(settings.Data.MaxRows),
		tools.WithSQLLogger(logger),
	)
	docTool := tools.NewDocumentTool(embedder, index, settings.Retrieval.TopK, logger)

	p, err := pipeline.New(pipeline.Config{
		Client:      client,
		SQL:         sqlTool,
		Document:    docTool,
		Vocabulary:  schema.Vocabulary(),
		ToolTimeout: settings.Data.ToolTimeout,
		Logger:      logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Pipeline = p

	logger.WithFields(logrus.Fields{
		"provider": settings.LLM.Provider,
		"model":    settings.LLM.Model,
		"database": store.Path(),
		"index":    index.Name(),
		"embedder": settings.Embedding.Backend,
		"ready":    p.Ready(),
	}).Info("pipeline initialized")
	return app, nil
}

// createClient builds the LLM client. Without an API key there is no
// client and the pipeline is not ready.
func createClient(settings config.Settings) (*llm.Client, error) {
	if settings.LLM.APIKey == "" {
		return nil, fmt.Errorf("%s: API key not set", settings.LLM.Provider)
	}

	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	provider, err := providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(settings.LLM.APIKey)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(provider, settings.LLM.CallTimeout), nil
}

func createEmbedder(settings config.Settings) (storage.Embedder, error) {
	switch settings.Embedding.Backend {
	case "openai":
		apiKey, err := config.APIKeyFor("openai")
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		model := settings.Embedding.Model
		if model == "" || model == config.DefaultOllamaEmbeddingModel {
			model = llm.ModelOpenAIEmbedding3Small
		}
		return storage.NewOpenAIEmbedder(apiKey, model), nil
	case "ollama", "":
		return storage.NewOllamaEmbedder(settings.Embedding.OllamaURL, settings.Embedding.Model, settings.Data.ToolTimeout), nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", settings.Embedding.Backend)
	}
}

func createIndex(settings config.Settings, logger *logrus.Logger) (storage.Index, error) {
	r := settings.Retrieval
	switch r.Backend {
	case "file", "":
		return storage.NewMemoryIndex(r.IndexPath), nil
	case "chroma":
		return storage.NewChromaIndex(r.ChromaURL, r.ChromaCollection, logger), nil
	case "pgvector":
		index, err := storage.OpenPgVectorIndex(r.PgVectorDSN, r.PgVectorTable)
		if err != nil {
			return nil, err
		}
		return index, nil
	default:
		return nil, fmt.Errorf("unknown index backend: %s", r.Backend)
	}
}
