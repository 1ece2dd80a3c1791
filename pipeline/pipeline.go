// Package pipeline answers one question end to end: route, run exactly one
// tool, synthesize, normalize.
//
// Information Hiding:
// - Stage sequencing and error recovery hidden
// - Routing, tool execution and synthesis reached only through Answer
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/routing"
	"github.com/richinex/healthrouter/synth"
	"github.com/richinex/healthrouter/tools"
)

// Config holds everything a pipeline is built from.
type Config struct {
	// Client is the LLM backend for routing and synthesis. Nil means the
	// pipeline is constructed but not ready.
	Client *llm.Client

	SQL      tools.Tool
	Document tools.Tool

	// Vocabulary is the schema entity list for the routing tie-break.
	Vocabulary []string

	// ToolTimeout bounds a single tool run. Zero uses the executor default.
	ToolTimeout time.Duration

	Logger *logrus.Logger
}

// Ready reports whether questions can be answered.
func (c Config) Ready() bool {
	return c.Client != nil && c.SQL != nil && c.Document != nil
}

// Pipeline answers questions. Safe for concurrent use.
type Pipeline struct {
	ready       bool
	registry    *tools.Registry
	router      *routing.Router
	synthesizer *synth.Synthesizer
	executor    *tools.Executor
	logger      *logrus.Logger
}

// New builds a pipeline from cfg. A config that is not ready still yields a
// pipeline; Answer then fails with model.ErrNotReady.
func New(cfg Config) (*Pipeline, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{cfg.SQL, cfg.Document} {
		if tool == nil {
			continue
		}
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("register tool: %w", err)
		}
	}

	toolCfg := tools.DefaultToolConfig()
	if cfg.ToolTimeout > 0 {
		secs := uint64(cfg.ToolTimeout / time.Second)
		if secs == 0 {
			secs = 1
		}
		toolCfg.TimeoutSecs = secs
	}

	return &Pipeline{
		ready:       cfg.Ready(),
		registry:    registry,
		router:      routing.NewRouter(cfg.Client, registry, cfg.Vocabulary, logger),
		synthesizer: synth.New(cfg.Client, logger),
		executor:    tools.NewExecutor(toolCfg),
		logger:      logger,
	}, nil
}

// Ready reports whether the pipeline can answer questions.
func (p *Pipeline) Ready() bool {
	return p.ready
}

// Tools returns metadata of the registered tools in routing order.
func (p *Pipeline) Tools() []tools.ToolMetadata {
	return p.registry.List()
}

// Answer runs the full pipeline for question.
func (p *Pipeline) Answer(ctx context.Context, question string) (model.AnswerEnvelope, error) {
	envelope, _, err := p.AnswerTraced(ctx, question)
	return envelope, err
}

// AnswerTraced is Answer plus the stage trace of the request.
//
// SQL generation and execution failures are recovered into an envelope that
// carries the attempted query. Every other failure is returned.
func (p *Pipeline) AnswerTraced(ctx context.Context, question string) (model.AnswerEnvelope, *Trace, error) {
	begin := time.Now()
	trace := newTrace(requestID(ctx))
	log := p.logger.WithField("request_id", trace.RequestID)

	fail := func(tool string, err error) (model.AnswerEnvelope, *Trace, error) {
		trace.fail()
		requestsTotal.WithLabelValues(tool, "error").Inc()
		log.WithFields(logrus.Fields{"tool": tool, "stage": trace.String()}).WithError(err).Warn("question failed")
		return model.AnswerEnvelope{}, trace, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return fail("none", model.ErrEmptyQuestion)
	}
	if !p.ready {
		return fail("none", model.ErrNotReady)
	}

	started := time.Now()
	decision, err := p.router.Route(ctx, question)
	if err != nil {
		return fail("none", err)
	}
	trace.Decision = decision
	trace.advance(model.StageRouted, started)
	if decision.TieBroken {
		routeTiebreaks.Inc()
	}
	toolName := decision.Tool.String()
	log = log.WithField("tool", toolName)
	log.WithField("rationale", decision.Rationale).Debug("question routed")

	tool, ok := p.registry.ForKind(decision.Tool)
	if !ok {
		return fail(toolName, fmt.Errorf("no tool registered for %s", toolName))
	}

	started = time.Now()
	result, err := p.executor.Execute(ctx, tool, question)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fail(toolName, fmt.Errorf("request aborted during %s: %w", toolName, ctxErr))
	}
	if err != nil {
		if _, sqlPath := model.AttemptedQuery(err); sqlPath {
			trace.advance(model.StageToolExecuted, started)
			trace.Stages = append(trace.Stages, model.StageNormalized, model.StageReturned)
			requestsTotal.WithLabelValues(toolName, "recovered").Inc()
			log.WithError(err).Info("recovered database error")
			return recovered(err), trace, nil
		}
		return fail(toolName, err)
	}
	trace.advance(model.StageToolExecuted, started)

	started = time.Now()
	answer, err := p.synthesizer.Synthesize(ctx, question, result)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", err, ctxErr)
		}
		return fail(toolName, err)
	}
	trace.advance(model.StageSynthesized, started)

	started = time.Now()
	envelope := Normalize(decision, result, answer)
	trace.advance(model.StageNormalized, started)
	trace.Stages = append(trace.Stages, model.StageReturned)

	requestsTotal.WithLabelValues(toolName, "ok").Inc()
	log.WithFields(logrus.Fields{
		"stage":    trace.String(),
		"duration": time.Since(begin).String(),
	}).Info("question answered")
	return envelope, trace, nil
}
