package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/healthrouter/model"
)

type requestIDKey struct{}

// WithRequestID attaches a caller-chosen request ID to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// requestID returns the ID attached to ctx or a fresh one.
func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Trace records the stages one request passed through.
type Trace struct {
	RequestID string
	Stages    []model.Stage
	Decision  model.RoutingDecision
	Durations map[model.Stage]time.Duration
}

func newTrace(requestID string) *Trace {
	return &Trace{
		RequestID: requestID,
		Stages:    []model.Stage{model.StageReceived},
		Durations: make(map[model.Stage]time.Duration),
	}
}

// Last returns the final stage reached.
func (t *Trace) Last() model.Stage {
	return t.Stages[len(t.Stages)-1]
}

// String renders the path, e.g. "RECEIVED > ROUTED > ERRORED".
func (t *Trace) String() string {
	names := make([]string, len(t.Stages))
	for i, s := range t.Stages {
		names[i] = s.String()
	}
	return strings.Join(names, " > ")
}

func (t *Trace) advance(stage model.Stage, started time.Time) {
	t.Stages = append(t.Stages, stage)
	elapsed := time.Since(started)
	t.Durations[stage] = elapsed
	stageDuration.WithLabelValues(stage.String()).Observe(elapsed.Seconds())
}

func (t *Trace) fail() {
	t.Stages = append(t.Stages, model.StageErrored)
}
