package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/tools"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	ready    bool
	envelope model.AnswerEnvelope
	err      error
	wait     time.Duration
	question string
}

func (s *stubService) Ready() bool { return s.ready }

func (s *stubService) Answer(ctx context.Context, question string) (model.AnswerEnvelope, error) {
	s.question = question
	if s.wait > 0 {
		select {
		case <-ctx.Done():
			return model.AnswerEnvelope{}, &model.SynthesisError{Stage: "synthesis", Err: ctx.Err()}
		case <-time.After(s.wait):
		}
	}
	return s.envelope, s.err
}

func (s *stubService) Tools() []tools.ToolMetadata {
	return []tools.ToolMetadata{{Name: model.SQLToolName}, {Name: model.DocumentToolName}}
}

func postChat(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

func TestChatSuccess(t *testing.T) {
	service := &stubService{ready: true, envelope: model.AnswerEnvelope{
		CleanAnswer: "2 patients have hypertension.",
		Tool:        model.SQLToolName,
		ToolDetails: "SELECT COUNT(*) FROM visits",
		SourceLabel: model.SQLSourceLabel,
	}}
	rec, body := postChat(t, New(service, 0, nil), `{"query": "How many patients have hypertension?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, key := range []string{"clean_answer", "tool", "tool_details", "source_label"} {
		if _, ok := body[key]; !ok {
			t.Errorf("expected key %s in response", key)
		}
	}
	if body["tool"] != "SQL_Agent" {
		t.Errorf("expected SQL_Agent, got %v", body["tool"])
	}
	if service.question != "How many patients have hypertension?" {
		t.Errorf("unexpected question forwarded: %q", service.question)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected request ID header")
	}
}

func TestChatNotReady(t *testing.T) {
	rec, body := postChat(t, New(&stubService{}, 0, nil), `{"query": "anything"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	detail, _ := body["detail"].(string)
	if !strings.Contains(detail, "Agent not ready") {
		t.Errorf("expected 'Agent not ready' in detail, got %q", detail)
	}
}

func TestChatBadRequest(t *testing.T) {
	srv := New(&stubService{ready: true}, 0, nil)

	for _, body := range []string{`{"query": "   "}`, `{}`, `not json`} {
		rec, decoded := postChat(t, srv, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
		if _, ok := decoded["detail"]; !ok {
			t.Errorf("body %q: expected detail", body)
		}
	}
}

func TestChatErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrNotReady, http.StatusServiceUnavailable},
		{&model.IndexUnavailableError{Err: errors.New("closed")}, http.StatusInternalServerError},
		{&model.SynthesisError{Stage: "synthesis", Err: errors.New("500 from upstream")}, http.StatusInternalServerError},
		{&model.SynthesisError{Stage: "routing", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec, body := postChat(t, New(&stubService{ready: true, err: tt.err}, 0, nil), `{"query": "q"}`)
		if rec.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
		}
		if detail, _ := body["detail"].(string); detail == "" {
			t.Errorf("%v: expected detail", tt.err)
		}
	}
}

func TestChatRequestTimeout(t *testing.T) {
	service := &stubService{ready: true, wait: 2 * time.Second}
	rec, _ := postChat(t, New(service, 100*time.Millisecond, nil), `{"query": "slow question"}`)

	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		ready   bool
		status  string
		message string
	}{
		{true, "healthy", "Application is running"},
		{false, "degraded", "Application is running but agent is not initialized"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		New(&stubService{ready: tt.ready}, 0, nil).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode health: %v", err)
		}
		if body["status"] != tt.status || body["message"] != tt.message {
			t.Errorf("ready=%v: unexpected health %v", tt.ready, body)
		}
	}
}

func TestToolsAndMetrics(t *testing.T) {
	router := New(&stubService{ready: true}, 0, nil).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "PDF_RetrievalQA") {
		t.Errorf("unexpected /tools response %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("unexpected /metrics response %d", rec.Code)
	}
}
