package json

import (
	"strings"
	"testing"
)

type sqlReply struct {
	SQL string `json:"sql"`
}

type citedReply struct {
	Answer string `json:"answer"`
	Cited  []int  `json:"cited"`
}

func TestPureJSON(t *testing.T) {
	result, err := ExtractJSONFromResponse[sqlReply](`{"sql": "SELECT 1"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SQL != "SELECT 1" {
		t.Errorf("expected 'SELECT 1', got '%s'", result.SQL)
	}
}

func TestJSONWithBoth(t *testing.T) {
	response := `Let me think... {"answer": "Yes.", "cited": [1, 2]} Done!`
	result, err := ExtractJSONFromResponse[citedReply](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "Yes." {
		t.Errorf("expected 'Yes.', got '%s'", result.Answer)
	}
	if len(result.Cited) != 2 {
		t.Errorf("expected 2 citations, got %d", len(result.Cited))
	}
}

func TestJSONInCodeFence(t *testing.T) {
	response := "```json\n{\"sql\": \"SELECT name FROM patients\"}\n```"
	result, err := ExtractJSONFromResponse[sqlReply](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SQL != "SELECT name FROM patients" {
		t.Errorf("unexpected sql: %q", result.SQL)
	}
}

func TestBracesInsideStrings(t *testing.T) {
	response := `Result: {"answer": "use {curly} braces }", "cited": [1]} and {trailing`
	result, err := ExtractJSONFromResponse[citedReply](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Answer != "use {curly} braces }" {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
}

func TestSkipsInvalidObjectBeforeValid(t *testing.T) {
	response := `{not json} then {"sql": "SELECT 2"}`
	result, err := ExtractJSONFromResponse[sqlReply](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SQL != "SELECT 2" {
		t.Errorf("expected 'SELECT 2', got %q", result.SQL)
	}
}

func TestNoJSON(t *testing.T) {
	_, err := ExtractJSON("This is just plain text without any JSON.")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to extract valid JSON") {
		t.Errorf("expected 'failed to extract valid JSON' in error, got: %v", err)
	}
}

func TestInvalidJSON(t *testing.T) {
	_, err := ExtractJSONFromResponse[sqlReply](`{"sql": "test", value: }`)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestStripCodeFence(t *testing.T) {
	got := StripCodeFence("```sql\nSELECT * FROM visits\n```")
	if got != "SELECT * FROM visits" {
		t.Errorf("unexpected result: %q", got)
	}
}
