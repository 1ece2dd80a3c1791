package routing

import (
	"testing"

	"github.com/richinex/healthrouter/model"
)

func TestDecideSingleCandidate(t *testing.T) {
	decision := Decide([]string{model.DocumentToolName}, "How many patients are there?", DefaultVocabulary())
	if decision.Tool != model.ToolDocument {
		t.Errorf("expected classifier choice to win, got %s", decision.Tool)
	}
	if decision.TieBroken {
		t.Error("expected no tie-break")
	}

	decision = Decide([]string{model.SQLToolName, "sql_agent"}, "anything", DefaultVocabulary())
	if decision.Tool != model.ToolSQL || decision.TieBroken {
		t.Errorf("expected repeated SQL candidate to select SQL, got %+v", decision)
	}
}

func TestDecideTieBreak(t *testing.T) {
	vocab := DefaultVocabulary()
	tests := []struct {
		candidates []string
		question   string
		want       model.ToolKind
	}{
		{nil, "How many patients received the privacy notice?", model.ToolSQL},
		{nil, "What are my privacy rights?", model.ToolDocument},
		{[]string{model.SQLToolName, model.DocumentToolName}, "Which medication categories are covered?", model.ToolSQL},
		{[]string{model.SQLToolName, model.DocumentToolName}, "Is my data shared?", model.ToolDocument},
		{[]string{"calculator"}, "What dosage was prescribed?", model.ToolSQL},
		{[]string{"calculator"}, "How do I file a complaint?", model.ToolDocument},
	}

	for _, tt := range tests {
		decision := Decide(tt.candidates, tt.question, vocab)
		if decision.Tool != tt.want {
			t.Errorf("Decide(%v, %q) = %s, want %s", tt.candidates, tt.question, decision.Tool, tt.want)
		}
		if !decision.TieBroken {
			t.Errorf("Decide(%v, %q): expected tie-break", tt.candidates, tt.question)
		}
	}
}

func TestDecideUnknownWithKnown(t *testing.T) {
	decision := Decide([]string{model.DocumentToolName, "calculator"}, "visit history", DefaultVocabulary())
	if !decision.TieBroken || decision.Tool != model.ToolSQL {
		t.Errorf("expected tie-break to SQL, got %+v", decision)
	}
}

func TestMentionsEntityWholeWords(t *testing.T) {
	vocab := DefaultVocabulary()

	if _, ok := MentionsEntity("Which page covers it?", vocab); ok {
		t.Error("'page' must not match 'age'")
	}
	if word, ok := MentionsEntity("Average AGE of patients", vocab); !ok || word != "age" {
		t.Errorf("expected 'age', got %q (%v)", word, ok)
	}
	if _, ok := MentionsEntity("anything", nil); ok {
		t.Error("empty vocabulary must not match")
	}
}
