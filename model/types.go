// Package model provides domain types shared across packages.
package model

import (
	"fmt"
	"strings"
)

// ToolKind identifies one of the two backends a question can be routed to.
type ToolKind int

const (
	// ToolSQL answers from the structured healthcare database.
	ToolSQL ToolKind = iota
	// ToolDocument answers from the indexed policy documents.
	ToolDocument
)

// Tool names as reported in the answer envelope.
const (
	SQLToolName      = "SQL_Agent"
	DocumentToolName = "PDF_RetrievalQA"
)

// Source labels as reported in the answer envelope.
const (
	SQLSourceLabel      = "Database (SQLite: healthcare.db)"
	DocumentSourceLabel = "PDF"
)

// String returns the human-readable tool name.
func (k ToolKind) String() string {
	switch k {
	case ToolSQL:
		return SQLToolName
	case ToolDocument:
		return DocumentToolName
	default:
		return "unknown"
	}
}

// SourceLabel returns the fixed source label of the tool family.
func (k ToolKind) SourceLabel() string {
	switch k {
	case ToolSQL:
		return SQLSourceLabel
	case ToolDocument:
		return DocumentSourceLabel
	default:
		return ""
	}
}

// ParseToolKind maps a tool name (or a loose alias) onto a ToolKind.
func ParseToolKind(name string) (ToolKind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sql_agent", "sql", "database", "db":
		return ToolSQL, true
	case "pdf_retrievalqa", "pdf", "document", "documents", "docs":
		return ToolDocument, true
	default:
		return 0, false
	}
}

// RoutingDecision is the router's single selection for a question.
type RoutingDecision struct {
	Tool      ToolKind
	Rationale string
	// TieBroken is set when the classifier gave no single usable answer and
	// the fixed priority order picked the tool.
	TieBroken bool
}

// ToolResult is the output of exactly one tool. It is implemented only by
// *SQLResult and *DocumentResult.
type ToolResult interface {
	Kind() ToolKind
	// Empty reports zero rows or zero passages.
	Empty() bool
	isToolResult()
}

// SQLResult holds the rows returned by the generated query.
type SQLResult struct {
	// Columns preserves the column order of the result set.
	Columns []string
	Rows    []map[string]any
	Query   string

	// Truncated is set when the store had more rows than the row cap.
	Truncated bool
}

func (r *SQLResult) Kind() ToolKind { return ToolSQL }
func (r *SQLResult) Empty() bool    { return len(r.Rows) == 0 }
func (r *SQLResult) isToolResult()  {}

// Passage is one retrieved chunk of an indexed document.
type Passage struct {
	Text       string  `json:"text"`
	SourceFile string  `json:"source_file"`
	Page       int     `json:"page"` // -1 when the index carries no page
	Score      float64 `json:"score"`
}

// PassageLocation renders "file (p.N)". Unknown files show as "PDF" and
// unknown pages as "?".
func PassageLocation(p Passage) string {
	file := strings.TrimSpace(p.SourceFile)
	if file == "" {
		file = DocumentSourceLabel
	}
	if p.Page < 0 {
		return fmt.Sprintf("%s (p.?)", file)
	}
	return fmt.Sprintf("%s (p.%d)", file, p.Page)
}

// DocumentResult holds passages ordered by descending relevance.
type DocumentResult struct {
	Passages []Passage
}

func (r *DocumentResult) Kind() ToolKind { return ToolDocument }
func (r *DocumentResult) Empty() bool    { return len(r.Passages) == 0 }
func (r *DocumentResult) isToolResult()  {}

// Answer is the synthesized natural-language answer.
type Answer struct {
	Text string
	// Cited holds zero-based indexes of the passages the answer used.
	Cited []int
}

// AnswerEnvelope is the uniform response returned to the caller.
type AnswerEnvelope struct {
	CleanAnswer string `json:"clean_answer"`
	Tool        string `json:"tool"`
	ToolDetails string `json:"tool_details"`
	SourceLabel string `json:"source_label"`
}

// Stage is a step of the per-request pipeline state machine.
type Stage int

const (
	StageReceived Stage = iota
	StageRouted
	StageToolExecuted
	StageSynthesized
	StageNormalized
	StageReturned
	StageErrored
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "RECEIVED"
	case StageRouted:
		return "ROUTED"
	case StageToolExecuted:
		return "TOOL_EXECUTED"
	case StageSynthesized:
		return "SYNTHESIZED"
	case StageNormalized:
		return "NORMALIZED"
	case StageReturned:
		return "RETURNED"
	case StageErrored:
		return "ERRORED"
	default:
		return "UNKNOWN"
	}
}
