package pipeline

import (
	"strings"

	"github.com/richinex/healthrouter/model"
)

const (
	// maxSources caps the file/page entries listed for a document answer.
	maxSources = 5

	noPassagesDetails = "PDF index (no matching passages)"
	noQueryDetails    = "N/A"
)

// Normalize builds the answer envelope for a routed, executed and
// synthesized question.
func Normalize(decision model.RoutingDecision, result model.ToolResult, answer model.Answer) model.AnswerEnvelope {
	kind := decision.Tool
	if result != nil {
		kind = result.Kind()
	}

	return model.AnswerEnvelope{
		CleanAnswer: answer.Text,
		Tool:        kind.String(),
		ToolDetails: toolDetails(result, answer.Cited),
		SourceLabel: kind.SourceLabel(),
	}
}

func toolDetails(result model.ToolResult, cited []int) string {
	switch r := result.(type) {
	case *model.SQLResult:
		if q := strings.TrimSpace(r.Query); q != "" {
			return q
		}
		return noQueryDetails
	case *model.DocumentResult:
		return sourceList(r.Passages, cited)
	default:
		return noQueryDetails
	}
}

// sourceList lists distinct passage locations in first-seen order. Cited
// passages are listed when there are any, all passages otherwise.
func sourceList(passages []model.Passage, cited []int) string {
	if len(passages) == 0 {
		return noPassagesDetails
	}

	selected := passages
	if len(cited) > 0 {
		selected = make([]model.Passage, 0, len(cited))
		for _, i := range cited {
			if i >= 0 && i < len(passages) {
				selected = append(selected, passages[i])
			}
		}
		if len(selected) == 0 {
			selected = passages
		}
	}

	seen := make(map[string]bool)
	sources := make([]string, 0, maxSources)
	for _, p := range selected {
		loc := model.PassageLocation(p)
		if seen[loc] {
			continue
		}
		seen[loc] = true
		sources = append(sources, loc)
		if len(sources) == maxSources {
			break
		}
	}
	return strings.Join(sources, ", ")
}

// recovered wraps a SQL-path failure into an envelope that reports the
// attempted query.
func recovered(err error) model.AnswerEnvelope {
	details := noQueryDetails
	if q, ok := model.AttemptedQuery(err); ok && strings.TrimSpace(q) != "" {
		details = q
	}
	return model.AnswerEnvelope{
		CleanAnswer: "Error while querying database: " + err.Error(),
		Tool:        model.SQLToolName,
		ToolDetails: details,
		SourceLabel: model.SQLSourceLabel,
	}
}
