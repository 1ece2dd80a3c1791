package routing

import (
	"strings"
	"unicode"

	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/storage"
)

// DefaultVocabulary is the entity vocabulary of the standard healthcare
// schema, used when the live schema cannot be read.
func DefaultVocabulary() []string {
	return storage.DefaultSchema().Vocabulary()
}

// Decide turns the classifier's candidate tool names into exactly one
// decision. A single recognised tool wins. Anything else (nothing usable,
// an unknown name, or more than one tool) falls back to the fixed order:
// SQL when the question names a schema entity, Document otherwise.
func Decide(candidates []string, question string, vocab []string) model.RoutingDecision {
	kinds := make(map[model.ToolKind]bool)
	unknown := 0
	for _, c := range candidates {
		kind, ok := model.ParseToolKind(c)
		if !ok {
			unknown++
			continue
		}
		kinds[kind] = true
	}

	if len(kinds) == 1 && unknown == 0 {
		for kind := range kinds {
			return model.RoutingDecision{
				Tool:      kind,
				Rationale: "classifier selected " + kind.String(),
			}
		}
	}

	if word, ok := MentionsEntity(question, vocab); ok {
		return model.RoutingDecision{
			Tool:      model.ToolSQL,
			Rationale: "tie-break: question mentions schema entity " + word,
			TieBroken: true,
		}
	}
	return model.RoutingDecision{
		Tool:      model.ToolDocument,
		Rationale: "tie-break: no schema entity in question",
		TieBroken: true,
	}
}

// MentionsEntity reports the first word of question that is in vocab.
// Matching is on whole words, case-insensitive.
func MentionsEntity(question string, vocab []string) (string, bool) {
	if len(vocab) == 0 {
		return "", false
	}
	known := make(map[string]bool, len(vocab))
	for _, v := range vocab {
		known[strings.ToLower(v)] = true
	}

	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, w := range words {
		if known[w] {
			return w, true
		}
	}
	return "", false
}
