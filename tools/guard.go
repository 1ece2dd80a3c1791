package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richinex/healthrouter/model"
)

// forbiddenKeywords may not appear anywhere in a query outside literals.
var forbiddenKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "REPLACE": true, "MERGE": true,
	"UPSERT": true, "CREATE": true, "DROP": true, "ALTER": true, "TRUNCATE": true,
	"ATTACH": true, "DETACH": true, "PRAGMA": true, "VACUUM": true, "REINDEX": true,
	"ANALYZE": true, "BEGIN": true, "COMMIT": true, "ROLLBACK": true, "SAVEPOINT": true,
	"RELEASE": true, "GRANT": true, "REVOKE": true,
}

// functionKeywords are forbidden as statements but legal as scalar functions.
var functionKeywords = map[string]bool{
	"REPLACE": true,
}

type sqlToken struct {
	word  string // upper-cased keyword or identifier
	call  bool   // followed by "("
	depth int    // parenthesis nesting level
}

// lexResult is the tokenized query.
type lexResult struct {
	tokens     []sqlToken
	statements int
	cleaned    string
}

// lex strips comments and splits the query into bare words, honouring string
// literals and quoted identifiers.
func lex(query string) (lexResult, error) {
	var (
		res     lexResult
		out     strings.Builder
		current strings.Builder
		body    bool // current statement has content
		depth   int
	)

	flush := func(next byte) {
		if current.Len() == 0 {
			return
		}
		res.tokens = append(res.tokens, sqlToken{
			word:  strings.ToUpper(current.String()),
			call:  next == '(',
			depth: depth,
		})
		current.Reset()
	}

	n := len(query)
	for i := 0; i < n; i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < n && query[i+1] == '-':
			flush(0)
			for i < n && query[i] != '\n' {
				i++
			}
			out.WriteByte(' ')

		case c == '/' && i+1 < n && query[i+1] == '*':
			flush(0)
			end := strings.Index(query[i+2:], "*/")
			if end == -1 {
				return res, errors.New("unterminated comment")
			}
			i += end + 3
			out.WriteByte(' ')

		case c == '\'' || c == '"' || c == '`' || c == '[':
			flush(0)
			closer := c
			if c == '[' {
				closer = ']'
			}
			j := i + 1
			for {
				if j >= n {
					return res, errors.New("unterminated quoted text")
				}
				if query[j] == closer {
					// Doubled quote is an escaped quote.
					if closer != ']' && j+1 < n && query[j+1] == closer {
						j += 2
						continue
					}
					break
				}
				j++
			}
			out.WriteString(query[i : j+1])
			body = true
			i = j

		case c == ';':
			flush(0)
			if body {
				res.statements++
			}
			body = false
			out.WriteByte(';')

		case isWordByte(c):
			current.WriteByte(c)
			out.WriteByte(c)
			body = true

		default:
			flush(nextNonSpace(query, i))
			out.WriteByte(c)
			switch c {
			case '(':
				depth++
			case ')':
				depth--
			}
			if !isSpace(c) {
				body = true
			}
		}
	}
	flush(0)
	if body {
		res.statements++
	}

	cleaned := strings.TrimSpace(out.String())
	for strings.HasSuffix(cleaned, ";") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, ";"))
	}
	res.cleaned = cleaned
	return res, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// nextNonSpace returns the first non-whitespace byte at or after i.
func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

// CheckReadOnly admits exactly one SELECT statement (optionally introduced
// by WITH) and returns it with comments and trailing semicolons removed.
// Any other query yields a *model.QueryGenerationError wrapping
// model.ErrWriteStatement.
func CheckReadOnly(query string) (string, error) {
	reject := func(reason string) (string, error) {
		return "", &model.QueryGenerationError{
			Query: strings.TrimSpace(query),
			Err:   fmt.Errorf("%w: %s", model.ErrWriteStatement, reason),
		}
	}

	res, err := lex(query)
	if err != nil {
		return reject(err.Error())
	}
	if len(res.tokens) == 0 {
		return reject("empty statement")
	}
	if res.statements > 1 {
		return reject("multiple statements")
	}

	first := res.tokens[0].word
	if first != "SELECT" && first != "WITH" {
		return reject(fmt.Sprintf("statement starts with %s", first))
	}

	// The statement body must be a SELECT outside any CTE parentheses.
	hasSelect := false
	for _, tok := range res.tokens {
		if tok.word == "SELECT" && tok.depth == 0 {
			hasSelect = true
		}
		if forbiddenKeywords[tok.word] {
			if functionKeywords[tok.word] && tok.call {
				continue
			}
			return reject(fmt.Sprintf("%s is not allowed", tok.word))
		}
	}
	if !hasSelect {
		return reject("WITH clause without SELECT")
	}

	return res.cleaned, nil
}
