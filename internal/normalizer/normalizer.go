// Package normalizer turns raw article text into the space-joined token
// string consumed by the lexical vectorizer.
package normalizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/es"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Supported stop-word languages.
const (
	Spanish = "es"
	English = "en"
	None    = "none"
)

// Normalizer lowercases, segments on Unicode word boundaries, drops stop
// words and non-alphanumeric tokens, and joins the rest with single spaces.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
	language  string
}

// New creates a Normalizer for the given stop-word language.
func New(language string) (*Normalizer, error) {
	if language == "" {
		language = Spanish
	}
	filters := []analysis.TokenFilter{lowercase.NewLowerCaseFilter()}

	var words []byte
	switch language {
	case Spanish:
		words = es.SpanishStopWords
	case English:
		words = en.EnglishStopWords
	case None:
	default:
		return nil, fmt.Errorf("unsupported normalizer language %q", language)
	}
	if words != nil {
		tokens := analysis.NewTokenMap()
		if err := tokens.LoadBytes(words); err != nil {
			return nil, fmt.Errorf("load %s stop words: %w", language, err)
		}
		filters = append(filters, stop.NewStopTokensFilter(tokens))
	}

	return &Normalizer{
		tokenizer: unicodetok.NewUnicodeTokenizer(),
		filters:   filters,
		language:  language,
	}, nil
}

// Language returns the configured stop-word language.
func (n *Normalizer) Language() string { return n.language }

// Normalize returns the cleaned text. Empty input yields an empty string.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	stream := n.tokenizer.Tokenize([]byte(text))
	for _, f := range n.filters {
		stream = f.Filter(stream)
	}

	var b strings.Builder
	for _, tok := range stream {
		term := string(tok.Term)
		if !isAlnum(term) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(term)
	}
	return b.String()
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
