package strategy

import (
	"fmt"
	"strings"
)

// Strategy selects the vectorization used to rank the corpus.
type Strategy string

// Strategy constants.
const (
	// Lexical ranks by TF-IDF weighted term overlap.
	Lexical Strategy = "lexical"
	// Semantic ranks by dense sentence embeddings.
	Semantic Strategy = "semantic"
)

// All lists the strategies in dispatch order.
var All = []Strategy{Lexical, Semantic}

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Lexical || s == Semantic
}

// Parse resolves a strategy name. The legacy names "tfidf" and "embeddings"
// are accepted; an empty name selects Lexical.
func Parse(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lexical", "tfidf", "tf-idf":
		return Lexical, nil
	case "semantic", "embeddings", "embedding":
		return Semantic, nil
	default:
		return "", fmt.Errorf("unknown strategy %q", name)
	}
}
