package similarity

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"golang.org/x/text/unicode/norm"
)

// minTermLength drops single-character tokens.
const minTermLength = 2

// Analyzer splits text into lowercase terms with English stop words removed.
type Analyzer struct {
	analyzer analysis.Analyzer
}

// NewAnalyzer builds an Analyzer on top of the bleve standard analyzer
// (unicode tokenizer, lowercase filter, English stop list).
func NewAnalyzer() (*Analyzer, error) {
	indexMapping := bleve.NewIndexMapping()

	a := indexMapping.AnalyzerNamed(standard.Name)
	if a == nil {
		return nil, fmt.Errorf("bleve analyzer %q is not registered", standard.Name)
	}

	return &Analyzer{analyzer: a}, nil
}

// sharedAnalyzer is built once; bleve analyzers hold no per-call state.
var sharedAnalyzer = sync.OnceValues(NewAnalyzer)

// Terms returns the analyzed terms of text in document order.
func (a *Analyzer) Terms(text string) []string {
	normalized := norm.NFKC.String(text)
	if normalized == "" {
		return nil
	}

	stream := a.analyzer.Analyze([]byte(normalized))
	terms := make([]string, 0, len(stream))
	for _, token := range stream {
		if utf8.RuneCount(token.Term) < minTermLength {
			continue
		}
		terms = append(terms, string(token.Term))
	}

	return terms
}
