// Package id generates prefixed, sortable identifiers for evaluations,
// feedback entries, text extractions, and simulations.
package id

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Strategy identifies the identifier generation algorithm to use.
type Strategy int

const (
	// StrategyKSUID generates lexicographically sortable identifiers.
	StrategyKSUID Strategy = iota
	// StrategyUUIDv7 generates time-ordered UUIDs.
	StrategyUUIDv7
)

const (
	PrefixEvaluation = "eval"
	PrefixFeedback   = "fb"
	PrefixExtraction = "extract"
	PrefixSimulation = "sim"
)

var defaultGenerator = &Generator{strategy: StrategyKSUID}

// Generator produces prefixed identifiers.
type Generator struct {
	mu       sync.RWMutex
	strategy Strategy
}

// SetStrategy configures the default generator.
func SetStrategy(strategy Strategy) {
	defaultGenerator.mu.Lock()
	defaultGenerator.strategy = strategy
	defaultGenerator.mu.Unlock()
}

// NewEvaluationID identifies one stored review.
func NewEvaluationID() string { return defaultGenerator.New(PrefixEvaluation) }

// NewFeedbackID identifies one thumbs up/down entry.
func NewFeedbackID() string { return defaultGenerator.New(PrefixFeedback) }

// NewExtractionID identifies one document-to-text extraction.
func NewExtractionID() string { return defaultGenerator.New(PrefixExtraction) }

// NewSimulationID identifies one idea-generation run.
func NewSimulationID() string { return defaultGenerator.New(PrefixSimulation) }

// New returns "<prefix>-<body>". UUIDv7 failures fall back to KSUID.
func (g *Generator) New(prefix string) string {
	g.mu.RLock()
	strategy := g.strategy
	g.mu.RUnlock()

	var body string
	if strategy == StrategyUUIDv7 {
		if v7, err := uuid.NewV7(); err == nil {
			body = v7.String()
		}
	}
	if body == "" {
		body = ksuid.New().String()
	}
	return fmt.Sprintf("%s-%s", prefix, body)
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
