// Package store appends evaluations and feedback to JSONL logs and keeps a
// bounded cache of recent evaluations for lookup by id.
package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"scholar/internal/logging"
	jsonx "scholar/internal/shared/json"
)

const (
	EvaluationsFile = "evaluations.jsonl"
	FeedbackFile    = "feedback.jsonl"

	defaultCacheSize = 256
	maxLineBytes     = 16 * 1024 * 1024
)

// ErrNotFound is returned when no evaluation has the requested id.
var ErrNotFound = errors.New("evaluation not found")

// Evaluation is one logged review.
type Evaluation struct {
	ID              string         `json:"evaluation_id"`
	Timestamp       time.Time      `json:"timestamp"`
	ProposalText    string         `json:"proposal_text"`
	CallForProposal string         `json:"call_for_proposal,omitempty"`
	Review          map[string]any `json:"review_result"`
	ThinkingProcess []Turn         `json:"thinking_process,omitempty"`
	Model           string         `json:"model,omitempty"`
}

// Turn is one transcript message as stored.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Feature names what a feedback entry is about.
type Feature string

const (
	FeatureEvaluate    Feature = "evaluate"
	FeatureExtractText Feature = "extract_text"
)

// Action is a thumbs up or down.
type Action string

const (
	ActionUp   Action = "up"
	ActionDown Action = "down"
)

// Feedback is one user reaction to an evaluation or extraction.
type Feedback struct {
	ID           string    `json:"feedback_id"`
	Timestamp    time.Time `json:"timestamp"`
	Feature      Feature   `json:"feature"`
	Action       Action    `json:"action"`
	EvaluationID string    `json:"evaluation_id,omitempty"`
	ExtractionID string    `json:"extraction_id,omitempty"`
	Details      string    `json:"details,omitempty"`
}

// Validate checks the enumerated fields.
func (f Feedback) Validate() error {
	switch f.Feature {
	case FeatureEvaluate, FeatureExtractText:
	default:
		return fmt.Errorf("invalid feature %q", f.Feature)
	}
	switch f.Action {
	case ActionUp, ActionDown:
	default:
		return fmt.Errorf("invalid action %q", f.Action)
	}
	return nil
}

// JSONLStore writes one JSON object per line. Appends are serialized per
// store; reads scan the file when the cache misses.
type JSONLStore struct {
	dir    string
	mu     sync.Mutex
	cache  *lru.Cache[string, Evaluation]
	now    func() time.Time
	logger logging.Logger
}

// Option configures a JSONLStore.
type Option func(*JSONLStore)

// WithCacheSize bounds the recent-evaluation cache.
func WithCacheSize(n int) Option {
	return func(s *JSONLStore) {
		if n > 0 {
			s.cache, _ = lru.New[string, Evaluation](n)
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *JSONLStore) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *JSONLStore) { s.logger = logging.OrNop(logger) }
}

// New creates dir if needed and returns a store rooted there.
func New(dir string, opts ...Option) (*JSONLStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure store dir: %w", err)
	}
	// lru.New only errors on non-positive size.
	cache, _ := lru.New[string, Evaluation](defaultCacheSize)
	s := &JSONLStore{
		dir:    dir,
		cache:  cache,
		now:    time.Now,
		logger: logging.NewComponentLogger("store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the root directory.
func (s *JSONLStore) Dir() string { return s.dir }

// SaveEvaluation appends e, stamping the timestamp when unset.
func (s *JSONLStore) SaveEvaluation(ctx context.Context, e Evaluation) (Evaluation, error) {
	if strings.TrimSpace(e.ID) == "" {
		return e, fmt.Errorf("evaluation id required")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	if err := s.append(ctx, EvaluationsFile, e); err != nil {
		return e, err
	}
	s.cache.Add(e.ID, e)
	s.logger.Debug("saved evaluation %s", e.ID)
	return e, nil
}

// SaveFeedback validates and appends f.
func (s *JSONLStore) SaveFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	if err := f.Validate(); err != nil {
		return f, err
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = s.now().UTC()
	}
	if err := s.append(ctx, FeedbackFile, f); err != nil {
		return f, err
	}
	s.logger.Debug("saved %s feedback (%s)", f.Feature, f.Action)
	return f, nil
}

// GetEvaluation returns the evaluation with id, checking the cache before
// scanning the log. The last entry with a matching id wins.
func (s *JSONLStore) GetEvaluation(ctx context.Context, id string) (Evaluation, error) {
	if e, ok := s.cache.Get(id); ok {
		return e, nil
	}

	var (
		found Evaluation
		hit   bool
	)
	err := s.stream(ctx, EvaluationsFile, func(line []byte) error {
		var e Evaluation
		if err := jsonx.Unmarshal(line, &e); err != nil {
			s.logger.Warn("skipping malformed evaluation entry: %v", err)
			return nil
		}
		if e.ID == id {
			found, hit = e, true
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	if !hit {
		return Evaluation{}, ErrNotFound
	}
	s.cache.Add(id, found)
	return found, nil
}

// ListFeedback loads every feedback entry in append order.
func (s *JSONLStore) ListFeedback(ctx context.Context) ([]Feedback, error) {
	entries := []Feedback{}
	err := s.stream(ctx, FeedbackFile, func(line []byte) error {
		var f Feedback
		if err := jsonx.Unmarshal(line, &f); err != nil {
			return fmt.Errorf("decode feedback entry: %w", err)
		}
		entries = append(entries, f)
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	return entries, err
}

func (s *JSONLStore) append(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := jsonx.MarshalPlain(v)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", name, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("append %s: %w", name, err)
	}
	return file.Close()
}

func (s *JSONLStore) stream(ctx context.Context, name string, fn func([]byte) error) error {
	path := filepath.Join(s.dir, name)
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Warn("close %s: %v", path, cerr)
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", name, err)
	}
	return nil
}
