package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedGenerator replays canned replies. It is used by the mock provider
// and by tests that need to count calls.
type ScriptedGenerator struct {
	mu      sync.Mutex
	replies []ScriptedReply
	next    int
	calls   []GenerateRequest
	// Fallback answers once the script is exhausted. When nil, an exhausted
	// script returns an error.
	Fallback func(req GenerateRequest) (string, error)
}

// ScriptedReply is one canned outcome.
type ScriptedReply struct {
	Text string
	Err  error
}

var _ Generator = (*ScriptedGenerator)(nil)

// NewScriptedGenerator builds a generator that returns replies in order.
func NewScriptedGenerator(replies ...ScriptedReply) *ScriptedGenerator {
	return &ScriptedGenerator{replies: replies}
}

// Generate returns the next scripted reply.
func (s *ScriptedGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return GenerateResult{}, err
	}

	s.mu.Lock()
	s.calls = append(s.calls, req)
	var (
		reply ScriptedReply
		ok    bool
	)
	if s.next < len(s.replies) {
		reply, ok = s.replies[s.next], true
		s.next++
	}
	fallback := s.Fallback
	s.mu.Unlock()

	if !ok {
		if fallback == nil {
			return GenerateResult{}, fmt.Errorf("scripted generator exhausted")
		}
		text, err := fallback(req)
		reply = ScriptedReply{Text: text, Err: err}
	}
	if reply.Err != nil {
		return GenerateResult{}, reply.Err
	}
	return GenerateResult{
		Text:       reply.Text,
		Transcript: completeTranscript(req, reply.Text),
		Model:      "scripted",
	}, nil
}

// GenerateN consumes n replies sequentially so the outcome order is
// deterministic, then drops failed members.
func (s *ScriptedGenerator) GenerateN(ctx context.Context, req GenerateRequest, n int) ([]GenerateResult, error) {
	results := make([]GenerateResult, 0, n)
	var lastErr error
	for i := 0; i < n; i++ {
		res, err := s.Generate(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		results = append(results, res)
	}
	if len(results) == 0 && n > 0 {
		return nil, fmt.Errorf("all %d generations failed: %w", n, lastErr)
	}
	return results, nil
}

// Calls returns a copy of every request received so far.
func (s *ScriptedGenerator) Calls() []GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]GenerateRequest, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many generations were requested.
func (s *ScriptedGenerator) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
