package llm

import (
	"context"
)

// Role tags a transcript turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is an ordered, append-only list of turns owned by a single
// caller. Appending never mutates the receiver's backing array.
type Transcript []Message

// Append returns a new transcript with msgs added at the end.
func (t Transcript) Append(msgs ...Message) Transcript {
	out := make(Transcript, 0, len(t)+len(msgs))
	out = append(out, t...)
	return append(out, msgs...)
}

// WithoutLast returns a copy of the transcript minus its final turn.
func (t Transcript) WithoutLast() Transcript {
	if len(t) == 0 {
		return Transcript{}
	}
	return t[:len(t)-1].Clone()
}

// Clone returns an independent copy.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Last returns the final turn, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

// GenerateRequest describes one completion.
type GenerateRequest struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
	// History holds prior user/assistant turns. The system instruction is
	// sent separately on every call.
	History Transcript
}

// Usage reports token accounting returned by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// GenerateResult carries the raw completion and the transcript extended
// with the prompt and the reply.
type GenerateResult struct {
	Text       string
	Transcript Transcript
	Usage      Usage
	Model      string
}

// Generator is the text generation capability consumed by the reviewer and
// the idea-generation agents.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	// GenerateN returns up to n independent completions of the same request.
	// Failed members are dropped, so callers must not assume index alignment.
	GenerateN(ctx context.Context, req GenerateRequest, n int) ([]GenerateResult, error)
}

// completeTranscript appends the prompt and reply to the request history.
func completeTranscript(req GenerateRequest, reply string) Transcript {
	return req.History.Append(
		Message{Role: RoleUser, Content: req.Prompt},
		Message{Role: RoleAssistant, Content: reply},
	)
}
