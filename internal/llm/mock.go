package llm

import (
	"fmt"
	"strings"
)

const mockReview = `{"Summary": "Offline mock review. No model was called.", "Strengths": ["Clear problem statement"], "Weaknesses": ["Mock output only"], "Novelty": 6, "Workability": 6, "Relevance": 7, "Specificity": 5, "Integration_Depth": 5, "Strategic_Vision": 6, "Methodological_Rigor": 5, "Argumentative_Cohesion": 6, "Intellectual_Depth": 6, "Execution_Credibility": 5, "Scientific_Rigor": 5, "Overall_Quality": 6, "Questions": [], "Limitations": [], "Ethical_Concerns": false, "Confidence": 3, "Decision": "Reject"}`

const mockIdea = `{"Title": "Mock idea", "Problem": "Offline run without a model.", "Motivation": "Exercise the pipeline.", "Method": "Replay canned replies.", "Experiment_Plan": "Configure a real provider."}`

// NewMockGenerator returns an offline generator that answers review prompts
// with a fixed well-formed review and idea prompts with a fixed idea card.
func NewMockGenerator() *ScriptedGenerator {
	gen := NewScriptedGenerator()
	gen.Fallback = mockReply
	return gen
}

func mockReply(req GenerateRequest) (string, error) {
	switch {
	case strings.Contains(req.Prompt, "REVIEW JSON"):
		thought := "The proposal is readable but this is a mock reviewer."
		if len(req.History) > 0 {
			thought += " I am done"
		}
		return fmt.Sprintf("THOUGHT:\n%s\n\nREVIEW JSON:\n```json\n%s\n```\n", thought, mockReview), nil
	case strings.Contains(req.Prompt, "IDEA JSON"):
		return fmt.Sprintf("IDEA JSON:\n```json\n%s\n```\n", mockIdea), nil
	default:
		return "Mock reply: " + firstLine(req.Prompt), nil
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
