package ideagen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	jsonx "scholar/internal/shared/json"
)

const ideaMarker = "IDEA JSON:"

// ErrNoIdea is returned when the synthesis message holds no JSON object.
var ErrNoIdea = errors.New("no idea card in synthesis output")

// Idea is the research idea card produced by the synthesizer.
type Idea struct {
	Title          string `json:"Title"`
	Problem        string `json:"Problem"`
	Motivation     string `json:"Motivation"`
	Method         string `json:"Method"`
	ExperimentPlan string `json:"Experiment_Plan"`
}

// Proposal renders the card as proposal text the reviewer accepts.
func (i Idea) Proposal() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\n", i.Title)
	fmt.Fprintf(&b, "Problem Statement: %s\n\n", i.Problem)
	fmt.Fprintf(&b, "Motivation & Hypothesis: %s\n\n", i.Motivation)
	fmt.Fprintf(&b, "Proposed Method: %s\n\n", i.Method)
	fmt.Fprintf(&b, "Step-by-Step Experiment Plan: %s\n", i.ExperimentPlan)
	return b.String()
}

// ParseIdea pulls the idea card out of free text. Models often emit
// trailing commas, single quotes, or truncated objects, so the candidate is
// repaired before decoding.
func ParseIdea(text string) (Idea, error) {
	candidate := ideaCandidate(text)
	if candidate == "" {
		return Idea{}, ErrNoIdea
	}

	var idea Idea
	if err := jsonx.Unmarshal([]byte(candidate), &idea); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil {
			return Idea{}, fmt.Errorf("repair idea JSON: %w", repairErr)
		}
		if err := jsonx.Unmarshal([]byte(repaired), &idea); err != nil {
			return Idea{}, fmt.Errorf("decode idea JSON: %w", err)
		}
	}
	if strings.TrimSpace(idea.Title) == "" {
		return Idea{}, fmt.Errorf("%w: missing Title", ErrNoIdea)
	}
	return idea, nil
}

func ideaCandidate(text string) string {
	if i := strings.Index(text, ideaMarker); i >= 0 {
		text = text[i+len(ideaMarker):]
	}
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		text = rest
	}
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	text = text[start:]
	if end := strings.LastIndex(text, "}"); end >= 0 {
		text = text[:end+1]
	}
	return strings.TrimSpace(text)
}
