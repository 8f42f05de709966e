package review

import (
	"fmt"
	"strings"
)

// RubricKind selects one of the two score schemas.
type RubricKind string

const (
	RubricShort    RubricKind = "short"
	RubricExtended RubricKind = "extended"
)

// ParseRubricKind maps a config string onto a RubricKind.
func ParseRubricKind(s string) (RubricKind, error) {
	switch RubricKind(strings.ToLower(strings.TrimSpace(s))) {
	case RubricExtended, "":
		return RubricExtended, nil
	case RubricShort:
		return RubricShort, nil
	}
	return "", fmt.Errorf("unknown rubric %q", s)
}

// ScoreField is a numeric field with an inclusive valid range.
type ScoreField struct {
	Name string
	Min  float64
	Max  float64
	// Prompt is the one-line description given to the model.
	Prompt string
}

// Contains reports whether v lies within the inclusive range.
func (f ScoreField) Contains(v float64) bool {
	return v >= f.Min && v <= f.Max
}

// Criterion is the human-facing description of a score field.
type Criterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Rubric is the schema a review is scored against. The extended rubric has
// an optional call-response sub-variant adding Call_Response and
// Call_Response_Feedback.
type Rubric struct {
	Kind         RubricKind
	CallResponse bool
}

// SelectRubric picks the schema for a request. A non-blank call for proposal
// enables the call-response fields on the extended rubric.
func SelectRubric(kind RubricKind, callForProposal string) Rubric {
	if kind == "" {
		kind = RubricExtended
	}
	return Rubric{
		Kind:         kind,
		CallResponse: kind == RubricExtended && strings.TrimSpace(callForProposal) != "",
	}
}

const (
	FieldOverallQuality       = "Overall_Quality"
	FieldConfidence           = "Confidence"
	FieldCallResponse         = "Call_Response"
	FieldCallResponseFeedback = "Call_Response_Feedback"
)

var extendedDimensions = []ScoreField{
	{Name: "Novelty", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the originality and paradigm-modifying potential of the core idea."},
	{Name: "Workability", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the feasibility and implementability of the proposed plan."},
	{Name: "Relevance", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating how well the proposal applies to and solves the stated problem."},
	{Name: "Specificity", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the clarity, completeness, and detail of the proposal articulation."},
	{Name: "Integration_Depth", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating how well diverse concepts and methods are integrated into a cohesive framework."},
	{Name: "Strategic_Vision", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the long-term potential and forward-looking perspective of the proposal."},
	{Name: "Methodological_Rigor", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the soundness and appropriateness of the proposed research methods."},
	{Name: "Argumentative_Cohesion", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the logical flow and coherence of the argument presented."},
}

var shortDimensions = []ScoreField{
	{Name: "Argumentative_Cohesion", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the logical integrity and persuasiveness of the narrative thread."},
	{Name: "Intellectual_Depth", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the significance and originality of the core insight."},
	{Name: "Execution_Credibility", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the feasibility and groundedness of the proposed execution plan."},
	{Name: "Scientific_Rigor", Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the objectivity and integrity of the validation plan."},
}

var (
	callResponseField = ScoreField{Name: FieldCallResponse, Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating how well the proposal addresses and responds to the specific requirements outlined in the call for proposal (MANDATORY if a call for proposal was provided - DO NOT SKIP)."}
	overallField      = ScoreField{Name: FieldOverallQuality, Min: 1, Max: 10, Prompt: "A rating from 1 to 10 evaluating the overall quality and potential impact of the research idea."}
	confidenceField   = ScoreField{Name: FieldConfidence, Min: 1, Max: 5}
)

const callResponseFeedbackPrompt = `- "Call_Response_Feedback": A detailed analysis of how well the proposal addresses the call for proposal, including specific suggestions for improvement (MANDATORY if a call for proposal was provided - DO NOT SKIP).`

// Dimensions returns the rubric's scored dimensions, excluding overall
// quality and confidence.
func (r Rubric) Dimensions() []ScoreField {
	var dims []ScoreField
	if r.Kind == RubricShort {
		dims = append(dims, shortDimensions...)
	} else {
		dims = append(dims, extendedDimensions...)
	}
	if r.CallResponse {
		dims = append(dims, callResponseField)
	}
	return dims
}

// ScoreFields lists every numeric field aggregated across an ensemble.
func (r Rubric) ScoreFields() []ScoreField {
	return append(r.Dimensions(), overallField, confidenceField)
}

// FieldNames lists every numeric field name in aggregation order.
func (r Rubric) FieldNames() []string {
	fields := r.ScoreFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// scoreFieldPrompt renders the JSON field list lines for the score fields
// that the shared response format does not already describe.
func (r Rubric) scoreFieldPrompt() string {
	var b strings.Builder
	for i, f := range r.Dimensions() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %q: %s", f.Name, f.Prompt)
		if f.Name == FieldCallResponse {
			b.WriteByte('\n')
			b.WriteString(callResponseFeedbackPrompt)
		}
	}
	fmt.Fprintf(&b, "\n- %q: %s", overallField.Name, overallField.Prompt)
	return b.String()
}

var criteria = map[string]Criterion{
	FieldOverallQuality: {
		Name:        "Overall Quality of Idea",
		Description: "Synthesizes every dimension to evaluate the proposal's overall quality and potential impact, and how well it balances creativity, feasibility, and impact.",
	},
	"Novelty": {
		Name:        "Novelty",
		Description: "The degree to which the proposal introduces an original idea that modifies existing paradigms, weighing originality and paradigm relatedness.",
	},
	"Workability": {
		Name:        "Workability",
		Description: "Whether the plan can be implemented without violating known technical, ethical, or resource constraints, including risk awareness and mitigation.",
	},
	"Relevance": {
		Name:        "Relevance",
		Description: "How well the proposal applies to the stated research problem and how likely it is to achieve meaningful results.",
	},
	"Specificity": {
		Name:        "Specificity",
		Description: "How clearly and completely the proposal is worked out, with explicit links between actions and outcomes.",
	},
	"Integration_Depth": {
		Name:        "Integration Depth",
		Description: "How well diverse concepts, methods, or data sources are combined into a cohesive and synergistic framework.",
	},
	"Strategic_Vision": {
		Name:        "Strategic Vision",
		Description: "The long-term potential of the work and whether it sets the stage for a broader research agenda.",
	},
	"Methodological_Rigor": {
		Name:        "Methodological Rigor",
		Description: "The soundness of experimental design, data collection, analysis, and validation, and the reproducibility of results.",
	},
	"Argumentative_Cohesion": {
		Name:        "Argumentative Cohesion",
		Description: "The logical flow of the argument and how well sections connect into a unified, evidence-backed narrative.",
	},
	"Intellectual_Depth": {
		Name:        "Intellectual Depth",
		Description: "The significance and originality of the core insight, as opposed to a predictable incremental improvement.",
	},
	"Execution_Credibility": {
		Name:        "Execution Credibility",
		Description: "The feasibility of the plan and the concreteness of the strategies proposed to overcome its technical risks.",
	},
	"Scientific_Rigor": {
		Name:        "Scientific Rigor",
		Description: "The objectivity of the validation plan, including fair baselines, ablations, and experiments aimed at the truth.",
	},
	FieldCallResponse: {
		Name:        "Call for Proposal Response",
		Description: "How well the proposal addresses the requirements, themes, and objectives of the call for proposal it answers.",
	},
}

// Criteria returns the display table for every scored dimension of the
// rubric plus overall quality. Confidence is not described.
func (r Rubric) Criteria() map[string]Criterion {
	out := make(map[string]Criterion)
	for _, f := range append(r.Dimensions(), overallField) {
		if c, ok := criteria[f.Name]; ok {
			out[f.Name] = c
		}
	}
	return out
}
