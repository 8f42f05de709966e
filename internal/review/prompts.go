package review

import (
	"fmt"
	"strconv"
	"strings"

	"scholar/internal/prompts"
)

// Polarity biases reviewers when they are unsure.
type Polarity string

const (
	PolarityStrict  Polarity = "strict"
	PolarityLenient Polarity = "lenient"
)

// ParsePolarity maps a config string onto a Polarity.
func ParsePolarity(s string) (Polarity, error) {
	switch Polarity(strings.ToLower(strings.TrimSpace(s))) {
	case PolarityStrict, "":
		return PolarityStrict, nil
	case PolarityLenient:
		return PolarityLenient, nil
	}
	return "", fmt.Errorf("unknown polarity %q", s)
}

func (p Polarity) instruction() string {
	if p == PolarityLenient {
		return "If a proposal is strong or you are unsure, give it high scores and accept it."
	}
	return "If a proposal is weak or you are unsure, give it low scores and reject it."
}

// promptBuilder renders every prompt the pipeline sends.
type promptBuilder struct {
	loader *prompts.PromptLoader
}

func (b promptBuilder) render(name string, vars map[string]string) (string, error) {
	out, err := b.loader.RenderPrompt(name, vars)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return out, nil
}

func (b promptBuilder) reviewerSystem(p Polarity) (string, error) {
	out, err := b.render(prompts.ReviewerSystem, map[string]string{"polarity": p.instruction()})
	return strings.TrimSpace(out), err
}

func (b promptBuilder) metaReviewerSystem(reviewers int) (string, error) {
	out, err := b.render(prompts.MetaReviewerSystem, map[string]string{"reviewer_count": strconv.Itoa(reviewers)})
	return strings.TrimSpace(out), err
}

// form renders the rubric description plus the response format.
func (b promptBuilder) form(r Rubric) (string, error) {
	name := prompts.ExtendedForm
	if r.Kind == RubricShort {
		name = prompts.ShortForm
	}
	section := ""
	if r.CallResponse {
		s, err := b.render(prompts.CallResponseSection, nil)
		if err != nil {
			return "", err
		}
		section = s
	}
	form, err := b.render(name, map[string]string{"call_response_section": section})
	if err != nil {
		return "", err
	}
	format, err := b.render(prompts.ReviewFormat, map[string]string{"score_fields": r.scoreFieldPrompt()})
	if err != nil {
		return "", err
	}
	return form + format, nil
}

// reviewPrompt is the base prompt: form, optional few-shot block, optional
// call-for-proposal context, and the proposal text.
func (b promptBuilder) reviewPrompt(r Rubric, proposal, callForProposal string, numFewShot int) (string, error) {
	form, err := b.form(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(form)

	if numFewShot > 0 {
		intro, err := b.render(prompts.FewShotIntro, nil)
		if err != nil {
			return "", err
		}
		block, err := fewShotBlock(intro, numFewShot)
		if err != nil {
			return "", err
		}
		sb.WriteString(block)
	}

	callContext := ""
	if strings.TrimSpace(callForProposal) != "" {
		hint := ""
		if r.CallResponse {
			hint = `, particularly for the "Call_Response" dimension. You MUST include both "Call_Response" and "Call_Response_Feedback" fields in your JSON response`
		}
		callContext, err = b.render(prompts.CallContext, map[string]string{
			"call_for_proposal":  strings.TrimSpace(callForProposal),
			"call_response_hint": hint,
		})
		if err != nil {
			return "", err
		}
	}

	tail, err := b.render(prompts.Proposal, map[string]string{
		"call_context": callContext,
		"proposal":     proposal,
	})
	if err != nil {
		return "", err
	}
	sb.WriteString(tail)
	return sb.String(), nil
}

// metaReviewPrompt embeds every ensemble record as JSON after the form.
func (b promptBuilder) metaReviewPrompt(r Rubric, records []Record) (string, error) {
	form, err := b.form(r)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(form)
	for i, rec := range records {
		fmt.Fprintf(&sb, "\nReview %d/%d:\n```\n%s\n```\n", i+1, len(records), rec.JSON())
	}
	return sb.String(), nil
}

func (b promptBuilder) reflectionPrompt(round, total int) (string, error) {
	return b.render(prompts.Reflection, map[string]string{
		"current_round":   strconv.Itoa(round),
		"num_reflections": strconv.Itoa(total),
	})
}

// aggregationTurn is the synthetic assistant turn that hands the aggregated
// record to the reflection phase.
func aggregationTurn(reviewers int, rec Record) string {
	return fmt.Sprintf("THOUGHT:\nI will start by aggregating the opinions of %d reviewers that I previously obtained.\n\n%s\n```json\n%s\n```\n",
		reviewers, reviewMarker, rec.JSON())
}
