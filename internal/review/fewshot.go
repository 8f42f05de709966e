package review

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonx "scholar/internal/shared/json"
)

//go:embed fewshot/*.json
var fewshotFS embed.FS

// Exemplar is a static (proposal, review) pair shown to the model.
type Exemplar struct {
	Proposal string         `json:"proposal"`
	Review   map[string]any `json:"review"`
}

var (
	exemplarsOnce sync.Once
	exemplars     []Exemplar
	exemplarsErr  error
)

// Exemplars returns the embedded few-shot examples in file name order.
func Exemplars() ([]Exemplar, error) {
	exemplarsOnce.Do(func() {
		entries, err := fewshotFS.ReadDir("fewshot")
		if err != nil {
			exemplarsErr = fmt.Errorf("read few-shot examples: %w", err)
			return
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			data, err := fewshotFS.ReadFile("fewshot/" + name)
			if err != nil {
				exemplarsErr = fmt.Errorf("read few-shot example %s: %w", name, err)
				return
			}
			var ex Exemplar
			if err := jsonx.Unmarshal(data, &ex); err != nil {
				exemplarsErr = fmt.Errorf("parse few-shot example %s: %w", name, err)
				return
			}
			exemplars = append(exemplars, ex)
		}
	})
	return exemplars, exemplarsErr
}

// fewShotBlock renders the first n exemplars after the intro text. n larger
// than the number of exemplars uses all of them.
func fewShotBlock(intro string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	all, err := Exemplars()
	if err != nil {
		return "", err
	}
	if n > len(all) {
		n = len(all)
	}

	var b strings.Builder
	b.WriteString(intro)
	for _, ex := range all[:n] {
		reviewJSON, err := jsonx.MarshalPlain(ex.Review)
		if err != nil {
			return "", fmt.Errorf("encode few-shot review: %w", err)
		}
		fmt.Fprintf(&b, "\nProposal:\n\n```\n%s\n```\n\nReview:\n\n```\n%s\n```\n", ex.Proposal, reviewJSON)
	}
	return b.String(), nil
}
