package review

import (
	"strings"

	jsonx "scholar/internal/shared/json"
)

const (
	reviewMarker = "REVIEW JSON:"
	jsonFence    = "```json"
	closingFence = "```"
)

// Extract pulls the structured record out of raw model output. It looks for
// the first ```json fenced block after the "REVIEW JSON:" marker, or the
// first such block anywhere when the marker is missing. The block must hold
// a JSON object. Nothing is repaired.
func Extract(text string) (Record, error) {
	body, err := locateBlock(text)
	if err != nil {
		return nil, err
	}

	obj, err := jsonx.UnmarshalObject([]byte(body))
	if err != nil {
		return nil, &ExtractionError{Reason: "invalid JSON", Err: err}
	}
	if obj == nil {
		return nil, &ExtractionError{Reason: "block is not a JSON object"}
	}
	return Record(obj), nil
}

func locateBlock(text string) (string, error) {
	search := text
	if idx := strings.Index(text, reviewMarker); idx >= 0 {
		search = text[idx+len(reviewMarker):]
	}

	start := strings.Index(search, jsonFence)
	if start < 0 {
		return "", &ExtractionError{Reason: "missing ```json block", Err: ErrNoStructuredBlock}
	}
	rest := search[start+len(jsonFence):]
	end := strings.Index(rest, closingFence)
	if end < 0 {
		return "", &ExtractionError{Reason: "unterminated ```json block"}
	}

	body := strings.TrimSpace(rest[:end])
	if body == "" {
		return "", &ExtractionError{Reason: "empty ```json block"}
	}
	return body, nil
}
