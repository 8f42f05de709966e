package jsonx

import (
	"bytes"
	"errors"
	"io"

	"github.com/goccy/go-json"
)

// Thin wrapper so hot paths can swap JSON implementations in one place.
var (
	Marshal       = json.Marshal
	MarshalIndent = json.MarshalIndent
	Unmarshal     = json.Unmarshal
	NewDecoder    = json.NewDecoder
	NewEncoder    = json.NewEncoder
	Valid         = json.Valid
)

type RawMessage = json.RawMessage
type Number = json.Number

// MarshalPlain encodes v without HTML escaping and without the trailing
// newline an Encoder adds. Map keys are sorted.
func MarshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalObject decodes data into a generic object, keeping numbers as
// json.Number so integers survive round trips. Anything but whitespace after
// the first value is an error.
func UnmarshalObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return out, nil
}

// ErrTrailingData reports input that continues past the decoded value.
var ErrTrailingData = errors.New("unexpected data after JSON value")
