package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalPlainKeepsMarkup(t *testing.T) {
	out, err := MarshalPlain(map[string]any{"b": "<x>", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"<x>"}`, string(out))
}

func TestUnmarshalObjectUsesNumber(t *testing.T) {
	obj, err := UnmarshalObject([]byte(`{"Novelty": 7, "Summary": "s"}`))
	require.NoError(t, err)
	assert.Equal(t, Number("7"), obj["Novelty"])

	_, err = UnmarshalObject([]byte(`[1,2]`))
	require.Error(t, err)
}

func TestUnmarshalObjectRejectsTrailingData(t *testing.T) {
	for name, input := range map[string]string{
		"prose":         `{"Novelty": 7} trailing prose`,
		"stray brace":   `{"Novelty": 7}, "Decision": "Accept"}`,
		"second object": `{"a":1}{"b":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			obj, err := UnmarshalObject([]byte(input))
			require.Error(t, err)
			assert.Nil(t, obj)
		})
	}

	obj, err := UnmarshalObject([]byte("  {\"a\": 1}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, Number("1"), obj["a"])
}
