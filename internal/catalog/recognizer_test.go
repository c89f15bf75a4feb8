package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractItems(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			"Flat array",
			`[{"id": 1}, {"id": 2}]`,
			2,
		},
		{
			"Data envelope with products list",
			`{"data": {"products": [{"id": 1}, {"id": 2}, {"id": 3}]}}`,
			3,
		},
		{
			"Data envelope with items list",
			`{"data": {"items": [{"id": 1}]}}`,
			1,
		},
		{
			"Data envelope with docs list",
			`{"data": {"docs": [{"id": 1}, {"id": 2}]}}`,
			2,
		},
		{
			"Data envelope with result list",
			`{"data": {"result": [{"id": 1}]}}`,
			1,
		},
		{
			"Data field holding the array directly",
			`{"data": [{"id": 1}, {"id": 2}]}`,
			2,
		},
		{
			"Object map keyed by product ID",
			`{"1005001": {"id": 1}, "1005002": {"id": 2}}`,
			2,
		},
		{
			"Empty array",
			`[]`,
			0,
		},
		{
			"Unrecognized shape passes through as one record",
			`{"id": 1, "title": "Lamp"}`,
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ExtractItems(json.RawMessage(tt.input))
			assert.Len(t, items, tt.expected)
		})
	}
}

func TestExtractObjectMapDeterministicOrder(t *testing.T) {
	raw := json.RawMessage(`{"b": {"id": 2}, "a": {"id": 1}, "c": {"id": 3}}`)

	items, ok := extractObjectMap(raw)
	require.True(t, ok)
	require.Len(t, items, 3)

	// Keys are sorted, so the record under "a" comes first.
	assert.JSONEq(t, `{"id": 1}`, string(items[0]))
	assert.JSONEq(t, `{"id": 2}`, string(items[1]))
	assert.JSONEq(t, `{"id": 3}`, string(items[2]))
}

func TestExtractObjectMapRejectsScalarValues(t *testing.T) {
	_, ok := extractObjectMap(json.RawMessage(`{"count": 5, "page": 1}`))
	assert.False(t, ok)
}

func TestUnwrapItem(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		expected string
	}{
		{"Plain record", `{"id": 1}`, true, `{"id": 1}`},
		{"Array takes first record", `[{"id": 1}, {"id": 2}]`, true, `{"id": 1}`},
		{"Empty array is dropped", `[]`, false, ""},
		{"Product wrapper is unwrapped", `{"product": {"id": 1}}`, true, `{"id": 1}`},
		{"Product wrapper holding an array", `{"product": [{"id": 1}]}`, true, `{"id": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, ok := unwrapItem(json.RawMessage(tt.input))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.JSONEq(t, tt.expected, string(record))
			}
		})
	}
}
