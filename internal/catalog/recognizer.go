package catalog

import (
	"encoding/json"
	"sort"
)

// shapeRecognizer is one predicate+extractor pair in the ordered chain
// that absorbs provider response shape variance. New provider shapes are
// supported by appending a recognizer, not by widening a conditional.
type shapeRecognizer struct {
	name    string
	extract func(raw json.RawMessage) ([]json.RawMessage, bool)
}

// responseRecognizers are tried in order against a full search response.
// Production responses arrive as a flat array, as a nested
// {"data":{"products":[...]}} envelope, or as an object map of records.
var responseRecognizers = []shapeRecognizer{
	{name: "flat_array", extract: extractArray},
	{name: "data_envelope", extract: extractDataEnvelope},
	{name: "object_map", extract: extractObjectMap},
}

// ExtractItems splits a raw provider response into individual record
// payloads. An unrecognized shape yields the payload itself as a single
// record so the per-item normalizer gets a chance to drop it.
func ExtractItems(raw json.RawMessage) []json.RawMessage {
	for _, rec := range responseRecognizers {
		if items, ok := rec.extract(raw); ok {
			return items
		}
	}
	return []json.RawMessage{raw}
}

func extractArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// listKeys are the field names providers use for the record list inside a
// data envelope, tried in order.
var listKeys = []string{"products", "items", "docs", "result"}

func extractDataEnvelope(raw json.RawMessage) ([]json.RawMessage, bool) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil, false
	}

	if items, ok := extractArray(envelope.Data); ok {
		return items, true
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Data, &inner); err != nil {
		return nil, false
	}
	for _, key := range listKeys {
		if list, ok := inner[key]; ok {
			if items, ok := extractArray(list); ok {
				return items, true
			}
		}
	}
	return nil, false
}

// extractObjectMap handles responses keyed by product ID where each value
// is a record. Keys are sorted so output order is deterministic.
func extractObjectMap(raw json.RawMessage) ([]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k, v := range m {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(v, &probe); err != nil {
			return nil, false // values aren't records, not this shape
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]json.RawMessage, 0, len(keys))
	for _, k := range keys {
		items = append(items, m[k])
	}
	return items, true
}

// itemRecognizers unwrap a single record payload: an array is flattened
// one level to its first record, a "product" wrapper field is unwrapped,
// and anything else is treated as the record itself.
var itemRecognizers = []shapeRecognizer{
	{name: "item_array", extract: extractArray},
	{name: "product_field", extract: extractProductField},
}

func extractProductField(raw json.RawMessage) ([]json.RawMessage, bool) {
	var wrapper struct {
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil || len(wrapper.Product) == 0 {
		return nil, false
	}
	if items, ok := extractArray(wrapper.Product); ok {
		return items, true
	}
	return []json.RawMessage{wrapper.Product}, true
}

// unwrapItem resolves one raw item payload to the record to extract
// fields from, applying the item recognizers in order.
func unwrapItem(raw json.RawMessage) (json.RawMessage, bool) {
	for _, rec := range itemRecognizers {
		if items, ok := rec.extract(raw); ok {
			if len(items) == 0 {
				return nil, false
			}
			return items[0], true
		}
	}
	return raw, true
}
