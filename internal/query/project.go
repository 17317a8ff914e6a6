package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IDField is always kept by Project.
const IDField = "id"

// Project renders items as JSON objects holding only the selected top-level
// fields plus IDField. A nested field such as "location.city" keeps its
// top-level parent. With no fields the items are returned unchanged.
func Project[T any](items []T, fields []string) (any, error) {
	if len(fields) == 0 {
		return items, nil
	}

	keep := make(map[string]struct{}, len(fields)+1)
	keep[IDField] = struct{}{}
	for _, f := range fields {
		parent, _, _ := strings.Cut(f, ".")
		keep[parent] = struct{}{}
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal item: %w", err)
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(data, &full); err != nil {
			return nil, fmt.Errorf("failed to project item: %w", err)
		}
		projected := make(map[string]json.RawMessage, len(keep))
		for k, v := range full {
			if _, ok := keep[k]; ok {
				projected[k] = v
			}
		}
		out = append(out, projected)
	}
	return out, nil
}
