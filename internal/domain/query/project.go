package query

import (
	"encoding/json"

	"restapi/internal/errors"
)

// Project renders v as a JSON object restricted to the selected fields. The
// "id" field is always kept. A selection covering all fields returns v as is.
func Project(v any, sel Selection) (any, error) {
	if sel.All() && len(sel.Excluded) == 0 {
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal projection")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "unmarshal projection")
	}

	projected := make(map[string]json.RawMessage, len(fields))
	for name, value := range fields {
		if name == TiebreakField || sel.Includes(name) {
			projected[name] = value
		}
	}

	return projected, nil
}

// ProjectAll applies Project to every element of items.
func ProjectAll[T any](items []T, sel Selection) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		projected, err := Project(item, sel)
		if err != nil {
			return nil, err
		}
		out = append(out, projected)
	}

	return out, nil
}
