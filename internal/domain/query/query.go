// Package query turns list-endpoint query strings into a storage-neutral
// ListQuery. Each builder stage reads the raw parameters and fills one part of
// the ListQuery; Build runs them all.
package query

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Limits applied by LimitBuilder.
const (
	DefaultOffset = 0
	DefaultLimit  = 10
	MaxLimit      = 100
)

// Sorting defaults applied by SortBuilder.
const (
	DefaultOrder    = "createdAt"
	TiebreakField   = "id"
	FieldDeleted    = "deleted"
	selectAllFields = "*"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Raw holds the unparsed list parameters of one request.
type Raw struct {
	Select string
	Filter map[string]string
	With   map[string]string
	Deep   map[string]map[string]string
	Offset string
	Limit  string
	Order  string
	Sort   string
}

// Selection is the projection requested by the caller. An empty Fields slice
// means every field except Excluded.
type Selection struct {
	Fields   []string
	Excluded []string
}

// All reports whether the selection covers every non-excluded field.
func (s Selection) All() bool {
	return len(s.Fields) == 0
}

// Includes reports whether field is part of the selection.
func (s Selection) Includes(field string) bool {
	if slices.Contains(s.Excluded, field) {
		return false
	}

	return s.All() || slices.Contains(s.Fields, field)
}

// Populate describes a relation to load alongside the main records.
type Populate struct {
	Path   string
	Select []string
	// Model is the nested relation of Path, set for deep populates only.
	Model string
}

// Sort is the requested ordering.
type Sort struct {
	Field     string
	Direction Direction
	Tiebreak  string
}

// ListQuery is the parsed, storage-neutral list request.
type ListQuery struct {
	Select    Selection
	Filter    map[string]any
	Populates []Populate
	Deep      []Populate
	Offset    int
	Limit     int
	Sort      Sort
}

// Builder is one independent stage of the pipeline.
type Builder func(raw Raw, q *ListQuery)

// Build runs every stage and returns the resulting ListQuery.
func Build(raw Raw, secureFields []string) *ListQuery {
	q := &ListQuery{}
	for _, stage := range []Builder{
		SelectBuilder(secureFields),
		FilterBuilder,
		WithBuilder,
		DeepBuilder,
		LimitBuilder,
		SortBuilder,
	} {
		stage(raw, q)
	}

	return q
}

// SelectBuilder resolves the projection. "*" or an empty value selects all
// fields minus the secure ones; an explicit list has secure fields removed and
// falls back to the full projection when nothing survives.
func SelectBuilder(secureFields []string) Builder {
	return func(raw Raw, q *ListQuery) {
		q.Select = Selection{Excluded: append([]string(nil), secureFields...)}

		value := strings.TrimSpace(raw.Select)
		if value == "" || value == selectAllFields {
			return
		}

		for _, field := range splitFields(value) {
			if field == selectAllFields || slices.Contains(secureFields, field) || slices.Contains(q.Select.Fields, field) {
				continue
			}
			q.Select.Fields = append(q.Select.Fields, field)
		}
	}
}

// FilterBuilder copies the caller's filters and forces deleted=false.
func FilterBuilder(raw Raw, q *ListQuery) {
	q.Filter = make(map[string]any, len(raw.Filter)+1)
	for field, value := range raw.Filter {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		q.Filter[field] = value
	}
	q.Filter[FieldDeleted] = false
}

// WithBuilder turns with[relation]=f1,f2 into populate descriptors.
func WithBuilder(raw Raw, q *ListQuery) {
	q.Populates = nil
	for _, path := range sortedKeys(raw.With) {
		q.Populates = append(q.Populates, Populate{
			Path:   path,
			Select: splitFields(raw.With[path]),
		})
	}
}

// DeepBuilder turns deep[relation][model]=fields into nested populate descriptors.
func DeepBuilder(raw Raw, q *ListQuery) {
	q.Deep = nil
	for _, path := range sortedKeys(raw.Deep) {
		models := raw.Deep[path]
		for _, model := range sortedKeys(models) {
			q.Deep = append(q.Deep, Populate{
				Path:   path,
				Model:  model,
				Select: splitFields(models[model]),
			})
		}
	}
}

// LimitBuilder parses offset and limit. Offset defaults to 0 and is never
// negative; limit defaults to 10 and is clamped to 1..100.
func LimitBuilder(raw Raw, q *ListQuery) {
	q.Offset = DefaultOffset
	if offset, err := strconv.Atoi(strings.TrimSpace(raw.Offset)); err == nil && offset > 0 {
		q.Offset = offset
	}

	q.Limit = DefaultLimit
	if limit, err := strconv.Atoi(strings.TrimSpace(raw.Limit)); err == nil {
		q.Limit = min(max(limit, 1), MaxLimit)
	}
}

// SortBuilder resolves the order field and direction, defaulting to
// createdAt desc, with id as the secondary key.
func SortBuilder(raw Raw, q *ListQuery) {
	q.Sort = Sort{Field: DefaultOrder, Direction: Desc, Tiebreak: TiebreakField}

	if order := strings.TrimSpace(raw.Order); order != "" {
		q.Sort.Field = order
	}
	if strings.EqualFold(strings.TrimSpace(raw.Sort), string(Asc)) {
		q.Sort.Direction = Asc
	}
}

var (
	bracketOne = regexp.MustCompile(`^(\w+)\[([^\[\]]+)\]$`)
	bracketTwo = regexp.MustCompile(`^(\w+)\[([^\[\]]+)\]\[([^\[\]]+)\]$`)
)

// FromValues extracts the list parameters from a query string.
func FromValues(values url.Values) Raw {
	raw := Raw{
		Select: values.Get("select"),
		Offset: values.Get("offset"),
		Limit:  values.Get("limit"),
		Order:  values.Get("order"),
		Sort:   values.Get("sort"),
		Filter: map[string]string{},
		With:   map[string]string{},
		Deep:   map[string]map[string]string{},
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[0]

		if m := bracketTwo.FindStringSubmatch(key); m != nil && m[1] == "deep" {
			if raw.Deep[m[2]] == nil {
				raw.Deep[m[2]] = map[string]string{}
			}
			raw.Deep[m[2]][m[3]] = value

			continue
		}

		m := bracketOne.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		switch m[1] {
		case "filter":
			raw.Filter[m[2]] = value
		case "with":
			raw.With[m[2]] = value
		}
	}

	return raw
}

func splitFields(value string) []string {
	var fields []string
	for field := range strings.SplitSeq(value, ",") {
		if field = strings.TrimSpace(field); field != "" {
			fields = append(fields, field)
		}
	}

	return fields
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
