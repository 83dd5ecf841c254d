package postgres

import (
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"restapi/internal/domain/query"
)

// resource describes how the API fields of one table map onto columns.
type resource struct {
	table string
	// columns maps public field names to columns. Secure columns are absent.
	columns map[string]string
	// keys are always selected so mapping and preloads keep working.
	keys []string
	// prefixFilters are matched case-insensitively on their leading characters.
	prefixFilters map[string]bool
	relations     map[string]relation
}

type relation struct {
	association string // GORM association name
	target      string // resources key
}

var resources = map[string]*resource{
	"users": {
		table: "users",
		columns: map[string]string{
			"id":           "id",
			"firstName":    "first_name",
			"lastName":     "last_name",
			"email":        "email",
			"phone":        "phone",
			"role":         "role",
			"gender":       "gender",
			"birthDate":    "birth_date",
			"bio":          "bio",
			"image":        "image",
			"activeFlag":   "active_flag",
			"verifiedFlag": "verified_flag",
			"createdAt":    "created_at",
			"updatedAt":    "updated_at",
		},
		keys:          []string{"id"},
		prefixFilters: map[string]bool{"email": true, "firstName": true, "lastName": true},
		relations: map[string]relation{
			"addresses": {association: "Addresses", target: "addresses"},
		},
	},
	"addresses": {
		table: "addresses",
		columns: map[string]string{
			"id":        "id",
			"userId":    "user_id",
			"street":    "street",
			"area":      "area",
			"city":      "city",
			"state":     "state",
			"landmark":  "landmark",
			"pincode":   "pincode",
			"lat":       "lat",
			"long":      "long",
			"tag":       "tag",
			"createdAt": "created_at",
			"updatedAt": "updated_at",
		},
		keys:          []string{"id", "user_id"},
		prefixFilters: map[string]bool{"city": true, "street": true},
		relations: map[string]relation{
			"user": {association: "User", target: "users"},
		},
	},
	"activities": {
		table: "activities",
		columns: map[string]string{
			"id":        "id",
			"userId":    "user_id",
			"activity":  "activity",
			"module":    "action_module",
			"targetId":  "action_target_id",
			"message":   "message",
			"createdAt": "created_at",
			"updatedAt": "updated_at",
		},
		keys: []string{"id", "user_id"},
		relations: map[string]relation{
			"user": {association: "User", target: "users"},
		},
	},
}

// applyFilters adds the caller's filters plus the soft-delete guard.
func (r *resource) applyFilters(db *gorm.DB, q *query.ListQuery) *gorm.DB {
	db = db.Where(r.qualify("deleted")+" = ?", false)
	if q == nil {
		return db
	}

	for _, field := range sortedFilterKeys(q.Filter) {
		if field == query.FieldDeleted {
			continue
		}
		column, ok := r.columns[field]
		if !ok {
			continue
		}

		value := q.Filter[field]
		if r.prefixFilters[field] {
			if s, ok := value.(string); ok {
				db = db.Where(r.qualify(column)+" ILIKE ?", escapeLike(s)+"%")

				continue
			}
		}
		db = db.Where(r.qualify(column)+" = ?", value)
	}

	return db
}

// applyPage adds projection, ordering, pagination and preloads.
func (r *resource) applyPage(db *gorm.DB, q *query.ListQuery) *gorm.DB {
	if q == nil {
		return db
	}

	if columns := r.selectColumns(q.Select.Fields); columns != nil {
		db = db.Select(columns)
	}

	direction := "DESC"
	if q.Sort.Direction == query.Asc {
		direction = "ASC"
	}
	orderColumn, ok := r.columns[q.Sort.Field]
	if !ok {
		orderColumn = "created_at"
	}
	db = db.Order(fmt.Sprintf("%s %s", r.qualify(orderColumn), direction))
	if tiebreak, ok := r.columns[q.Sort.Tiebreak]; ok && tiebreak != orderColumn {
		db = db.Order(fmt.Sprintf("%s %s", r.qualify(tiebreak), direction))
	}

	db = db.Offset(q.Offset).Limit(q.Limit)

	return r.applyPopulates(db, q)
}

func (r *resource) applyPopulates(db *gorm.DB, q *query.ListQuery) *gorm.DB {
	for _, populate := range q.Populates {
		rel, ok := r.relations[populate.Path]
		if !ok {
			continue
		}
		target := resources[rel.target]
		db = db.Preload(rel.association, target.preloadScope(populate.Select))
	}

	for _, populate := range q.Deep {
		rel, ok := r.relations[populate.Path]
		if !ok {
			continue
		}
		target := resources[rel.target]
		nested, ok := target.relations[populate.Model]
		if !ok {
			continue
		}
		if !slices.ContainsFunc(q.Populates, func(p query.Populate) bool { return p.Path == populate.Path }) {
			db = db.Preload(rel.association, target.preloadScope(nil))
		}
		db = db.Preload(rel.association+"."+nested.association, resources[nested.target].preloadScope(populate.Select))
	}

	return db
}

// preloadScope restricts a preloaded relation to live rows and the chosen columns.
func (r *resource) preloadScope(fields []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(r.qualify("deleted")+" = ?", false)
		if columns := r.selectColumns(fields); columns != nil {
			return db.Select(columns)
		}

		return db.Select(r.publicColumns())
	}
}

// selectColumns returns nil when every public column is wanted by the caller.
func (r *resource) selectColumns(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}

	columns := make([]string, 0, len(fields)+len(r.keys))
	for _, key := range r.keys {
		columns = append(columns, r.qualify(key))
	}
	for _, field := range fields {
		column, ok := r.columns[field]
		if !ok || slices.Contains(r.keys, column) {
			continue
		}
		columns = append(columns, r.qualify(column))
	}

	return columns
}

func (r *resource) publicColumns() []string {
	columns := make([]string, 0, len(r.columns)+len(r.keys))
	for _, key := range r.keys {
		columns = append(columns, r.qualify(key))
	}
	for _, column := range r.columns {
		if !slices.Contains(r.keys, column) {
			columns = append(columns, r.qualify(column))
		}
	}
	slices.Sort(columns)

	return columns
}

func (r *resource) qualify(column string) string {
	return r.table + "." + column
}

func sortedFilterKeys(filter map[string]any) []string {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
