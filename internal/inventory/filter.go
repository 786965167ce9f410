package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	platformdb "github.com/smart-inventory/smart-inventory/internal/platform/db"
)

// StockLevel selects products relative to their minimum stock.
type StockLevel string

const (
	StockLevelAll     StockLevel = "all"
	StockLevelLow     StockLevel = "low"
	StockLevelHealthy StockLevel = "healthy"
)

// ParseStockLevel maps the query value to a level. Unknown values mean all.
func ParseStockLevel(raw string) StockLevel {
	switch StockLevel(raw) {
	case StockLevelLow:
		return StockLevelLow
	case StockLevelHealthy:
		return StockLevelHealthy
	default:
		return StockLevelAll
	}
}

// Filter is one predicate of a product query. The set is closed: only
// NameContains and StockLevelFilter implement it.
type Filter interface {
	// Match evaluates the predicate in memory.
	Match(p Product) bool
	// where renders the predicate for Postgres, registering args via bind.
	where(bind func(any) string) string
	// scope applies the predicate to a gorm query on the SQLite store.
	scope(db *gorm.DB) *gorm.DB
}

// NameContains matches names containing Text, ignoring case. LIKE wildcards
// in Text are matched literally.
type NameContains struct {
	Text string
}

func (f NameContains) Match(p Product) bool {
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Text))
}

func (f NameContains) pattern() string {
	return "%" + escapeLike(strings.ToLower(f.Text)) + "%"
}

func (f NameContains) where(bind func(any) string) string {
	return `lower(p.name) LIKE ` + bind(f.pattern()) + ` ESCAPE '\'`
}

func (f NameContains) scope(db *gorm.DB) *gorm.DB {
	return db.Where(platformdb.SQLiteLower+`(name) LIKE ? ESCAPE '\'`, f.pattern())
}

// StockLevelFilter keeps products whose stock is at or under the minimum
// (low) or above it (healthy).
type StockLevelFilter struct {
	Level StockLevel
}

func (f StockLevelFilter) Match(p Product) bool {
	switch f.Level {
	case StockLevelLow:
		return p.Stock <= p.MinStock
	case StockLevelHealthy:
		return p.Stock > p.MinStock
	default:
		return true
	}
}

func (f StockLevelFilter) where(func(any) string) string {
	switch f.Level {
	case StockLevelLow:
		return "p.stock <= p.min_stock"
	case StockLevelHealthy:
		return "p.stock > p.min_stock"
	default:
		return "TRUE"
	}
}

func (f StockLevelFilter) scope(db *gorm.DB) *gorm.DB {
	switch f.Level {
	case StockLevelLow:
		return db.Where("stock <= min_stock")
	case StockLevelHealthy:
		return db.Where("stock > min_stock")
	default:
		return db
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SortDirection orders results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort is a resolved, whitelisted ordering.
type Sort struct {
	Field     string
	Column    string
	Direction SortDirection
}

// DefaultSort orders by stock ascending.
var DefaultSort = Sort{Field: "stock", Column: "stock", Direction: SortAsc}

// sortColumns maps accepted sort field names to columns.
var sortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"stock":      "stock",
	"minStock":   "min_stock",
	"min_stock":  "min_stock",
	"price":      "price",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
}

// ParseSort resolves field and direction. An empty field means stock; a
// direction other than desc (any case) means ascending.
func ParseSort(field, direction string) (Sort, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		field = DefaultSort.Field
	}
	column, ok := sortColumns[field]
	if !ok {
		return Sort{}, fmt.Errorf("%w %q", ErrInvalidSortField, field)
	}
	dir := SortAsc
	if strings.EqualFold(strings.TrimSpace(direction), string(SortDesc)) {
		dir = SortDesc
	}
	return Sort{Field: field, Column: column, Direction: dir}, nil
}

// Query is an AND-list of filters plus an ordering. No filters selects everything.
type Query struct {
	Filters []Filter
	Sort    Sort
}

// ListParams are the raw listing parameters.
type ListParams struct {
	Search        string
	StockLevel    string
	Size          string // accepted, not applied
	SortField     string
	SortDirection string
}

// BuildQuery turns listing parameters into a Query.
func BuildQuery(params ListParams) (Query, error) {
	var q Query
	if params.Search != "" {
		q.Filters = append(q.Filters, NameContains{Text: params.Search})
	}
	if level := ParseStockLevel(params.StockLevel); level != StockLevelAll {
		q.Filters = append(q.Filters, StockLevelFilter{Level: level})
	}
	s, err := ParseSort(params.SortField, params.SortDirection)
	if err != nil {
		return Query{}, err
	}
	q.Sort = s
	return q, nil
}

func (q Query) sortOrDefault() Sort {
	if q.Sort.Column == "" {
		return DefaultSort
	}
	return q.Sort
}

// Match reports whether p satisfies every filter.
func (q Query) Match(p Product) bool {
	for _, f := range q.Filters {
		if !f.Match(p) {
			return false
		}
	}
	return true
}

// Apply filters and orders products in memory, ties broken by id.
func (q Query) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	s := q.sortOrDefault()
	sort.SliceStable(out, func(i, j int) bool {
		c := compareColumn(out[i], out[j], s.Column)
		if c == 0 {
			return out[i].ID < out[j].ID
		}
		if s.Direction == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareColumn(a, b Product, column string) int {
	switch column {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "stock":
		return cmpInt(int64(a.Stock), int64(b.Stock))
	case "min_stock":
		return cmpInt(int64(a.MinStock), int64(b.MinStock))
	case "price":
		return a.Price.Cmp(b.Price)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return cmpInt(a.ID, b.ID)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SQL renders the WHERE and ORDER BY clauses against the products alias p.
// Placeholders start at $1.
func (q Query) SQL() (where, orderBy string, args []any) {
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if len(q.Filters) > 0 {
		parts := make([]string, 0, len(q.Filters))
		for _, f := range q.Filters {
			parts = append(parts, f.where(bind))
		}
		where = " WHERE " + strings.Join(parts, " AND ")
	}
	s := q.sortOrDefault()
	dir := "ASC"
	if s.Direction == SortDesc {
		dir = "DESC"
	}
	orderBy = " ORDER BY p." + s.Column + " " + dir
	if s.Column != "id" {
		orderBy += ", p.id ASC"
	}
	return where, orderBy, args
}

// Scopes returns gorm scopes applying the filters and ordering.
func (q Query) Scopes() []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, len(q.Filters)+1)
	for _, f := range q.Filters {
		scopes = append(scopes, f.scope)
	}
	s := q.sortOrDefault()
	scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Direction == SortDesc})
		if s.Column != "id" {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
		}
		return db
	})
	return scopes
}
