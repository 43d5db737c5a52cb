package repository

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

var ErrInvalidQuery = errors.New("invalid query")

type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

var sqlOperators = map[Operator]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindID
	kindInt
	kindTime
)

type filterField struct {
	column string
	kind   fieldKind
}

// filterFields is the complete set of fields a client may filter posts on.
var filterFields = map[string]filterField{
	"title":     {column: "p.title", kind: kindText},
	"author":    {column: "p.author_id", kind: kindID},
	"likes":     {column: "p.likes", kind: kindInt},
	"dislikes":  {column: "p.dislikes", kind: kindInt},
	"loves":     {column: "p.loves", kind: kindInt},
	"createdAt": {column: "p.created_at", kind: kindTime},
	"updatedAt": {column: "p.updated_at", kind: kindTime},
}

var sortFields = map[string]string{
	"title":     "p.title",
	"likes":     "p.likes",
	"dislikes":  "p.dislikes",
	"loves":     "p.loves",
	"createdAt": "p.created_at",
	"updatedAt": "p.updated_at",
}

// Filter is one client condition, e.g. likes[gte]=10.
type Filter struct {
	Field    string
	Operator Operator
	Value    string
}

type SortField struct {
	Field string
	Desc  bool
}

type PostQuery struct {
	Filters []Filter
	Sort    []SortField
	Page    int
	Limit   int
}

func (q PostQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ParseFilterKey splits "likes[gte]" into field and operator. A bare key means
// equality.
func ParseFilterKey(key string) (string, Operator, error) {
	field, rest, found := strings.Cut(key, "[")
	if !found {
		return key, OpEq, nil
	}

	op, ok := strings.CutSuffix(rest, "]")
	if !ok || field == "" {
		return "", "", fmt.Errorf("%w: malformed filter %q", ErrInvalidQuery, key)
	}

	return field, Operator(op), nil
}

// ParseSort parses "-createdAt,title" into sort fields. An empty value sorts
// by creation time, newest first.
func ParseSort(value string) ([]SortField, error) {
	if strings.TrimSpace(value) == "" {
		return []SortField{{Field: "createdAt", Desc: true}}, nil
	}

	var fields []SortField
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if _, ok := sortFields[name]; !ok {
			return nil, fmt.Errorf("%w: cannot sort by %q", ErrInvalidQuery, name)
		}

		fields = append(fields, SortField{Field: name, Desc: desc})
	}

	return fields, nil
}

// Validate checks every filter against the allow-list.
func (q PostQuery) Validate() error {
	for _, f := range q.Filters {
		if _, _, err := buildCondition(f, 1); err != nil {
			return err
		}
	}

	for _, s := range q.Sort {
		if _, ok := sortFields[s.Field]; !ok {
			return fmt.Errorf("%w: cannot sort by %q", ErrInvalidQuery, s.Field)
		}
	}

	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidQuery)
	}

	// (Page-1)*Limit must fit in an int or OFFSET turns negative.
	if q.Page > 1 && q.Page-1 > math.MaxInt/q.Limit {
		return fmt.Errorf("%w: page %d is out of range", ErrInvalidQuery, q.Page)
	}

	return nil
}

// where renders the WHERE clause with $n placeholders. Only published posts
// are ever listed.
func (q PostQuery) where() (string, []any, error) {
	conditions := []string{"p.published = TRUE"}
	var args []any

	for _, f := range q.Filters {
		condition, arg, err := buildCondition(f, len(args)+1)
		if err != nil {
			return "", nil, err
		}

		conditions = append(conditions, condition)
		args = append(args, arg)
	}

	return strings.Join(conditions, " AND "), args, nil
}

func (q PostQuery) orderBy() string {
	sort := q.Sort
	if len(sort) == 0 {
		sort = []SortField{{Field: "createdAt", Desc: true}}
	}

	parts := lo.FilterMap(sort, func(s SortField, _ int) (string, bool) {
		column, ok := sortFields[s.Field]
		if !ok {
			return "", false
		}
		if s.Desc {
			return column + " DESC", true
		}
		return column + " ASC", true
	})

	// post_id keeps pages stable when the sort keys tie.
	return strings.Join(append(parts, "p.post_id ASC"), ", ")
}

func buildCondition(f Filter, placeholder int) (string, any, error) {
	field, ok := filterFields[f.Field]
	if !ok {
		return "", nil, fmt.Errorf("%w: cannot filter by %q", ErrInvalidQuery, f.Field)
	}

	op, ok := sqlOperators[f.Operator]
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, f.Operator)
	}

	switch field.kind {
	case kindText:
		// title matching is always a case-insensitive substring match.
		return fmt.Sprintf("%s ILIKE $%d", field.column, placeholder), "%" + escapeLike(f.Value) + "%", nil
	case kindID:
		if f.Operator != OpEq {
			return "", nil, fmt.Errorf("%w: %q supports equality only", ErrInvalidQuery, f.Field)
		}
		return fmt.Sprintf("%s = $%d", field.column, placeholder), f.Value, nil
	case kindInt:
		n, err := strconv.Atoi(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q must be an integer", ErrInvalidQuery, f.Field)
		}
		return fmt.Sprintf("%s %s $%d", field.column, op, placeholder), n, nil
	case kindTime:
		t, err := parseTime(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %q must be a date", ErrInvalidQuery, f.Field)
		}
		return fmt.Sprintf("%s %s $%d", field.column, op, placeholder), t, nil
	default:
		return "", nil, fmt.Errorf("%w: cannot filter by %q", ErrInvalidQuery, f.Field)
	}
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
