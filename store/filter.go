package store

import (
	"cmp"
	"reflect"
	"regexp"

	"github.com/pkg/errors"
)

type Op int

const (
	OpEq Op = iota
	OpIn
	OpNotIn
)

// Cond is a single predicate on a field. In/NotIn with no values match
// nothing and everything respectively.
type Cond struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

// Filter is a conjunction of conditions.
type Filter []Cond

func Where(conds ...Cond) Filter {
	return Filter(conds)
}

func Eq(field string, value any) Cond {
	return Cond{Field: field, Op: OpEq, Value: value}
}

func In[T any](field string, values ...T) Cond {
	return Cond{Field: field, Op: OpIn, Values: toAny(values)}
}

func NotIn[T any](field string, values ...T) Cond {
	return Cond{Field: field, Op: OpNotIn, Values: toAny(values)}
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order {
	return Order{Field: field}
}

func Desc(field string) Order {
	return Order{Field: field, Desc: true}
}

var reIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(name string) error {
	if !reIdent.MatchString(name) {
		return errors.Errorf("invalid field name %q", name)
	}
	return nil
}

func (f Filter) check() error {
	for _, c := range f {
		if err := checkIdent(c.Field); err != nil {
			return err
		}
	}
	return nil
}

// Match evaluates the filter against rec in memory.
func (f Filter) Match(rec Record) bool {
	for _, c := range f {
		v := rec[c.Field]
		switch c.Op {
		case OpEq:
			if !equal(v, c.Value) {
				return false
			}
		case OpIn:
			if !contains(c.Values, v) {
				return false
			}
		case OpNotIn:
			if contains(c.Values, v) {
				return false
			}
		}
	}
	return true
}

func contains(values []any, v any) bool {
	for _, x := range values {
		if equal(x, v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize folds the scalar shapes drivers and callers produce into one
// representation per kind.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	}
	return v
}

func compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y)
		case float64:
			return cmp.Compare(float64(x), y)
		}
	case float64:
		switch y := b.(type) {
		case float64:
			return cmp.Compare(x, y)
		case int64:
			return cmp.Compare(x, float64(y))
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}
