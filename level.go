package keypager

import (
	"fmt"
	"reflect"

	"gorm.io/gorm/clause"
)

// Level is one cursor level: a column, its ordering direction and, after the
// first page, the value of that column in the last row already returned.
type Level[M any, V any] struct {
	Column    Column[M, V]
	Direction Direction

	value    V
	hasValue bool
}

func NewLevel[M any, V any](column Column[M, V], direction Direction) Level[M, V] {
	return Level[M, V]{
		Column:    column,
		Direction: direction,
	}
}

// Asc is shorthand for NewLevel(column, DirectionASC).
func Asc[M any, V any](column Column[M, V]) Level[M, V] {
	return NewLevel(column, DirectionASC)
}

// Desc is shorthand for NewLevel(column, DirectionDESC).
func Desc[M any, V any](column Column[M, V]) Level[M, V] {
	return NewLevel(column, DirectionDESC)
}

// WithCursor returns a copy of the level positioned after value.
func (l Level[M, V]) WithCursor(value V) Level[M, V] {
	l.value = value
	l.hasValue = true

	return l
}

// WithoutCursor returns a copy of the level with the cursor value cleared.
func (l Level[M, V]) WithoutCursor() Level[M, V] {
	var zero V
	l.value = zero
	l.hasValue = false

	return l
}

// Cursor returns the cursor value and whether it is set.
func (l Level[M, V]) Cursor() (V, bool) {
	return l.value, l.hasValue
}

func (l Level[M, V]) HasCursor() bool {
	return l.hasValue
}

// withAnyCursor sets a value of unknown static type, failing when it is not a V.
func (l Level[M, V]) withAnyCursor(value any) (Level[M, V], error) {
	v, ok := value.(V)
	if !ok {
		return l, fmt.Errorf(
			"%w: column '%s' expects %s, got %T",
			ErrTypeMismatch, l.Column, l.Column.valueType(), value,
		)
	}

	return l.WithCursor(v), nil
}

func (l Level[M, V]) erase() level {
	ret := level{
		column:    l.Column.Clause(),
		direction: l.Direction,
		valueType: l.Column.valueType(),
	}
	if l.hasValue {
		ret.value = l.value
		ret.hasValue = true
	}

	return ret
}

// level is the type-erased form every cursor shape is reduced to before the
// predicate is built.
type level struct {
	column    clause.Column
	direction Direction
	value     any
	hasValue  bool
	// valueType is nil when the value type is not known.
	valueType reflect.Type
}

func (l level) orderBy() OrderBy {
	return OrderBy{
		Column:    l.column,
		Direction: l.direction,
	}
}

// conjunct returns "column op value" where op follows the level direction.
func (l level) conjunct() tConjunct {
	return tConjunct{
		Column:   l.column,
		Value:    l.value,
		Operator: l.direction.ForOperator(),
	}
}

// equalityConjunct returns "column = value".
func (l level) equalityConjunct() tConjunct {
	return tConjunct{
		Column:   l.column,
		Value:    l.value,
		Operator: operatorEq,
	}
}

func (l level) validate() error {
	if err := l.orderBy().validate(); err != nil {
		return err
	}

	if !l.hasValue {
		return nil
	}

	if isNull(l.value) {
		return fmt.Errorf("%w: column '%s'", ErrNullCursor, columnSQL(l.column))
	}

	if l.valueType == nil {
		return nil
	}

	if actual := reflect.TypeOf(l.value); !actual.AssignableTo(l.valueType) {
		return fmt.Errorf(
			"%w: column '%s' expects %s, got %s",
			ErrTypeMismatch, columnSQL(l.column), l.valueType, actual,
		)
	}

	return nil
}

// isNull reports whether v is nil or a nil pointer, map, slice or interface.
func isNull(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
