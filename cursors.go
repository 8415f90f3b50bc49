package keypager

import (
	"fmt"
	"reflect"

	"github.com/samber/lo"
)

// Cursors is a cursor request: either a single unique sequential level
// (Single), or a non-unique primary level followed by a unique tie-breaker
// (Dual). The interface is sealed; Dynamic covers callers that only know their
// columns at runtime.
type Cursors interface {
	levels() []level
	withValues(values []any) (Cursors, error)
}

// SingleCursor paginates by one unique, monotonically ordered column.
type SingleCursor[M any, V any] struct {
	Level Level[M, V]
}

func Single[M any, V any](l Level[M, V]) SingleCursor[M, V] {
	return SingleCursor[M, V]{Level: l}
}

func (c SingleCursor[M, V]) levels() []level {
	return []level{c.Level.erase()}
}

func (c SingleCursor[M, V]) withValues(values []any) (Cursors, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: got %d values for a single cursor", ErrCursorArity, len(values))
	}

	var err error
	c.Level, err = c.Level.withAnyCursor(values[0])
	if err != nil {
		return nil, err
	}

	return c, nil
}

// DualCursor paginates by a possibly non-unique Primary column and breaks
// ties with a unique Secondary column of the same relation M.
type DualCursor[M any, P any, S any] struct {
	Primary   Level[M, P]
	Secondary Level[M, S]
}

func Dual[M any, P any, S any](primary Level[M, P], secondary Level[M, S]) DualCursor[M, P, S] {
	return DualCursor[M, P, S]{
		Primary:   primary,
		Secondary: secondary,
	}
}

func (c DualCursor[M, P, S]) levels() []level {
	return []level{c.Primary.erase(), c.Secondary.erase()}
}

func (c DualCursor[M, P, S]) withValues(values []any) (Cursors, error) {
	if len(values) != 2 {
		return nil, fmt.Errorf("%w: got %d values for a dual cursor", ErrCursorArity, len(values))
	}

	var err error
	c.Primary, err = c.Primary.withAnyCursor(values[0])
	if err != nil {
		return nil, err
	}

	c.Secondary, err = c.Secondary.withAnyCursor(values[1])
	if err != nil {
		return nil, err
	}

	return c, nil
}

// DynamicLevel is a cursor level described by strings, e.g. decoded from an
// API request. Column may be qualified ("users.id"). A nil Value means the
// level has no cursor yet. When Type is set, Value must be assignable to it.
type DynamicLevel struct {
	Column    string
	Direction Direction
	Value     any
	Type      reflect.Type
}

// DynamicCursors is a cursor request whose shape is only checked at Build
// time: it must hold one or two levels.
type DynamicCursors struct {
	Levels []DynamicLevel
}

func Dynamic(levels ...DynamicLevel) DynamicCursors {
	return DynamicCursors{Levels: levels}
}

func (c DynamicCursors) levels() []level {
	return lo.Map(c.Levels, func(l DynamicLevel, _ int) level {
		return level{
			column:    parseColumn(l.Column),
			direction: l.Direction,
			value:     l.Value,
			hasValue:  l.Value != nil,
			valueType: l.Type,
		}
	})
}

func (c DynamicCursors) withValues(values []any) (Cursors, error) {
	if len(values) != len(c.Levels) {
		return nil, fmt.Errorf(
			"%w: got %d values for %d cursor levels", ErrCursorArity, len(values), len(c.Levels),
		)
	}

	ret := DynamicCursors{Levels: make([]DynamicLevel, len(c.Levels))}
	for i, l := range c.Levels {
		l.Value = values[i]
		ret.Levels[i] = l
	}

	for _, l := range ret.levels() {
		if err := l.validate(); err != nil {
			return nil, err
		}
	}

	return ret, nil
}

var (
	_ Cursors = SingleCursor[struct{}, int]{}
	_ Cursors = DualCursor[struct{}, int, int]{}
	_ Cursors = DynamicCursors{}
)
