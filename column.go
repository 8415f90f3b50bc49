package keypager

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Column is a typed reference to a column of relation M whose decoded value
// type is V. Both type parameters are phantom: they only exist so that the
// compiler rejects cursor values of the wrong type and tie-breakers taken from
// another relation.
//
//	var (
//		userCreatedAt = keypager.MustModelColumn[User, time.Time]("created_at")
//		userID        = keypager.MustModelColumn[User, uint]("id")
//	)
type Column[M any, V any] struct {
	table string
	name  string
}

// NewColumn declares a column explicitly. table may be empty, in which case the
// column is rendered unqualified.
func NewColumn[M any, V any](table, name string) Column[M, V] {
	return Column[M, V]{
		table: table,
		name:  name,
	}
}

var (
	_schemaCache sync.Map
	_namer       schema.Namer = schema.NamingStrategy{}
)

// ModelColumn resolves the column name of model M the way gorm does and checks
// that the field's Go type is V (or *V). The name may be either the database
// column name or the struct field name.
func ModelColumn[M any, V any](name string) (Column[M, V], error) {
	s, err := schema.Parse(new(M), &_schemaCache, _namer)
	if err != nil {
		return Column[M, V]{}, fmt.Errorf("cannot parse model schema: %w", err)
	}

	field := s.LookUpField(name)
	if field == nil || field.DBName == "" {
		return Column[M, V]{}, fmt.Errorf("%w: '%s' is not a column of '%s'", ErrInvalidColumn, name, s.Table)
	}

	want := reflect.TypeOf((*V)(nil)).Elem()
	if field.FieldType != want && field.IndirectFieldType != want {
		return Column[M, V]{}, fmt.Errorf(
			"%w: column '%s.%s' holds %s, cursor type is %s",
			ErrTypeMismatch, s.Table, field.DBName, field.FieldType, want,
		)
	}

	return Column[M, V]{
		table: s.Table,
		name:  field.DBName,
	}, nil
}

// MustModelColumn is like ModelColumn but panics on error. Intended for
// package-level declarations.
func MustModelColumn[M any, V any](name string) Column[M, V] {
	c, err := ModelColumn[M, V](name)
	if err != nil {
		panic(err)
	}

	return c
}

func (c Column[M, V]) Table() string {
	return c.table
}

func (c Column[M, V]) Name() string {
	return c.name
}

// Clause returns the gorm column reference.
func (c Column[M, V]) Clause() clause.Column {
	return clause.Column{
		Table: c.table,
		Name:  c.name,
	}
}

// String - implements fmt.Stringer.
func (c Column[M, V]) String() string {
	return columnSQL(c.Clause())
}

func (c Column[M, V]) valueType() reflect.Type {
	return reflect.TypeOf((*V)(nil)).Elem()
}

var _ fmt.Stringer = Column[struct{}, int]{}
