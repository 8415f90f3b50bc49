package keypager

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Direction defines the sort direction of a cursor level.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// ForOperator returns the strict comparison that selects rows past the cursor:
// ASC → ">", DESC → "<".
func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

type (
	// Orderings is the ordering part of a Result, primary level first.
	Orderings []OrderBy
	OrderBy   struct {
		Column    clause.Column
		Direction Direction
	}

	ColumnAlias = string

	// ColumnMapping maps external column aliases to fully qualified column names.
	// Use it when bare column names could cause an "ambiguous column name" error.
	// Key is an external alias, value is an internal column name ("table.column" or "column").
	ColumnMapping = map[ColumnAlias]string
)

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

// validateColumnName guards against SQL injection by restricting allowed characters.
func validateColumnName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty column name", ErrInvalidColumn)
	}

	if !lo.Every(_availableColumnNameSymbols, []rune(name)) {
		return fmt.Errorf("%w: column name contains forbidden symbols '%s'", ErrInvalidColumn, name)
	}

	return nil
}

// parseColumn splits "table.column" into a clause.Column. A name without a dot
// yields an unqualified column.
func parseColumn(name string) clause.Column {
	idx := strings.LastIndexByte(name, '.')
	if idx == -1 {
		return clause.Column{Name: name}
	}

	return clause.Column{Table: name[:idx], Name: name[idx+1:]}
}

// columnSQL renders a column as "table.column" without quoting.
func columnSQL(c clause.Column) string {
	if c.Table == "" {
		return c.Name
	}

	return c.Table + "." + c.Name
}

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("%w '%s'", ErrInvalidDirection, o.Direction)
	}

	if err := validateColumnName(o.Column.Name); err != nil {
		return err
	}

	if o.Column.Table != "" {
		return validateColumnName(o.Column.Table)
	}

	return nil
}

// Clause converts the ordering entry into a gorm ORDER BY column.
func (o OrderBy) Clause() clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: o.Column,
		Desc:   o.Direction == DirectionDESC,
	}
}

// Clauses converts Orderings into gorm ORDER BY columns preserving their order.
func (o Orderings) Clauses() []clause.OrderByColumn {
	return lo.Map(o, func(ordering OrderBy, _ int) clause.OrderByColumn {
		return ordering.Clause()
	})
}

// ToSQLSlice converts Orderings to a slice of strings in the form
// "<order_column> <order_direction>" suitable for SQL query builders.
//
// Example: for Orderings: [{"a", "ASC"}, {"t.b", "DESC"}] returns ["a ASC", "t.b DESC"].
func (o Orderings) ToSQLSlice() []string {
	ret := make([]string, 0, len(o))
	for _, ordering := range o {
		ret = append(ret, fmt.Sprintf("%s %s", columnSQL(ordering.Column), ordering.Direction))
	}

	return ret
}

// ToSQL converts Orderings to a single string
// "<order_column_1> <order_direction_1>, <order_column_2> <order_direction_2>"
// suitable for embedding into an SQL query.
//
// Usage:
//
//	query := fmt.Sprintf("SELECT * FROM table ORDER BY %s", orderings.ToSQL())
func (o Orderings) ToSQL() string {
	return strings.Join(o.ToSQLSlice(), ", ")
}

// Apply applies the ordering to a gorm query.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	if len(o) == 0 {
		return db
	}

	return db.Clauses(clause.OrderBy{Columns: o.Clauses()})
}

// Levels converts Orderings into dynamic cursor levels without cursor values,
// i.e. a first page request.
func (o Orderings) Levels() []DynamicLevel {
	return lo.Map(o, func(ordering OrderBy, _ int) DynamicLevel {
		return DynamicLevel{
			Column:    columnSQL(ordering.Column),
			Direction: ordering.Direction,
		}
	})
}

// ParseSort builds Orderings from a list of strings in the format
// "column asc|desc". Column aliases are resolved via ColumnMapping.
// Returns an error if an alias is not found in the mapping.
func ParseSort(stringsOrderings []string, columnMapping ColumnMapping) (Orderings, error) {
	ret := make(Orderings, 0, len(stringsOrderings))
	aliases := lo.Keys(columnMapping)

	for _, stringOrdering := range stringsOrderings {
		cutStringOrdering := strings.Fields(stringOrdering)
		if len(cutStringOrdering) != 2 {
			return nil, fmt.Errorf("invalid ordering string format '%s'", stringOrdering)
		}

		columnAlias := cutStringOrdering[0]
		direction := Direction(strings.ToUpper(cutStringOrdering[1]))
		columnName := columnMapping[columnAlias]
		if columnName == "" {
			return nil, fmt.Errorf("%w: unknown alias '%s', closest: '%s'",
				ErrInvalidColumn, columnAlias, closestAlias(columnAlias, aliases))
		}

		orderBy := OrderBy{
			Column:    parseColumn(columnName),
			Direction: direction,
		}
		if err := orderBy.validate(); err != nil {
			return nil, err
		}

		ret = append(ret, orderBy)
	}

	return ret, nil
}

func closestAlias(input ColumnAlias, dataSet []ColumnAlias) ColumnAlias {
	minDist := math.MaxInt
	closest := ""

	for _, dataSetAlias := range dataSet {
		dist := levenshtein([]rune(dataSetAlias), []rune(input))
		// Ties resolve to the lexicographically smaller alias; map order is random.
		if dist < minDist || (dist == minDist && dataSetAlias < closest) {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}
