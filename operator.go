package keypager

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// Operator defines a comparison operator for filtering by column.
// Used in pagination filtering conditions.
type Operator string

func (o Operator) Valid() bool {
	return o == OperatorLT || o == OperatorGT
}

func (o Operator) ForOrdering() Direction {
	switch o {
	case OperatorGT:
		return DirectionASC
	case OperatorLT:
		return DirectionDESC
	default:
		panic(fmt.Errorf("cannot map operator '%s' to ordering", o))
	}
}

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq is private: it only appears inside the tie-break disjunct.
	operatorEq Operator = "="
)

// expression builds the gorm comparison "column operator value".
func (o Operator) expression(column clause.Column, value any) clause.Expression {
	switch o {
	case OperatorGT:
		return clause.Gt{Column: column, Value: value}
	case OperatorLT:
		return clause.Lt{Column: column, Value: value}
	case operatorEq:
		return clause.Eq{Column: column, Value: value}
	default:
		panic(fmt.Errorf("cannot build expression for operator '%s'", o))
	}
}
