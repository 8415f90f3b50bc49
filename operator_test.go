package keypager

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func Test_Operator_Valid_And_ForOrdering(t *testing.T) {
	tests := []struct {
		name     string
		in       Operator
		valid    bool
		ordering Direction
	}{
		{"GT valid maps to ASC", OperatorGT, true, DirectionASC},
		{"LT valid maps to DESC", OperatorLT, true, DirectionDESC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Valid(); got != tt.valid {
				t.Errorf("%s: Valid=%v want %v", tt.name, got, tt.valid)
			}
			if got := tt.in.ForOrdering(); got != tt.ordering {
				t.Errorf("%s: ForOrdering=%v want %v", tt.name, got, tt.ordering)
			}
		})
	}

	require.False(t, operatorEq.Valid())
	require.Panics(t, func() { operatorEq.ForOrdering() })
}

func Test_Operator_expression(t *testing.T) {
	id := clause.Column{Name: "id"}

	require.Equal(t, clause.Gt{Column: id, Value: 1}, OperatorGT.expression(id, 1))
	require.Equal(t, clause.Lt{Column: id, Value: 1}, OperatorLT.expression(id, 1))
	require.Equal(t, clause.Eq{Column: id, Value: 1}, operatorEq.expression(id, 1))
	require.Panics(t, func() { Operator(">=").expression(id, 1) })
}
