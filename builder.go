package keypager

import (
	"database/sql/driver"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Request describes one page to fetch.
type Request struct {
	// Cursors is the cursor request; required.
	Cursors Cursors
	// Limit is the number of rows requested for the page; must be positive.
	Limit int
	// Where is an optional caller filter intersected with the pagination predicate.
	Where clause.Expression
}

// Result holds everything the query layer needs to fetch the page.
type Result struct {
	// Ordering lists the primary level first, then the tie-breaker if any.
	Ordering Orderings
	// Limit of the page.
	Limit int
	// Filter is the caller filter conjoined with the pagination predicate.
	// nil when there is nothing to filter by.
	Filter clause.Expression

	predicate tDNF
}

// Build computes ordering, limit and filter for a keyset page.
//
// For a single level (C, O, V) the pagination predicate is "C O V". For two
// levels it is
//
//	(C1 O1 V1) OR (C1 = V1 AND C2 O2 V2)
//
// where O is ">" for ascending and "<" for descending levels. Levels without
// cursor values produce no predicate (first page); with two levels both values
// must be set. The predicate is conjoined with req.Where.
func Build(req Request) (Result, error) {
	if req.Cursors == nil {
		return Result{}, fmt.Errorf("cannot build page: %w: no cursors", ErrCursorArity)
	}

	levels := req.Cursors.levels()
	if err := validateLevels(levels); err != nil {
		return Result{}, fmt.Errorf("cannot build page: %w", err)
	}

	if req.Limit <= 0 {
		return Result{}, fmt.Errorf("cannot build page: %w, got %d", ErrInvalidLimit, req.Limit)
	}

	predicate := buildDNF(levels)

	return Result{
		Ordering: lo.Map(levels, func(l level, _ int) OrderBy {
			return l.orderBy()
		}),
		Limit:     req.Limit,
		Filter:    conjoin(req.Where, predicate.toGORMExpression()),
		predicate: predicate,
	}, nil
}

func validateLevels(levels []level) error {
	if len(levels) < 1 || len(levels) > 2 {
		return fmt.Errorf("%w: got %d", ErrCursorArity, len(levels))
	}

	for _, l := range levels {
		if err := l.validate(); err != nil {
			return err
		}
	}

	if len(levels) == 2 {
		primary, secondary := levels[0].column, levels[1].column
		if primary.Table != "" && secondary.Table != "" && primary.Table != secondary.Table {
			return fmt.Errorf(
				"%w: '%s' and '%s'", ErrRelationMismatch, columnSQL(primary), columnSQL(secondary),
			)
		}
	}

	return nil
}

// conjoin returns "where AND pagination", or whichever of the two is non-nil.
func conjoin(where, pagination clause.Expression) clause.Expression {
	switch {
	case where == nil:
		return pagination
	case pagination == nil:
		return where
	default:
		return clause.And(where, pagination)
	}
}

// HasFilter reports whether the result carries a filter.
func (r Result) HasFilter() bool {
	return r.Filter != nil
}

// IsFirstPage reports whether no pagination predicate was generated.
func (r Result) IsFirstPage() bool {
	return len(r.predicate) == 0
}

// Apply merges the result into a gorm query: ORDER BY, WHERE and LIMIT.
// Conditions already present on db are kept and conjoined with Filter.
func (r Result) Apply(db *gorm.DB) *gorm.DB {
	db = r.Ordering.Apply(db)
	if r.Filter != nil {
		db = db.Clauses(r.Filter)
	}

	return db.Limit(r.Limit)
}

// PaginationSQL renders the pagination predicate alone (without the caller
// filter) as an SQL condition with "?" placeholders. Returns "TRUE" on the
// first page.
//
// Usage:
//
//	cond, args := result.PaginationSQL()
//	query := fmt.Sprintf("SELECT * FROM t WHERE %s ORDER BY %s LIMIT %d", cond, result.Ordering.ToSQL(), result.Limit)
func (r Result) PaginationSQL() (string, []driver.Value) {
	return r.predicate.toSQLClause()
}
