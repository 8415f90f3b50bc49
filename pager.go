package keypager

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pager orchestrates keyset pagination over a gorm query: it holds the cursor
// request, the caller filter, the limit and the lookahead flag, builds a Result
// and derives the cursors of the next page from a fetched result set.
//
// All With* methods are safe to call on a nil *Pager.
type Pager struct {
	cursors   Cursors
	where     clause.Expression
	limit     int
	lookahead bool
	logger    *zap.Logger
}

func NewPager(cursors Cursors) *Pager {
	return &Pager{
		cursors: cursors,
		limit:   DefaultLimit,
	}
}

// WithCursors replaces the cursor request.
func (p *Pager) WithCursors(cursors Cursors) *Pager {
	if p == nil {
		p = NewPager(nil)
	}

	p.cursors = cursors

	return p
}

// WithLimit sets the maximum number of returned records. NormalizeLimit is
// applied.
func (p *Pager) WithLimit(limit int) *Pager {
	if p == nil {
		p = NewPager(nil)
	}

	p.limit = NormalizeLimit(limit)

	return p
}

// WithWhere conjoins expressions with the filter already held by the pager.
func (p *Pager) WithWhere(exprs ...clause.Expression) *Pager {
	if p == nil {
		p = NewPager(nil)
	}

	for _, expr := range exprs {
		p.where = conjoin(p.where, expr)
	}

	return p
}

// WithLookahead enables lookahead pagination: one extra record is fetched to
// determine whether the current page is the last.
func (p *Pager) WithLookahead() *Pager {
	if p == nil {
		p = NewPager(nil)
	}

	p.lookahead = true

	return p
}

// WithLogger sets the logger used by Paginate and Fetch.
func (p *Pager) WithLogger(logger *zap.Logger) *Pager {
	if p == nil {
		p = NewPager(nil)
	}

	p.logger = logger

	return p
}

// GetCursors returns the cursor request as-is.
func (p *Pager) GetCursors() Cursors {
	if p == nil {
		return nil
	}

	return p.cursors
}

// GetLimit returns the page limit as requested by the client.
func (p *Pager) GetLimit() int {
	if p == nil {
		return 0
	}

	return p.limit
}

// IsLookahead returns true if lookahead pagination is enabled.
func (p *Pager) IsLookahead() bool {
	if p == nil {
		return false
	}

	return p.lookahead
}

// GetDatasetLimit returns the limit adjusted for lookahead:
//   - if Lookahead = true → GetLimit() + 1
//   - if Lookahead = false → GetLimit()
func (p *Pager) GetDatasetLimit() int {
	return lo.Ternary(p.IsLookahead(), p.GetLimit()+1, p.GetLimit())
}

// Build builds the Result for the dataset query.
func (p *Pager) Build() (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("pager is nil")
	}

	return Build(Request{
		Cursors: p.cursors,
		Limit:   p.GetDatasetLimit(),
		Where:   p.where,
	})
}

// Paginate applies pagination to the dataset. Returns an error if pagination
// cannot be applied.
func (p *Pager) Paginate(db *gorm.DB) (*gorm.DB, error) {
	result, err := p.Build()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	p.getLogger().Debug("Applying keyset pagination",
		zap.Strings("order", result.Ordering.ToSQLSlice()),
		zap.Int("limit", result.Limit),
		zap.Bool("first_page", result.IsFirstPage()),
		zap.Bool("filtered", result.HasFilter()),
	)

	return result.Apply(db), nil
}

func (p *Pager) getLogger() *zap.Logger {
	if p == nil || p.logger == nil {
		return zap.NewNop()
	}

	return p.logger
}

// IsLastPage returns true if the result set is the last page in the dataset.
//
// The last page is determined by one of two conditions:
//  1. The number of returned records is less than Limit.
//  2. Lookahead = true and the number of returned records is less than or equal to Limit.
func IsLastPage[T any](p *Pager, resultSet []T) bool {
	return len(resultSet) < p.GetLimit() ||
		(p.IsLookahead() && len(resultSet) <= p.GetLimit())
}

// TrimResultSet trims the result set to what should be returned to the client:
// with lookahead the extra record is dropped.
func TrimResultSet[T any](p *Pager, resultSet []T) []T {
	if p.IsLookahead() && len(resultSet) > p.GetLimit() {
		resultSet = resultSet[:p.GetLimit()]
	}

	return resultSet
}

// Getters maps cursor column names to value getters of the row type. Keys are
// either the bare column name or the qualified "table.column" form.
//
//	keypager.Getters[User]{
//		"created_at": func(u User) any { return u.CreatedAt },
//		"id":         func(u User) any { return u.ID },
//	}
type Getters[T any] map[string]func(T) any

func (g Getters[T]) lookup(column clause.Column) (func(T) any, bool) {
	if getter, ok := g[columnSQL(column)]; ok {
		return getter, true
	}

	getter, ok := g[column.Name]

	return getter, ok
}

// NextPageCursors trims the result set and returns the cursors of the next
// page, positioned at the last returned row. The returned cursors are nil on
// the last page.
func NextPageCursors[T any](p *Pager, resultSet []T, getters Getters[T]) ([]T, Cursors, error) {
	if p.GetCursors() == nil {
		return nil, nil, fmt.Errorf("cannot build next page cursors: %w: no cursors", ErrCursorArity)
	}

	if IsLastPage(p, resultSet) {
		return resultSet, nil, nil
	}
	resultSet = TrimResultSet(p, resultSet)
	last := lo.LastOrEmpty(resultSet)

	levels := p.cursors.levels()
	values := make([]any, 0, len(levels))
	for _, l := range levels {
		getter, ok := getters.lookup(l.column)
		if !ok {
			return nil, nil, fmt.Errorf(
				"cannot build next page cursors: %w '%s'", ErrMissingGetter, columnSQL(l.column),
			)
		}

		value := getter(last)
		if isNull(value) {
			return nil, nil, fmt.Errorf(
				"cannot build next page cursors: %w in column '%s'", ErrNullCursor, columnSQL(l.column),
			)
		}

		values = append(values, value)
	}

	next, err := p.cursors.withValues(values)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build next page cursors: %w", err)
	}

	return resultSet, next, nil
}

// Page is a fetched page of rows.
type Page[T any] struct {
	// Items result elements.
	Items []T
	// AppliedLimit effective limit used for the page.
	AppliedLimit int
	// Next cursors of the next page, nil on the last page.
	Next Cursors
}

// HasNext reports whether another page may follow.
func (p *Page[T]) HasNext() bool {
	return p != nil && p.Next != nil
}

// Fetch runs the paginated query on db and returns the page with the cursors
// of the next one.
func Fetch[T any](ctx context.Context, db *gorm.DB, p *Pager, getters Getters[T]) (*Page[T], error) {
	query, err := p.Paginate(db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var rows []T
	if err = query.Find(&rows).Error; err != nil {
		p.getLogger().Error("Failed to fetch page", zap.Error(err))
		return nil, fmt.Errorf("cannot fetch page: %w", err)
	}

	items, next, err := NextPageCursors(p, rows, getters)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:        items,
		AppliedLimit: p.GetLimit(),
		Next:         next,
	}, nil
}
