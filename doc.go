// Package keypager computes keyset (cursor-based) pagination parameters for
// GORM queries.
//
// Overview
//
// A page is described by one or two cursor levels, each a column, a direction
// and, after the first page, the value of that column in the last row already
// seen:
//   - Single: one unique, monotonically ordered column (e.g. id).
//   - Dual: a possibly non-unique primary column (e.g. created_at) followed by
//     a unique tie-breaker (e.g. id) of the same relation, which keeps the
//     iteration stable and gap-free when the primary column has duplicates.
//
// Build turns a Request into a Result holding the ordering, the limit and the
// filter:
//
//	(created_at < t) OR (created_at = t AND id < 9)
//
// conjoined with the caller's own filter. The filter is a gorm
// clause.Expression and Result.Apply merges everything into a *gorm.DB.
//
// Key concepts
//   - Column: typed column reference; ModelColumn resolves it from a gorm model.
//   - Cursors: Single, Dual, or Dynamic when columns are only known at runtime.
//   - Pager: limit normalization, lookahead, next page cursors and Fetch.
//
// Cursor values are passed already decoded; encoding them into client tokens is
// left to the caller.
package keypager
