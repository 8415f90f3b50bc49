package keypager

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedEvents inserts n events whose created_at values collide in groups of
// four, so that the tie-breaker decides the order inside each group.
func seedEvents(t *testing.T, db *gorm.DB, n int) []event {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := make([]event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, event{
			Status:    lo.Ternary(i%3 == 0, "archived", "active"),
			CreatedAt: base.Add(time.Duration((i*7)%4) * time.Hour),
		})
	}

	require.NoError(t, db.Create(&events).Error)

	return events
}

func fetchAll(t *testing.T, db *gorm.DB, p *Pager) []uint {
	t.Helper()

	var ids []uint
	for pages := 0; ; pages++ {
		require.Less(t, pages, 100, "pagination does not terminate")

		page, err := Fetch(context.Background(), db, p, eventGetters)
		require.NoError(t, err)
		require.LessOrEqual(t, len(page.Items), p.GetLimit())

		ids = append(ids, lo.Map(page.Items, func(e event, _ int) uint { return e.ID })...)
		if !page.HasNext() {
			return ids
		}

		p = p.WithCursors(page.Next)
	}
}

func Test_Fetch_DualCursorWalksEveryRowOnce(t *testing.T) {
	db, err := newGORMSQLite()
	require.NoError(t, err)
	events := seedEvents(t, db, 27)

	expected := lo.Filter(events, func(e event, _ int) bool { return e.Status == "active" })
	sort.Slice(expected, func(i, j int) bool {
		if !expected[i].CreatedAt.Equal(expected[j].CreatedAt) {
			return expected[i].CreatedAt.After(expected[j].CreatedAt)
		}
		return expected[i].ID > expected[j].ID
	})

	for _, lookahead := range []bool{false, true} {
		p := NewPager(Dual(Desc(eventCreatedAt), Desc(eventID))).
			WithLimit(4).
			WithWhere(clause.Eq{Column: eventStatus.Clause(), Value: "active"})
		if lookahead {
			p = p.WithLookahead()
		}

		got := fetchAll(t, db, p)
		require.Equal(t, lo.Map(expected, func(e event, _ int) uint { return e.ID }), got)
	}
}

func Test_Fetch_MixedDirections(t *testing.T) {
	db, err := newGORMSQLite()
	require.NoError(t, err)
	events := seedEvents(t, db, 13)

	expected := append([]event(nil), events...)
	sort.Slice(expected, func(i, j int) bool {
		if !expected[i].CreatedAt.Equal(expected[j].CreatedAt) {
			return expected[i].CreatedAt.Before(expected[j].CreatedAt)
		}
		return expected[i].ID > expected[j].ID
	})

	got := fetchAll(t, db, NewPager(Dual(Asc(eventCreatedAt), Desc(eventID))).WithLimit(3).WithLookahead())
	require.Equal(t, lo.Map(expected, func(e event, _ int) uint { return e.ID }), got)
}

func Test_Fetch_SingleCursor(t *testing.T) {
	db, err := newGORMSQLite()
	require.NoError(t, err)
	events := seedEvents(t, db, 10)

	got := fetchAll(t, db, NewPager(Single(Asc(eventID))).WithLimit(3))
	require.Equal(t, lo.Map(events, func(e event, _ int) uint { return e.ID }), got)
}

func Test_Fetch_Errors(t *testing.T) {
	db, err := newGORMSQLite()
	require.NoError(t, err)
	seedEvents(t, db, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Fetch(ctx, db, NewPager(Single(Asc(eventID))), eventGetters)
	require.ErrorIs(t, err, context.Canceled)

	_, err = Fetch(context.Background(), db, NewPager(Single(Asc(eventID))).WithLimit(2), Getters[event]{})
	require.ErrorIs(t, err, ErrMissingGetter)

	_, err = Fetch(context.Background(), db, NewPager(Single(Asc(eventScore))).WithLimit(2), eventGetters)
	require.ErrorIs(t, err, ErrNullCursor)

	_, err = Fetch(context.Background(), db, NewPager(nil), eventGetters)
	require.ErrorIs(t, err, ErrCursorArity)
}
