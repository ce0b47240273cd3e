package ordersync

import (
	"testing"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthWindows(t *testing.T) {
	t.Run("walks backward from month end in 7-day windows", func(t *testing.T) {
		windows, err := MonthWindows("2025-03", 7)

		require.NoError(t, err)
		require.Len(t, windows, 5)
		assert.Equal(t, Window{Start: day(2025, 3, 25), End: day(2025, 4, 1)}, windows[0])
		assert.Equal(t, Window{Start: day(2025, 3, 18), End: day(2025, 3, 25)}, windows[1])
		assert.Equal(t, Window{Start: day(2025, 3, 11), End: day(2025, 3, 18)}, windows[2])
		assert.Equal(t, Window{Start: day(2025, 3, 4), End: day(2025, 3, 11)}, windows[3])
		// The remainder is clipped to the month start.
		assert.Equal(t, Window{Start: day(2025, 3, 1), End: day(2025, 3, 4)}, windows[4])
	})

	t.Run("windows tile the month with no gap or overlap", func(t *testing.T) {
		windows, err := MonthWindows("2025-02", 7)
		require.NoError(t, err)

		for i := 0; i < len(windows)-1; i++ {
			assert.True(t, windows[i].Start.Equal(windows[i+1].End),
				"window %d start must meet window %d end", i, i+1)
		}
		assert.True(t, windows[0].End.Equal(day(2025, 3, 1)))
		assert.True(t, windows[len(windows)-1].Start.Equal(day(2025, 2, 1)))
	})

	t.Run("rejects a malformed month", func(t *testing.T) {
		_, err := MonthWindows("2025-3", 7)
		assert.ErrorIs(t, err, ordersync.ErrInvalidMonth)
	})
}

func TestNextMonthWindow(t *testing.T) {
	t.Run("nil cursor starts at the month end", func(t *testing.T) {
		window, hasMore, err := NextMonthWindow("2025-03", nil, 7)

		require.NoError(t, err)
		assert.Equal(t, Window{Start: day(2025, 3, 25), End: day(2025, 4, 1)}, window)
		assert.True(t, hasMore)
	})

	t.Run("cursor positions the walk mid-month", func(t *testing.T) {
		cursor := day(2025, 3, 11)
		window, hasMore, err := NextMonthWindow("2025-03", &cursor, 7)

		require.NoError(t, err)
		assert.Equal(t, Window{Start: day(2025, 3, 4), End: day(2025, 3, 11)}, window)
		assert.True(t, hasMore)
	})

	t.Run("last window reports no more remaining", func(t *testing.T) {
		cursor := day(2025, 3, 4)
		window, hasMore, err := NextMonthWindow("2025-03", &cursor, 7)

		require.NoError(t, err)
		assert.Equal(t, Window{Start: day(2025, 3, 1), End: day(2025, 3, 4)}, window)
		assert.False(t, hasMore)
	})

	t.Run("rejects a cursor outside the month", func(t *testing.T) {
		for _, cursor := range []time.Time{day(2025, 3, 1), day(2025, 4, 2), day(2024, 12, 31)} {
			c := cursor
			_, _, err := NextMonthWindow("2025-03", &c, 7)
			assert.ErrorIs(t, err, ordersync.ErrInvalidDateRange, "cursor %s", c)
		}
	})
}

func TestSplitRange(t *testing.T) {
	t.Run("splits evenly divisible spans", func(t *testing.T) {
		windows := SplitRange(day(2025, 3, 1), day(2025, 3, 15), 7)

		require.Len(t, windows, 2)
		assert.Equal(t, Window{Start: day(2025, 3, 1), End: day(2025, 3, 8)}, windows[0])
		assert.Equal(t, Window{Start: day(2025, 3, 8), End: day(2025, 3, 15)}, windows[1])
	})

	t.Run("clips the final window to the range end", func(t *testing.T) {
		windows := SplitRange(day(2025, 3, 1), day(2025, 3, 10), 7)

		require.Len(t, windows, 2)
		assert.Equal(t, Window{Start: day(2025, 3, 8), End: day(2025, 3, 10)}, windows[1])
	})

	t.Run("windows tile the range exactly", func(t *testing.T) {
		start, end := day(2025, 1, 3), day(2025, 4, 20)
		windows := SplitRange(start, end, 7)

		assert.True(t, windows[0].Start.Equal(start))
		assert.True(t, windows[len(windows)-1].End.Equal(end))
		for i := 0; i < len(windows)-1; i++ {
			assert.True(t, windows[i].End.Equal(windows[i+1].Start))
		}
	})

	t.Run("empty span yields no windows", func(t *testing.T) {
		assert.Empty(t, SplitRange(day(2025, 3, 1), day(2025, 3, 1), 7))
	})
}
