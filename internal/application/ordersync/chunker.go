package ordersync

import (
	"fmt"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// Window is one bounded time sub-range processed in a single
// synchronization step. Start is inclusive, End exclusive, so adjacent
// windows tile a span without gap or overlap.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the window length in whole days, rounding up partial days.
func (w Window) Days() int {
	return int((w.End.Sub(w.Start) + 24*time.Hour - 1) / (24 * time.Hour))
}

// MonthBounds returns the [start, end) span of a YYYY-MM month in UTC.
func MonthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month must be YYYY-MM, got %q", ordersync.ErrInvalidMonth, month)
	}
	start = start.UTC()
	return start, start.AddDate(0, 1, 0), nil
}

// MonthWindows splits a month into fixed-size windows walked backward from
// the month end. The final window is clipped to the month start, so the
// union of all windows equals the month span exactly.
func MonthWindows(month string, chunkDays int) ([]Window, error) {
	start, end, err := MonthBounds(month)
	if err != nil {
		return nil, err
	}

	var windows []Window
	for cursor := end; cursor.After(start); {
		windowStart := cursor.AddDate(0, 0, -chunkDays)
		if windowStart.Before(start) {
			windowStart = start
		}
		windows = append(windows, Window{Start: windowStart, End: cursor})
		cursor = windowStart
	}
	return windows, nil
}

// NextMonthWindow returns the window a month sync must process next, given
// the persisted chunk-end cursor. A nil cursor positions the walk at the
// end of the month. The second result reports whether windows remain after
// this one.
func NextMonthWindow(month string, chunkEnd *time.Time, chunkDays int) (Window, bool, error) {
	start, end, err := MonthBounds(month)
	if err != nil {
		return Window{}, false, err
	}

	windowEnd := end
	if chunkEnd != nil {
		cursor := chunkEnd.UTC()
		if cursor.After(end) || !cursor.After(start) {
			return Window{}, false, fmt.Errorf("%w: chunk end %s is outside month %s",
				ordersync.ErrInvalidDateRange, cursor.Format(time.RFC3339), month)
		}
		windowEnd = cursor
	}

	windowStart := windowEnd.AddDate(0, 0, -chunkDays)
	if windowStart.Before(start) {
		windowStart = start
	}
	return Window{Start: windowStart, End: windowEnd}, windowStart.After(start), nil
}

// SplitRange pre-splits an arbitrary [start, end) span into an ordered
// list of fixed-size windows, ascending. Progress over the list is
// tracked by chunk index.
func SplitRange(start, end time.Time, chunkDays int) []Window {
	var windows []Window
	for cursor := start; cursor.Before(end); {
		windowEnd := cursor.AddDate(0, 0, chunkDays)
		if windowEnd.After(end) {
			windowEnd = end
		}
		windows = append(windows, Window{Start: cursor, End: windowEnd})
		cursor = windowEnd
	}
	return windows
}
