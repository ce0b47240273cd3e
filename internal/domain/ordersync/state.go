package ordersync

import (
	"fmt"
	"time"
)

// SyncPhase discriminates the resumable cursor persisted on SyncState.
// Resumption switches on the phase instead of probing optional fields.
type SyncPhase string

const (
	// PhaseIdle means no chunked span is in progress
	PhaseIdle SyncPhase = "IDLE"
	// PhaseMonth means a month sync is in progress; Month and ChunkEnd
	// carry the cursor
	PhaseMonth SyncPhase = "MONTH"
	// PhaseRange means a date-range sync is in progress; RangeStart,
	// RangeEnd and ChunkIndex carry the cursor
	PhaseRange SyncPhase = "RANGE"
	// PhaseQuick means the first-time lookback sync was interrupted by the
	// execution budget; RangeStart and RangeEnd carry the window to re-enter
	PhaseQuick SyncPhase = "QUICK"
)

// IsValid returns true if the phase is one of the known phases.
func (p SyncPhase) IsValid() bool {
	switch p {
	case PhaseIdle, PhaseMonth, PhaseRange, PhaseQuick:
		return true
	default:
		return false
	}
}

// SyncState is the single persisted synchronization record per shop. It
// carries the cooperative mutual-exclusion flag, the resumable cursor and
// the last outcome. Every long-running operation acquires the flag on
// entry and releases it on every exit path.
type SyncState struct {
	// ShopID is the marketplace shop this state belongs to
	ShopID int64
	// IsSyncing is the advisory lease: true for the whole duration of
	// exactly one in-flight invocation, false otherwise
	IsSyncing bool
	// Phase discriminates the cursor fields below
	Phase SyncPhase
	// Month is the active month (YYYY-MM) while Phase is PhaseMonth
	Month string
	// ChunkEnd is the end bound of the window to process next while
	// Phase is PhaseMonth
	ChunkEnd *time.Time
	// RangeStart and RangeEnd bound the active span while Phase is
	// PhaseRange or PhaseQuick
	RangeStart *time.Time
	RangeEnd   *time.Time
	// ChunkIndex is the next window index while Phase is PhaseRange
	ChunkIndex int
	// SyncedMonths lists months whose full span has been walked
	SyncedMonths []string
	// LastSyncedAt is the completion time of the last successful invocation
	LastSyncedAt *time.Time
	// LastError is the error persisted by the last failed invocation
	LastError string
	// UpdatedAt is the local modification time of this record
	UpdatedAt time.Time
}

// BeginMonth positions the cursor at the start of a month sync. A nil
// chunkEnd means the walk starts from the end of the month.
func (s *SyncState) BeginMonth(month string, chunkEnd *time.Time) {
	s.Phase = PhaseMonth
	s.Month = month
	s.ChunkEnd = chunkEnd
	s.RangeStart = nil
	s.RangeEnd = nil
	s.ChunkIndex = 0
}

// BeginRange positions the cursor at a window index of a date-range sync.
func (s *SyncState) BeginRange(start, end time.Time, chunkIndex int) {
	s.Phase = PhaseRange
	s.Month = ""
	s.ChunkEnd = nil
	s.RangeStart = &start
	s.RangeEnd = &end
	s.ChunkIndex = chunkIndex
}

// BeginQuick positions the cursor at an interrupted quick-sync window so
// the next automatic run re-enters it instead of shrinking the lookback.
func (s *SyncState) BeginQuick(start, end time.Time) {
	s.Phase = PhaseQuick
	s.Month = ""
	s.ChunkEnd = nil
	s.RangeStart = &start
	s.RangeEnd = &end
	s.ChunkIndex = 0
}

// CompleteMonth records a fully-walked month and returns the cursor to
// idle. The month is appended at most once.
func (s *SyncState) CompleteMonth(month string, at time.Time) {
	s.MarkIdle(at)
	if !s.HasSyncedMonth(month) {
		s.SyncedMonths = append(s.SyncedMonths, month)
	}
}

// MarkIdle clears the cursor and records a successful completion time.
func (s *SyncState) MarkIdle(at time.Time) {
	s.Phase = PhaseIdle
	s.Month = ""
	s.ChunkEnd = nil
	s.RangeStart = nil
	s.RangeEnd = nil
	s.ChunkIndex = 0
	s.LastSyncedAt = &at
	s.LastError = ""
}

// HasSyncedMonth reports whether the month's full span was already walked.
func (s *SyncState) HasSyncedMonth(month string) bool {
	for _, m := range s.SyncedMonths {
		if m == month {
			return true
		}
	}
	return false
}

// ValidateMonth checks the YYYY-MM month identifier format.
func ValidateMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("%w: month must be YYYY-MM, got %q", ErrInvalidMonth, month)
	}
	return nil
}
