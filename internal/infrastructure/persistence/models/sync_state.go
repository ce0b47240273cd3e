package models

import (
	"encoding/json"
	"time"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// SyncStateModel is the persistence model for the per-shop sync state.
// The phase column discriminates which cursor fields are meaningful.
type SyncStateModel struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"`
	ShopID       int64      `gorm:"not null;uniqueIndex:idx_sync_states_shop"`
	IsSyncing    bool       `gorm:"not null;default:false"`
	Phase        string     `gorm:"type:varchar(16);not null;default:'IDLE'"`
	Month        string     `gorm:"type:varchar(7)"`
	ChunkEnd     *time.Time `gorm:""`
	RangeStart   *time.Time `gorm:""`
	RangeEnd     *time.Time `gorm:""`
	ChunkIndex   int        `gorm:"not null;default:0"`
	SyncedMonths string     `gorm:"type:jsonb;column:synced_months"`
	LastSyncedAt *time.Time `gorm:""`
	LastError    string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncStateModel) TableName() string {
	return "sync_states"
}

// ToDomain converts the persistence model to a domain SyncState.
func (m *SyncStateModel) ToDomain() *ordersync.SyncState {
	state := &ordersync.SyncState{
		ShopID:       m.ShopID,
		IsSyncing:    m.IsSyncing,
		Phase:        ordersync.SyncPhase(m.Phase),
		Month:        m.Month,
		ChunkEnd:     m.ChunkEnd,
		RangeStart:   m.RangeStart,
		RangeEnd:     m.RangeEnd,
		ChunkIndex:   m.ChunkIndex,
		SyncedMonths: make([]string, 0),
		LastSyncedAt: m.LastSyncedAt,
		LastError:    m.LastError,
		UpdatedAt:    m.UpdatedAt,
	}
	// Unrecognized stored phases would break resumption switches.
	if !state.Phase.IsValid() {
		state.Phase = ordersync.PhaseIdle
	}
	if m.SyncedMonths != "" {
		var months []string
		if err := json.Unmarshal([]byte(m.SyncedMonths), &months); err == nil {
			state.SyncedMonths = months
		}
	}
	return state
}

// FromDomain populates the persistence model from a domain SyncState.
func (m *SyncStateModel) FromDomain(s *ordersync.SyncState) {
	m.ShopID = s.ShopID
	m.IsSyncing = s.IsSyncing
	m.Phase = string(s.Phase)
	m.Month = s.Month
	m.ChunkEnd = s.ChunkEnd
	m.RangeStart = s.RangeStart
	m.RangeEnd = s.RangeEnd
	m.ChunkIndex = s.ChunkIndex
	m.LastSyncedAt = s.LastSyncedAt
	m.LastError = s.LastError

	if len(s.SyncedMonths) > 0 {
		if jsonBytes, err := json.Marshal(s.SyncedMonths); err == nil {
			m.SyncedMonths = string(jsonBytes)
		}
	} else {
		m.SyncedMonths = "[]"
	}
}
