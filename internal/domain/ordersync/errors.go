package ordersync

import "github.com/kiendt120702/BTCShopee-sub000/internal/domain/shared"

// Domain errors for the synchronization engine
var (
	// ErrSyncInProgress is returned when an invocation finds the shop's
	// mutual-exclusion flag already held by another invocation
	ErrSyncInProgress = shared.NewDomainError("SYNC_IN_PROGRESS", "A synchronization is already in progress for this shop")
	// ErrNoSyncInProgress is returned when continuing a chunked sync that
	// has no persisted cursor
	ErrNoSyncInProgress = shared.NewDomainError("NO_SYNC_IN_PROGRESS", "No resumable synchronization is in progress for this shop")
	// ErrInvalidMonth is returned for a malformed YYYY-MM month identifier
	ErrInvalidMonth = shared.NewDomainError("INVALID_MONTH", "Invalid month identifier")
	// ErrInvalidDateRange is returned for a malformed or inverted date range
	ErrInvalidDateRange = shared.NewDomainError("INVALID_DATE_RANGE", "Invalid date range")
	// ErrInvalidChunkIndex is returned when a chunk index is outside the
	// planned window list
	ErrInvalidChunkIndex = shared.NewDomainError("INVALID_CHUNK_INDEX", "Chunk index is out of range")
	// ErrCredentialNotFound is returned when neither shop-level nor
	// process-wide credentials are available
	ErrCredentialNotFound = shared.NewDomainError("CREDENTIAL_NOT_FOUND", "No API credentials configured for this shop")
	// ErrAuthExpired is returned when the platform rejects the access
	// token and the refresh attempt also failed
	ErrAuthExpired = shared.NewDomainError("AUTH_EXPIRED", "Platform access token expired and could not be refreshed")
	// ErrEscrowNotReady is returned when settlement detail has not been
	// computed by the platform yet; a soft, retryable per-record condition
	ErrEscrowNotReady = shared.NewDomainError("ESCROW_NOT_READY", "Settlement detail is not available for this order yet")
	// ErrStateNotFound is returned when no sync state row exists for a shop
	ErrStateNotFound = shared.NewDomainError("STATE_NOT_FOUND", "No synchronization state for this shop")
)
