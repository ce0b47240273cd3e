package ordersync

import "time"

// ShopCredential holds the per-shop API signing credentials and the token
// pair issued by the platform's authorization flow. PartnerID and
// PartnerKey may be zero-valued, in which case the process-wide partner
// credentials apply.
type ShopCredential struct {
	// ShopID is the marketplace shop these credentials belong to
	ShopID int64
	// PartnerID overrides the process-wide partner ID when non-zero
	PartnerID int64
	// PartnerKey overrides the process-wide partner key when non-empty
	PartnerKey string
	// AccessToken is the current short-lived API token
	AccessToken string
	// RefreshToken is used to obtain a new token pair when the access
	// token expires
	RefreshToken string
	// ExpiresAt is the expected access-token expiry, informational only;
	// expiry is detected from the API's auth-error response
	ExpiresAt *time.Time
	// UpdatedAt is when the token pair was last persisted
	UpdatedAt time.Time
}
