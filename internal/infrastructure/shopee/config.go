package shopee

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Config holds configuration for the Shopee Open API partner integration.
// These are the process-wide defaults; individual shops may override the
// partner credentials through the credential store.
type Config struct {
	// PartnerID is the partner identifier from the Shopee open platform
	PartnerID int64
	// PartnerKey is the signing secret issued with the partner ID
	PartnerKey string
	// BaseURL is the API host (production or sandbox)
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// DefaultAccessToken is a process-wide token fallback for shops
	// without stored credentials
	DefaultAccessToken string
	// DefaultRefreshToken pairs with DefaultAccessToken
	DefaultRefreshToken string
}

const (
	// ProductionBaseURL is the production API endpoint
	ProductionBaseURL = "https://partner.shopeemobile.com"
	// SandboxBaseURL is the sandbox API endpoint
	SandboxBaseURL = "https://partner.test-stable.shopeemobile.com"
)

// Errors for Shopee configuration
var (
	ErrConfigMissingPartnerID  = errors.New("shopee: partner ID is required")
	ErrConfigMissingPartnerKey = errors.New("shopee: partner key is required")
)

// Validate validates the Shopee configuration and applies defaults
func (c *Config) Validate() error {
	if c.PartnerID == 0 {
		return ErrConfigMissingPartnerID
	}
	if c.PartnerKey == "" {
		return ErrConfigMissingPartnerKey
	}
	if c.BaseURL == "" {
		c.BaseURL = ProductionBaseURL
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// signShop computes the shop-level request signature: HMAC-SHA256 over
// partner_id + path + timestamp + access_token + shop_id, hex encoded.
// The partner pair comes from the resolved credential, which may carry a
// per-shop override of the process-wide partner.
func signShop(partnerID int64, partnerKey, path string, timestamp int64, accessToken string, shopID int64) string {
	base := fmt.Sprintf("%d%s%d%s%d", partnerID, path, timestamp, accessToken, shopID)
	return signHMAC(partnerKey, base)
}

// signPublic computes the partner-level signature used by auth endpoints:
// HMAC-SHA256 over partner_id + path + timestamp, hex encoded.
func signPublic(partnerID int64, partnerKey, path string, timestamp int64) string {
	base := fmt.Sprintf("%d%s%d", partnerID, path, timestamp)
	return signHMAC(partnerKey, base)
}

// signHMAC computes the keyed hash both signature variants share.
func signHMAC(partnerKey, base string) string {
	mac := hmac.New(sha256.New, []byte(partnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}
