package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// maxResponseSize is the maximum allowed response size from the Shopee API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// API paths this engine depends on
const (
	pathOrderList    = "/api/v2/order/get_order_list"
	pathOrderDetail  = "/api/v2/order/get_order_detail"
	pathEscrowDetail = "/api/v2/payment/get_escrow_detail"
	pathTokenRefresh = "/api/v2/auth/access_token/get"
)

// ErrPlatformUnavailable indicates the API host could not be reached
var ErrPlatformUnavailable = errors.New("shopee: platform unavailable")

// Client is the signed HTTP client for the Shopee Open API. It resolves
// per-shop credentials with a process-wide fallback, signs every call,
// spaces calls through the injected limiter, and performs exactly one
// token refresh-and-retry when the platform reports an expired token.
type Client struct {
	config     *Config
	httpClient *http.Client
	creds      ordersync.CredentialStore
	limiter    *RequestLimiter
	logger     *zap.Logger
}

// NewClient creates a new Shopee API client with the given configuration
func NewClient(config *Config, creds ordersync.CredentialStore, limiter *RequestLimiter, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if limiter == nil {
		limiter = NewRequestLimiter(0)
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		creds:   creds,
		limiter: limiter,
		logger:  logger.Named("shopee.client"),
	}, nil
}

var _ ordersync.MarketplaceGateway = (*Client)(nil)

// ---------------------------------------------------------------------------
// MarketplaceGateway implementation
// ---------------------------------------------------------------------------

// ListOrders fetches one page of order keys for a time window.
func (c *Client) ListOrders(ctx context.Context, shopID int64, query ordersync.OrderListQuery) (*ordersync.OrderListPage, error) {
	params := url.Values{}
	params.Set("time_range_field", string(query.TimeField))
	params.Set("time_from", strconv.FormatInt(query.TimeFrom.Unix(), 10))
	params.Set("time_to", strconv.FormatInt(query.TimeTo.Unix(), 10))
	params.Set("page_size", strconv.Itoa(query.PageSize))
	params.Set("response_optional_fields", "order_status")
	if query.Cursor != "" {
		params.Set("cursor", query.Cursor)
	}

	body, err := c.call(ctx, shopID, pathOrderList, params)
	if err != nil {
		return nil, err
	}

	var resp orderListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopee: failed to parse order list response: %w", err)
	}

	page := &ordersync.OrderListPage{
		Orders:     make([]ordersync.OrderKey, 0, len(resp.Response.OrderList)),
		NextCursor: resp.Response.NextCursor,
		More:       resp.Response.More,
	}
	for _, o := range resp.Response.OrderList {
		page.Orders = append(page.Orders, ordersync.OrderKey{
			OrderSN: o.OrderSN,
			Status:  ordersync.OrderStatus(o.OrderStatus),
		})
	}
	return page, nil
}

// FetchOrderDetails fetches full detail for up to MaxDetailBatch orders
// in one call, comma-joining the serial numbers.
func (c *Client) FetchOrderDetails(ctx context.Context, shopID int64, orderSNs []string) ([]ordersync.Order, error) {
	if len(orderSNs) == 0 {
		return nil, nil
	}
	if len(orderSNs) > ordersync.MaxDetailBatch {
		return nil, fmt.Errorf("shopee: detail batch of %d exceeds platform limit %d", len(orderSNs), ordersync.MaxDetailBatch)
	}

	params := url.Values{}
	params.Set("order_sn_list", strings.Join(orderSNs, ","))
	params.Set("response_optional_fields", "item_list,package_list,total_amount,order_status,create_time,update_time,currency")

	body, err := c.call(ctx, shopID, pathOrderDetail, params)
	if err != nil {
		return nil, err
	}

	var resp orderDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopee: failed to parse order detail response: %w", err)
	}

	orders := make([]ordersync.Order, 0, len(resp.Response.OrderList))
	for i := range resp.Response.OrderList {
		orders = append(orders, resp.Response.OrderList[i].toDomain(shopID))
	}
	return orders, nil
}

// FetchEscrowDetail fetches the settlement breakdown for one order.
func (c *Client) FetchEscrowDetail(ctx context.Context, shopID int64, orderSN string) (*ordersync.Escrow, error) {
	params := url.Values{}
	params.Set("order_sn", orderSN)

	body, err := c.call(ctx, shopID, pathEscrowDetail, params)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && escrowNotReadyCodes[apiErr.Code] {
			return nil, fmt.Errorf("%w: %s", ordersync.ErrEscrowNotReady, orderSN)
		}
		return nil, err
	}

	var resp escrowDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopee: failed to parse escrow detail response: %w", err)
	}
	return resp.toDomain(shopID, time.Now().UTC()), nil
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// call executes one signed GET and inspects the response envelope. On an
// invalid-token signal it refreshes the stored token pair once and retries
// the original call once; if the refresh itself fails, the original auth
// error is surfaced.
func (c *Client) call(ctx context.Context, shopID int64, path string, params url.Values) ([]byte, error) {
	cred, err := c.resolveCredential(ctx, shopID)
	if err != nil {
		return nil, err
	}

	body, err := c.doSigned(ctx, cred, path, params)
	if err != nil {
		return nil, err
	}

	var env baseResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("shopee: failed to parse response envelope: %w", err)
	}
	if env.Error == "" {
		return body, nil
	}

	apiErr := &APIError{Path: path, Code: env.Error, Message: env.Message, RequestID: env.RequestID}
	if !authErrorCodes[env.Error] {
		return nil, apiErr
	}

	if rerr := c.refreshTokens(ctx, cred); rerr != nil {
		c.logger.Warn("Token refresh failed",
			zap.Int64("shop_id", shopID),
			zap.Error(rerr),
		)
		return nil, fmt.Errorf("%w: %s", ordersync.ErrAuthExpired, apiErr.Error())
	}

	body, err = c.doSigned(ctx, cred, path, params)
	if err != nil {
		return nil, err
	}
	var retryEnv baseResponse
	if err := json.Unmarshal(body, &retryEnv); err != nil {
		return nil, fmt.Errorf("shopee: failed to parse response envelope: %w", err)
	}
	if retryEnv.Error != "" {
		return nil, &APIError{Path: path, Code: retryEnv.Error, Message: retryEnv.Message, RequestID: retryEnv.RequestID}
	}
	return body, nil
}

// resolveCredential returns the shop's stored credentials, falling back
// to the process-wide partner defaults.
func (c *Client) resolveCredential(ctx context.Context, shopID int64) (*ordersync.ShopCredential, error) {
	cred, err := c.creds.FindByShop(ctx, shopID)
	if err != nil {
		if !errors.Is(err, ordersync.ErrCredentialNotFound) {
			return nil, err
		}
		if c.config.DefaultAccessToken == "" {
			return nil, fmt.Errorf("%w: shop %d", ordersync.ErrCredentialNotFound, shopID)
		}
		cred = &ordersync.ShopCredential{
			ShopID:       shopID,
			AccessToken:  c.config.DefaultAccessToken,
			RefreshToken: c.config.DefaultRefreshToken,
		}
	}
	if cred.PartnerID == 0 {
		cred.PartnerID = c.config.PartnerID
		cred.PartnerKey = c.config.PartnerKey
	}
	return cred, nil
}

// doSigned performs one signed GET against the API.
func (c *Client) doSigned(ctx context.Context, cred *ordersync.ShopCredential, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timestamp := time.Now().Unix()

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("partner_id", strconv.FormatInt(cred.PartnerID, 10))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("access_token", cred.AccessToken)
	query.Set("shop_id", strconv.FormatInt(cred.ShopID, 10))
	query.Set("sign", signShop(cred.PartnerID, cred.PartnerKey, path, timestamp, cred.AccessToken, cred.ShopID))

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopee: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		// Auth failures still carry an envelope worth inspecting
		var env baseResponse
		if jerr := json.Unmarshal(body, &env); jerr == nil && env.Error != "" {
			return body, nil
		}
		return nil, fmt.Errorf("shopee: %s returned HTTP %d", path, resp.StatusCode)
	}
	return body, nil
}

// refreshTokens exchanges the stored refresh token for a new token pair
// and persists it immediately so concurrent and later calls benefit.
func (c *Client) refreshTokens(ctx context.Context, cred *ordersync.ShopCredential) error {
	if cred.RefreshToken == "" {
		return errors.New("shopee: no refresh token available")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	timestamp := time.Now().Unix()

	query := url.Values{}
	query.Set("partner_id", strconv.FormatInt(cred.PartnerID, 10))
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("sign", signPublic(cred.PartnerID, cred.PartnerKey, pathTokenRefresh, timestamp))

	payload, err := json.Marshal(map[string]any{
		"refresh_token": cred.RefreshToken,
		"partner_id":    cred.PartnerID,
		"shop_id":       cred.ShopID,
	})
	if err != nil {
		return fmt.Errorf("shopee: failed to marshal refresh request: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.config.BaseURL, pathTokenRefresh, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("shopee: failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("shopee: failed to read refresh response: %w", err)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("shopee: failed to parse refresh response: %w", err)
	}
	if tok.Error != "" {
		return &APIError{Path: pathTokenRefresh, Code: tok.Error, Message: tok.Message, RequestID: tok.RequestID}
	}
	if tok.AccessToken == "" {
		return errors.New("shopee: refresh response carried no access token")
	}

	cred.AccessToken = tok.AccessToken
	cred.RefreshToken = tok.RefreshToken

	var expiresAt *time.Time
	if tok.ExpireIn > 0 {
		t := time.Now().Add(time.Duration(tok.ExpireIn) * time.Second).UTC()
		expiresAt = &t
	}
	if err := c.creds.SaveTokens(ctx, cred.ShopID, tok.AccessToken, tok.RefreshToken, expiresAt); err != nil {
		return fmt.Errorf("shopee: failed to persist refreshed tokens: %w", err)
	}

	c.logger.Info("Access token refreshed", zap.Int64("shop_id", cred.ShopID))
	return nil
}
