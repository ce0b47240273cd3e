package shopee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// fakeCredentialStore is an in-memory CredentialStore for client tests
type fakeCredentialStore struct {
	mu    sync.Mutex
	creds map[int64]*ordersync.ShopCredential
	saved int
}

func newFakeCredentialStore(creds ...*ordersync.ShopCredential) *fakeCredentialStore {
	s := &fakeCredentialStore{creds: make(map[int64]*ordersync.ShopCredential)}
	for _, c := range creds {
		s.creds[c.ShopID] = c
	}
	return s
}

func (s *fakeCredentialStore) FindByShop(_ context.Context, shopID int64) (*ordersync.ShopCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[shopID]
	if !ok {
		return nil, ordersync.ErrCredentialNotFound
	}
	clone := *cred
	return &clone, nil
}

func (s *fakeCredentialStore) SaveTokens(_ context.Context, shopID int64, accessToken, refreshToken string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[shopID]
	if !ok {
		cred = &ordersync.ShopCredential{ShopID: shopID}
		s.creds[shopID] = cred
	}
	cred.AccessToken = accessToken
	cred.RefreshToken = refreshToken
	cred.ExpiresAt = expiresAt
	s.saved++
	return nil
}

func newTestClient(t *testing.T, serverURL string, store ordersync.CredentialStore) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		PartnerID:  2005678,
		PartnerKey: "test_secret",
		BaseURL:    serverURL,
	}, store, NewRequestLimiter(0), zap.NewNop())
	require.NoError(t, err)
	return client
}

func testCredential(shopID int64) *ordersync.ShopCredential {
	return &ordersync.ShopCredential{
		ShopID:       shopID,
		AccessToken:  "valid_token",
		RefreshToken: "refresh_token",
	}
}

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := NewClient(&Config{PartnerID: 1, PartnerKey: "k"}, newFakeCredentialStore(), nil, zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("invalid config", func(t *testing.T) {
		client, err := NewClient(&Config{}, newFakeCredentialStore(), nil, zap.NewNop())
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestClient_ListOrders(t *testing.T) {
	shopID := int64(987654)

	t.Run("successful page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/order/get_order_list", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "2005678", q.Get("partner_id"))
			assert.Equal(t, "valid_token", q.Get("access_token"))
			assert.Equal(t, "987654", q.Get("shop_id"))
			ts, err := strconv.ParseInt(q.Get("timestamp"), 10, 64)
			require.NoError(t, err)
			assert.Equal(t,
				signShop(2005678, "test_secret", r.URL.Path, ts, "valid_token", shopID),
				q.Get("sign"))
			assert.Equal(t, "create_time", q.Get("time_range_field"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"request_id": "req-1",
				"response": map[string]any{
					"more":        true,
					"next_cursor": "eyJwIjoyfQ",
					"order_list": []map[string]any{
						{"order_sn": "2409SN001", "order_status": "READY_TO_SHIP"},
						{"order_sn": "2409SN002", "order_status": "COMPLETED"},
					},
				},
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newFakeCredentialStore(testCredential(shopID)))
		page, err := client.ListOrders(context.Background(), shopID, ordersync.OrderListQuery{
			TimeField: ordersync.TimeFieldCreate,
			TimeFrom:  time.Now().Add(-24 * time.Hour),
			TimeTo:    time.Now(),
			PageSize:  100,
		})
		require.NoError(t, err)
		assert.True(t, page.More)
		assert.Equal(t, "eyJwIjoyfQ", page.NextCursor)
		require.Len(t, page.Orders, 2)
		assert.Equal(t, "2409SN001", page.Orders[0].OrderSN)
		assert.Equal(t, ordersync.OrderStatusReadyToShip, page.Orders[0].Status)
	})

	t.Run("missing credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected without credentials")
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newFakeCredentialStore())
		_, err := client.ListOrders(context.Background(), shopID, ordersync.OrderListQuery{})
		assert.ErrorIs(t, err, ordersync.ErrCredentialNotFound)
	})

	t.Run("default token fallback", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "process_token", r.URL.Query().Get("access_token"))
			_ = json.NewEncoder(w).Encode(map[string]any{"response": map[string]any{}})
		}))
		defer server.Close()

		client, err := NewClient(&Config{
			PartnerID:          2005678,
			PartnerKey:         "test_secret",
			BaseURL:            server.URL,
			DefaultAccessToken: "process_token",
		}, newFakeCredentialStore(), nil, zap.NewNop())
		require.NoError(t, err)

		_, err = client.ListOrders(context.Background(), shopID, ordersync.OrderListQuery{})
		assert.NoError(t, err)
	})
}

func TestClient_RefreshAndRetry(t *testing.T) {
	shopID := int64(987654)

	t.Run("expired token refreshed once and call retried", func(t *testing.T) {
		var listCalls, refreshCalls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v2/order/get_order_list":
				listCalls++
				if r.URL.Query().Get("access_token") != "fresh_token" {
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error":   "invalid_access_token",
						"message": "Invalid access_token",
					})
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"response": map[string]any{
						"more":       false,
						"order_list": []map[string]any{{"order_sn": "2409SN003", "order_status": "SHIPPED"}},
					},
				})
			case "/api/v2/auth/access_token/get":
				refreshCalls++
				var body map[string]any
				_ = json.NewDecoder(r.Body).Decode(&body)
				assert.Equal(t, "refresh_token", body["refresh_token"])
				_ = json.NewEncoder(w).Encode(map[string]any{
					"access_token":  "fresh_token",
					"refresh_token": "fresh_refresh",
					"expire_in":     14400,
				})
			default:
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
		}))
		defer server.Close()

		store := newFakeCredentialStore(&ordersync.ShopCredential{
			ShopID:       shopID,
			AccessToken:  "stale_token",
			RefreshToken: "refresh_token",
		})
		client := newTestClient(t, server.URL, store)

		page, err := client.ListOrders(context.Background(), shopID, ordersync.OrderListQuery{TimeField: ordersync.TimeFieldUpdate})
		require.NoError(t, err)
		require.Len(t, page.Orders, 1)
		assert.Equal(t, 2, listCalls)
		assert.Equal(t, 1, refreshCalls)

		// Refreshed tokens are persisted immediately
		assert.Equal(t, 1, store.saved)
		saved, err := store.FindByShop(context.Background(), shopID)
		require.NoError(t, err)
		assert.Equal(t, "fresh_token", saved.AccessToken)
		assert.Equal(t, "fresh_refresh", saved.RefreshToken)
		require.NotNil(t, saved.ExpiresAt)
	})

	t.Run("failed refresh surfaces original auth error", func(t *testing.T) {
		var listCalls, refreshCalls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v2/order/get_order_list":
				listCalls++
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":   "error_auth",
					"message": "Invalid access_token",
				})
			case "/api/v2/auth/access_token/get":
				refreshCalls++
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":   "error_auth",
					"message": "Invalid refresh_token",
				})
			}
		}))
		defer server.Close()

		store := newFakeCredentialStore(testCredential(shopID))
		client := newTestClient(t, server.URL, store)

		_, err := client.ListOrders(context.Background(), shopID, ordersync.OrderListQuery{})
		assert.ErrorIs(t, err, ordersync.ErrAuthExpired)

		// Exactly one refresh attempt, no retry storm
		assert.Equal(t, 1, listCalls)
		assert.Equal(t, 1, refreshCalls)
		assert.Equal(t, 0, store.saved)
	})

	t.Run("non-auth API error is not retried", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":   "error_param",
				"message": "Invalid time range",
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newFakeCredentialStore(testCredential(shopID)))
		_, err := client.ListOrders(context.Background(), shopID, ordersync.OrderListQuery{})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "error_param", apiErr.Code)
		assert.Equal(t, 1, calls)
	})
}

func TestClient_FetchOrderDetails(t *testing.T) {
	shopID := int64(987654)

	t.Run("batch decoded to domain orders", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2409SN001,2409SN002", r.URL.Query().Get("order_sn_list"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"response": map[string]any{
					"order_list": []map[string]any{
						{
							"order_sn":     "2409SN001",
							"order_status": "COMPLETED",
							"total_amount": 125.50,
							"currency":     "SGD",
							"create_time":  1704067200,
							"update_time":  1704153600,
							"item_list":    []map[string]any{{"item_id": 11}},
						},
						{
							"order_sn":     "2409SN002",
							"order_status": "READY_TO_SHIP",
							"total_amount": 40,
							"currency":     "SGD",
							"create_time":  1704060000,
							"update_time":  1704060000,
						},
					},
				},
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newFakeCredentialStore(testCredential(shopID)))
		orders, err := client.FetchOrderDetails(context.Background(), shopID, []string{"2409SN001", "2409SN002"})
		require.NoError(t, err)
		require.Len(t, orders, 2)

		assert.Equal(t, shopID, orders[0].ShopID)
		assert.Equal(t, ordersync.OrderStatusCompleted, orders[0].Status)
		assert.Equal(t, "125.5", orders[0].TotalAmount.String())
		assert.Equal(t, time.Unix(1704067200, 0).UTC(), orders[0].CreateTime)
		assert.NotEmpty(t, orders[0].Items)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		client := newTestClient(t, "http://unused", newFakeCredentialStore(testCredential(shopID)))
		orders, err := client.FetchOrderDetails(context.Background(), shopID, nil)
		assert.NoError(t, err)
		assert.Nil(t, orders)
	})

	t.Run("batch over platform limit rejected", func(t *testing.T) {
		client := newTestClient(t, "http://unused", newFakeCredentialStore(testCredential(shopID)))
		sns := make([]string, ordersync.MaxDetailBatch+1)
		for i := range sns {
			sns[i] = "sn"
		}
		_, err := client.FetchOrderDetails(context.Background(), shopID, sns)
		assert.Error(t, err)
	})
}

func TestClient_FetchEscrowDetail(t *testing.T) {
	shopID := int64(987654)

	t.Run("settlement decoded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/payment/get_escrow_detail", r.URL.Path)
			assert.Equal(t, "2409SN001", r.URL.Query().Get("order_sn"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"response": map[string]any{
					"order_sn": "2409SN001",
					"order_income": map[string]any{
						"escrow_amount":      118.20,
						"buyer_total_amount": 125.50,
						"commission_fee":     5.10,
						"service_fee":        2.20,
						"currency":           "SGD",
					},
				},
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newFakeCredentialStore(testCredential(shopID)))
		escrow, err := client.FetchEscrowDetail(context.Background(), shopID, "2409SN001")
		require.NoError(t, err)
		assert.Equal(t, "2409SN001", escrow.OrderSN)
		assert.Equal(t, "118.2", escrow.EscrowAmount.String())
		assert.Equal(t, "5.1", escrow.CommissionFee.String())
		assert.False(t, escrow.FetchedAt.IsZero())
	})

	t.Run("settlement not ready maps to soft error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":   "error_not_found",
				"message": "Escrow detail not found",
			})
		}))
		defer server.Close()

		client := newTestClient(t, server.URL, newFakeCredentialStore(testCredential(shopID)))
		_, err := client.FetchEscrowDetail(context.Background(), shopID, "2409SN404")
		assert.ErrorIs(t, err, ordersync.ErrEscrowNotReady)
	})
}
