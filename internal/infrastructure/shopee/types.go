package shopee

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/ordersync"
)

// baseResponse is the envelope every Shopee Open API response carries.
type baseResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// APIError is a platform-reported error for one call.
type APIError struct {
	Path      string
	Code      string
	Message   string
	RequestID string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("shopee: %s failed: %s - %s (request %s)", e.Path, e.Code, e.Message, e.RequestID)
}

// authErrorCodes are the platform's invalid-token signals. The misspelled
// variant is returned by older API gateways and must stay.
var authErrorCodes = map[string]bool{
	"error_auth":           true,
	"invalid_access_token": true,
	"invalid_acess_token":  true,
}

// escrowNotReadyCodes mark settlement detail the platform has not
// computed yet; a soft, retryable per-record condition.
var escrowNotReadyCodes = map[string]bool{
	"error_not_found":        true,
	"error_escrow_not_ready": true,
}

// orderListResponse mirrors /api/v2/order/get_order_list.
type orderListResponse struct {
	baseResponse
	Response struct {
		More       bool   `json:"more"`
		NextCursor string `json:"next_cursor"`
		OrderList  []struct {
			OrderSN     string `json:"order_sn"`
			OrderStatus string `json:"order_status"`
		} `json:"order_list"`
	} `json:"response"`
}

// orderDetailResponse mirrors /api/v2/order/get_order_detail.
type orderDetailResponse struct {
	baseResponse
	Response struct {
		OrderList []orderDetail `json:"order_list"`
	} `json:"response"`
}

// orderDetail is one fully-detailed order on the wire. Timestamps are
// unix seconds; monetary fields are decoded to decimal.
type orderDetail struct {
	OrderSN     string          `json:"order_sn"`
	OrderStatus string          `json:"order_status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CreateTime  int64           `json:"create_time"`
	UpdateTime  int64           `json:"update_time"`
	ItemList    json.RawMessage `json:"item_list"`
	PackageList json.RawMessage `json:"package_list"`
}

// toDomain converts a wire order to the mirror's Order entity.
func (d *orderDetail) toDomain(shopID int64) ordersync.Order {
	return ordersync.Order{
		ShopID:      shopID,
		OrderSN:     d.OrderSN,
		Status:      ordersync.OrderStatus(d.OrderStatus),
		TotalAmount: d.TotalAmount,
		Currency:    d.Currency,
		CreateTime:  time.Unix(d.CreateTime, 0).UTC(),
		UpdateTime:  time.Unix(d.UpdateTime, 0).UTC(),
		Items:       []byte(d.ItemList),
		Packages:    []byte(d.PackageList),
	}
}

// escrowDetailResponse mirrors /api/v2/payment/get_escrow_detail.
type escrowDetailResponse struct {
	baseResponse
	Response struct {
		OrderSN     string `json:"order_sn"`
		OrderIncome struct {
			EscrowAmount     decimal.Decimal `json:"escrow_amount"`
			BuyerTotalAmount decimal.Decimal `json:"buyer_total_amount"`
			SellerDiscount   decimal.Decimal `json:"seller_discount"`
			ShopeeDiscount   decimal.Decimal `json:"shopee_discount"`
			CommissionFee    decimal.Decimal `json:"commission_fee"`
			ServiceFee       decimal.Decimal `json:"service_fee"`
			TransactionFee   decimal.Decimal `json:"transaction_fee"`
			EscrowTax        decimal.Decimal `json:"escrow_tax"`
			Currency         string          `json:"currency"`
			Items            json.RawMessage `json:"items"`
		} `json:"order_income"`
		OrderAdjustment json.RawMessage `json:"order_adjustment"`
	} `json:"response"`
}

// toDomain converts a wire settlement detail to the Escrow entity.
func (r *escrowDetailResponse) toDomain(shopID int64, fetchedAt time.Time) *ordersync.Escrow {
	income := r.Response.OrderIncome
	return &ordersync.Escrow{
		ShopID:           shopID,
		OrderSN:          r.Response.OrderSN,
		EscrowAmount:     income.EscrowAmount,
		BuyerTotalAmount: income.BuyerTotalAmount,
		SellerDiscount:   income.SellerDiscount,
		PlatformDiscount: income.ShopeeDiscount,
		CommissionFee:    income.CommissionFee,
		ServiceFee:       income.ServiceFee,
		TransactionFee:   income.TransactionFee,
		Tax:              income.EscrowTax,
		Currency:         income.Currency,
		Items:            []byte(income.Items),
		Adjustments:      []byte(r.Response.OrderAdjustment),
		FetchedAt:        fetchedAt,
	}
}

// tokenResponse mirrors /api/v2/auth/access_token/get. Token fields sit
// at the top level next to the envelope.
type tokenResponse struct {
	baseResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"`
}
