package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ordersyncapp "github.com/kiendt120702/BTCShopee-sub000/internal/application/ordersync"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/dto"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SyncHandler dispatches the single-endpoint sync action API. Every
// action returns HTTP 200; domain failures are embedded in the response
// envelope with success set to false.
type SyncHandler struct {
	BaseHandler
	orderSync  *ordersyncapp.OrderSyncService
	escrowSync *ordersyncapp.EscrowSyncService
	logger     *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(
	orderSync *ordersyncapp.OrderSyncService,
	escrowSync *ordersyncapp.EscrowSyncService,
	logger *zap.Logger,
) *SyncHandler {
	return &SyncHandler{
		orderSync:  orderSync,
		escrowSync: escrowSync,
		logger:     logger,
	}
}

// RegisterRoutes registers the sync endpoint on the API group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.HandleAction)
}

// HandleAction decodes the action request and dispatches it.
func (h *SyncHandler) HandleAction(c *gin.Context) {
	var req dto.SyncActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	h.logger.Info("Dispatching sync action",
		zap.String("action", req.Action),
		zap.Int64("shop_id", req.ShopID),
		zap.String("request_id", middleware.GetRequestID(c)))

	ctx := c.Request.Context()

	switch req.Action {
	case dto.ActionSync:
		result, err := h.orderSync.Sync(ctx, req.ShopID)
		h.respond(c, result, err)

	case dto.ActionSyncMonth:
		if req.Month == "" {
			h.BadRequest(c, "month is required for sync-month")
			return
		}
		result, err := h.orderSync.SyncMonth(ctx, req.ShopID, req.Month, req.ChunkEnd)
		h.respond(c, result, err)

	case dto.ActionContinueMonthSync:
		result, err := h.orderSync.ContinueMonth(ctx, req.ShopID)
		h.respond(c, result, err)

	case dto.ActionSyncDateRange:
		start, end, ok := h.parseDateRange(c, req)
		if !ok {
			return
		}
		result, err := h.orderSync.SyncDateRange(ctx, req.ShopID, start, end, req.ChunkIndex)
		h.respond(c, result, err)

	case dto.ActionStatus:
		result, err := h.orderSync.Status(ctx, req.ShopID)
		h.respond(c, result, err)

	case dto.ActionSyncEscrow:
		if len(req.OrderSNs) == 0 {
			h.BadRequest(c, "order_sns is required for sync-escrow")
			return
		}
		result, err := h.escrowSync.SyncEscrow(ctx, req.ShopID, req.OrderSNs)
		h.respond(c, result, err)

	case dto.ActionSyncAllEscrow:
		result, err := h.escrowSync.SyncAllEscrow(ctx, req.ShopID, req.BatchSize, req.Offset, req.Force)
		h.respond(c, result, err)

	case dto.ActionFinanceStats:
		result, err := h.escrowSync.FinanceStats(ctx, req.ShopID, req.Month)
		h.respond(c, result, err)

	case dto.ActionEscrowStats:
		result, err := h.escrowSync.EscrowStats(ctx, req.ShopID, req.Month)
		h.respond(c, result, err)

	default:
		h.Error(c, http.StatusOK, dto.ErrCodeUnknownAction, fmt.Sprintf("unknown action %q", req.Action))
	}
}

// parseDateRange validates the date-range parameters before any state is
// touched. A false return means a response was already written.
func (h *SyncHandler) parseDateRange(c *gin.Context, req dto.SyncActionRequest) (time.Time, time.Time, bool) {
	if req.StartDate == "" || req.EndDate == "" {
		h.BadRequest(c, "start_date and end_date are required for sync-date-range")
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(dto.DateLayout, req.StartDate)
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("invalid start_date %q: expected YYYY-MM-DD", req.StartDate))
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dto.DateLayout, req.EndDate)
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("invalid end_date %q: expected YYYY-MM-DD", req.EndDate))
		return time.Time{}, time.Time{}, false
	}
	// The end date is inclusive on the wire; the engine works on
	// half-open windows.
	return start, end.AddDate(0, 0, 1), true
}

func (h *SyncHandler) respond(c *gin.Context, result any, err error) {
	if err != nil {
		h.logger.Warn("Sync action failed", zap.Error(err))
		h.DomainFailure(c, err)
		return
	}
	h.Success(c, result)
}
