package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kiendt120702/BTCShopee-sub000/internal/domain/shared"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/dto"
	"github.com/kiendt120702/BTCShopee-sub000/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given HTTP status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// DomainFailure sends an HTTP 200 response carrying an embedded failure.
// The sync actions report every domain error this way so the dashboard
// never has to special-case transport failures from domain failures.
func (h *BaseHandler) DomainFailure(c *gin.Context, err error) {
	code := dto.ErrCodeInternal
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	c.JSON(http.StatusOK, dto.NewErrorResponseWithRequestID(code, err.Error(), middleware.GetRequestID(c)))
}

// BadRequest sends an HTTP 200 response with an embedded bad-request
// failure, matching the sync action contract.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}
