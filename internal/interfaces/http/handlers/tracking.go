// internal/interfaces/http/handlers/tracking.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// TrackingHandler handles delivery tracking endpoints
type TrackingHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(orderService *order.Service, cfg *config.Config) *TrackingHandler {
	return &TrackingHandler{
		orderService: orderService,
		config:       cfg,
	}
}

// GetTracking handles GET /tracking/:number. It is public: customers
// look up their delivery with only the order number.
func (h *TrackingHandler) GetTracking(c *gin.Context) {
	view, err := h.orderService.GetTrackingByOrderNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tracking retrieved successfully",
		"data":    view,
	})
}

// AssignCourier handles PUT /admin/tracking/:number/courier
func (h *TrackingHandler) AssignCourier(c *gin.Context) {
	var req order.AssignCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.orderService.AssignCourier(c.Request.Context(), c.Param("number"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Courier assigned successfully",
		"data":    view,
	})
}
