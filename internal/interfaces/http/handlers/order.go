// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/order"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	orderService *order.Service
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

// Place converts the user's cart into an order
// POST /api/v1/orders
func (h *OrderHandler) Place(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

// List returns the user's orders; staff see all orders
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isStaff := middleware.IsStaffFromContext(c)

	orders, err := h.orderService.List(userID, isStaff)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get returns a single order
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isStaff := middleware.IsStaffFromContext(c)
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ord, err := h.orderService.Get(orderID, userID, isStaff)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// Cancel cancels an order, refunding through the gateway when the payment
// already succeeded
// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ord, err := h.orderService.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// VerifyPayment validates the gateway callback for an order
// POST /api/v1/orders/:id/verify-payment
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req order.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	ord, err := h.orderService.VerifyPayment(orderID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// RetryPayment creates a fresh payment intent for a pending online order
// POST /api/v1/orders/:id/retry-payment
func (h *OrderHandler) RetryPayment(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.orderService.RetryPayment(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dispatch marks an order dispatched (staff only)
// POST /api/v1/orders/:id/dispatch
func (h *OrderHandler) Dispatch(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ord, err := h.orderService.Dispatch(orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// AcceptDelivery lets the owner confirm receipt, completing the order
// POST /api/v1/orders/:id/accept-order
func (h *OrderHandler) AcceptDelivery(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ord, err := h.orderService.AcceptDelivery(orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// UpdateStatus moves an order along the fulfilment chain (staff only)
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	ord, err := h.orderService.UpdateStatus(orderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}
