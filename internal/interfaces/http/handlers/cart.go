// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/cart"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService *cart.Service
	logger      *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

func cartResponse(c *gin.Context, userCart *cart.Cart) {
	c.JSON(http.StatusOK, gin.H{
		"cart":        userCart,
		"total_price": userCart.TotalPrice(),
		"total_items": userCart.TotalItems(),
	})
}

// Get returns the user's cart
// GET /api/v1/cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	userCart, err := h.cartService.GetOrCreateCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, userCart)
}

// AddItem adds a product to the cart
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	userCart, err := h.cartService.AddItem(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, userCart)
}

// UpdateItem changes a cart line's quantity
// PATCH /api/v1/cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	userCart, err := h.cartService.UpdateItem(userID, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, userCart)
}

// RemoveItem removes a cart line
// DELETE /api/v1/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userCart, err := h.cartService.RemoveItem(userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, userCart)
}

// Clear empties the cart; the user gets a fresh empty cart back
// DELETE /api/v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	userCart, err := h.cartService.ClearCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, userCart)
}
