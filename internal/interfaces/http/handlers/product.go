// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/product"
	"github.com/your-org/clinic-store-backend/internal/pkg/reference"
)

// ProductHandler handles store product endpoints
type ProductHandler struct {
	productService *product.Service
	storeAllowList *reference.AllowList
	logger         *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, storeAllowList *reference.AllowList, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storeAllowList: storeAllowList,
		logger:         logger,
	}
}

// List lists products
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	products, err := h.productService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Get returns one product by ID
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	prod, err := h.productService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prod)
}

// GetBySlug returns one product by slug
// GET /api/v1/products/slug/:slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	prod, err := h.productService.GetBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prod)
}

// Create creates a product wrapping a catalog item (staff only)
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	prod, err := h.productService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prod)
}

// Update updates pricing and stock (staff only)
// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req product.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	prod, err := h.productService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prod)
}

// Delete removes a product (staff only)
// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ReloadAllowList re-reads the allow-listed item types from configuration
// (staff only)
// POST /api/v1/admin/store/reload-allow-list
func (h *ProductHandler) ReloadAllowList(c *gin.Context) {
	var req struct {
		ItemTypes []string `json:"item_types" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	if err := h.storeAllowList.Reload(req.ItemTypes); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed_item_types": h.storeAllowList.Types()})
}
