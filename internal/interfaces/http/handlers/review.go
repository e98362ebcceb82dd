// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/review"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/middleware"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviewService *review.Service
	logger        *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

// List lists reviews, optionally filtered by item and rating
// GET /api/v1/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	var req review.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	reviews, err := h.reviewService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Create adds a review for a catalog item
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	rev, err := h.reviewService.Create(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rev)
}

// Update modifies a review (author or staff)
// PUT /api/v1/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isStaff := middleware.IsStaffFromContext(c)
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req review.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	rev, err := h.reviewService.Update(reviewID, userID, isStaff, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// Delete removes a review (author or staff)
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	isStaff := middleware.IsStaffFromContext(c)
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(reviewID, userID, isStaff); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
