// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/domain/catalog"
)

// CatalogHandler handles medicine and treatment endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
	logger         *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

// ListMedicines lists all medicines
// GET /api/v1/catalog/medicines
func (h *CatalogHandler) ListMedicines(c *gin.Context) {
	medicines, err := h.catalogService.ListMedicines()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medicines": medicines})
}

// GetMedicine returns one medicine
// GET /api/v1/catalog/medicines/:id
func (h *CatalogHandler) GetMedicine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	medicine, err := h.catalogService.GetMedicine(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

// CreateMedicine creates a medicine (staff only)
// POST /api/v1/catalog/medicines
func (h *CatalogHandler) CreateMedicine(c *gin.Context) {
	var req catalog.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	medicine, err := h.catalogService.CreateMedicine(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, medicine)
}

// UpdateMedicine updates a medicine (staff only)
// PUT /api/v1/catalog/medicines/:id
func (h *CatalogHandler) UpdateMedicine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	medicine, err := h.catalogService.UpdateMedicine(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

// DeleteMedicine deletes a medicine unless a product references it
// DELETE /api/v1/catalog/medicines/:id
func (h *CatalogHandler) DeleteMedicine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteMedicine(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted"})
}

// ListTreatments lists all treatments
// GET /api/v1/catalog/treatments
func (h *CatalogHandler) ListTreatments(c *gin.Context) {
	treatments, err := h.catalogService.ListTreatments()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"treatments": treatments})
}

// GetTreatment returns one treatment
// GET /api/v1/catalog/treatments/:id
func (h *CatalogHandler) GetTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	treatment, err := h.catalogService.GetTreatment(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, treatment)
}

// CreateTreatment creates a treatment (staff only)
// POST /api/v1/catalog/treatments
func (h *CatalogHandler) CreateTreatment(c *gin.Context) {
	var req catalog.CreateTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	treatment, err := h.catalogService.CreateTreatment(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, treatment)
}

// UpdateTreatment updates a treatment (staff only)
// PUT /api/v1/catalog/treatments/:id
func (h *CatalogHandler) UpdateTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.CreateTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}
	treatment, err := h.catalogService.UpdateTreatment(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, treatment)
}

// DeleteTreatment deletes a treatment unless a product references it
// DELETE /api/v1/catalog/treatments/:id
func (h *CatalogHandler) DeleteTreatment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteTreatment(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Treatment deleted"})
}
