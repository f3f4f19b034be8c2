package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/Sreejasudhakaran/veriscope-ai-backend/middleware"
	"github.com/Sreejasudhakaran/veriscope-ai-backend/models"
)

// CreateProduct handles POST /api/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	product := &models.Product{
		Name:           req.Name,
		Category:       req.Category,
		Brand:          req.Brand,
		Ingredients:    req.Ingredients,
		Description:    req.Description,
		Certifications: req.Certifications,
		Packaging:      req.Packaging,
		Sustainability: req.Sustainability,
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		log.Errorf("Failed to create product %s: %v", req.Name, err)
		storeError(c, err, "product not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

// ListProducts handles GET /api/products.
func (h *Handlers) ListProducts(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	products, total, err := h.products.List(c.Request.Context(), page, limit, c.Query("category"))
	if err != nil {
		log.Errorf("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"products": products,
			"total":    total,
			"page":     page,
			"limit":    limit,
		},
	})
}

// SearchProducts handles GET /api/products/search.
func (h *Handlers) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "details": gin.H{"q": "search query is required"}})
		return
	}

	products, err := h.products.Search(c.Request.Context(), query, c.Query("category"))
	if err != nil {
		log.Errorf("Failed to search products for %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"products": products}})
}

// GetProduct handles GET /api/products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// UpdateProduct handles PUT /api/products/:id as a partial field merge.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	product, err := h.products.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		storeError(c, err, "product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// DeleteProduct handles DELETE /api/products/:id. The catalog is shared,
// so deletion is admin-only.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	if c.GetString(middleware.ContextRole) != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "only admins can delete products"})
		return
	}

	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "product deleted"}})
}
