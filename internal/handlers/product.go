package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type ProductHandler struct {
  productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
  return &ProductHandler{productService: productService}
}

func (ph *ProductHandler) Create(c *gin.Context) {
  var req services.ProductInput
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  product, err := ph.productService.Create(c.Request.Context(), req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, product)
}

func (ph *ProductHandler) Update(c *gin.Context) {
  productID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid product id"))
    return
  }
  var req services.ProductUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  product, err := ph.productService.Update(c.Request.Context(), productID, req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, product)
}

func (ph *ProductHandler) Delete(c *gin.Context) {
  productID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid product id"))
    return
  }
  if err := ph.productService.Delete(c.Request.Context(), productID); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "product deleted"})
}

func (ph *ProductHandler) ListMine(c *gin.Context) {
  listing, err := ph.productService.ListMine(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, listing)
}

func (ph *ProductHandler) ListVisible(c *gin.Context) {
  products, err := ph.productService.ListVisible(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"records": products})
}

// View bumps the view counter. Always 200: the counter is cosmetic and a
// failed bump should not surface to the storefront.
func (ph *ProductHandler) View(c *gin.Context) {
  productID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid product id"))
    return
  }
  _ = ph.productService.IncrementViews(c.Request.Context(), productID)
  RespondOK(c, gin.H{"message": "ok"})
}

func (ph *ProductHandler) SetStaticVisibility(c *gin.Context) {
  productID := c.Param("id")
  var req struct {
    IsVisible *bool `json:"is_visible"`
  }
  if err := c.ShouldBindJSON(&req); err != nil || req.IsVisible == nil {
    RespondError(c, apierr.Validation("is_visible is required"))
    return
  }
  visibility, err := ph.productService.SetStaticVisibility(c.Request.Context(), productID, *req.IsVisible)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, visibility)
}
