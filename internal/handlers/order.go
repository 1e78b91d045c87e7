package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type OrderHandler struct {
  orderService      services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
  return &OrderHandler{orderService: orderService}
}

func (oh *OrderHandler) Create(c *gin.Context) {
  var req services.OrderInput
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  order, err := oh.orderService.Create(c.Request.Context(), req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, order)
}

func (oh *OrderHandler) List(c *gin.Context) {
  listing, err := oh.orderService.List(c.Request.Context(), c.DefaultQuery("role", "buyer"))
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, listing)
}

func (oh *OrderHandler) Get(c *gin.Context) {
  orderID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid order id"))
    return
  }
  order, err := oh.orderService.Get(c.Request.Context(), orderID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, order)
}

func (oh *OrderHandler) UpdateStatus(c *gin.Context) {
  orderID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid order id"))
    return
  }
  var req struct {
    Status      string      `json:"status"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  order, err := oh.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, order)
}

func (oh *OrderHandler) MarkRead(c *gin.Context) {
  orderID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid order id"))
    return
  }
  if err := oh.orderService.MarkRead(c.Request.Context(), orderID); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "marked read"})
}

func (oh *OrderHandler) MarkAllRead(c *gin.Context) {
  var req struct {
    Role        string      `json:"role"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  updated, err := oh.orderService.MarkAllRead(c.Request.Context(), req.Role)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"updated": updated})
}
