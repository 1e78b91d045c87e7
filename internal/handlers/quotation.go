package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type QuotationHandler struct {
  quotationService services.QuotationService
}

func NewQuotationHandler(quotationService services.QuotationService) *QuotationHandler {
  return &QuotationHandler{quotationService: quotationService}
}

func (qh *QuotationHandler) Create(c *gin.Context) {
  var req services.QuotationInput
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  quotation, err := qh.quotationService.Create(c.Request.Context(), req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, quotation)
}

func (qh *QuotationHandler) List(c *gin.Context) {
  listing, err := qh.quotationService.List(c.Request.Context(), c.DefaultQuery("role", "buyer"))
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, listing)
}

func (qh *QuotationHandler) Reply(c *gin.Context) {
  quotationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid quotation id"))
    return
  }
  var req struct {
    Reply string `json:"reply"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  quotation, err := qh.quotationService.Reply(c.Request.Context(), quotationID, req.Reply)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, quotation)
}

func (qh *QuotationHandler) Reject(c *gin.Context) {
  quotationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid quotation id"))
    return
  }
  quotation, err := qh.quotationService.Reject(c.Request.Context(), quotationID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, quotation)
}

func (qh *QuotationHandler) MarkRead(c *gin.Context) {
  quotationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid quotation id"))
    return
  }
  if err := qh.quotationService.MarkRead(c.Request.Context(), quotationID); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "marked read"})
}

func (qh *QuotationHandler) Accept(c *gin.Context) {
  quotationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid quotation id"))
    return
  }
  order, err := qh.quotationService.Accept(c.Request.Context(), quotationID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, order)
}
