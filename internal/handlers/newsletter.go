package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type NewsletterHandler struct {
  newsletterService services.NewsletterService
}

func NewNewsletterHandler(newsletterService services.NewsletterService) *NewsletterHandler {
  return &NewsletterHandler{newsletterService: newsletterService}
}

func (nh *NewsletterHandler) Subscribe(c *gin.Context) {
  var req struct {
    Email       string      `json:"email"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  subscriber, err := nh.newsletterService.Subscribe(c.Request.Context(), req.Email)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, subscriber)
}

func (nh *NewsletterHandler) List(c *gin.Context) {
  subscribers, err := nh.newsletterService.List(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"records": subscribers})
}

func (nh *NewsletterHandler) SendToAll(c *gin.Context) {
  var req struct {
    Subject     string      `json:"subject"`
    Body        string      `json:"body"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  result, err := nh.newsletterService.SendToAll(c.Request.Context(), req.Subject, req.Body)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, result)
}
