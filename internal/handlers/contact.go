package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type ContactHandler struct {
  contactService    services.ContactService
}

func NewContactHandler(contactService services.ContactService) *ContactHandler {
  return &ContactHandler{contactService: contactService}
}

func (ch *ContactHandler) Submit(c *gin.Context) {
  var req services.ContactInput
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  submission, err := ch.contactService.Submit(c.Request.Context(), req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, submission)
}

func (ch *ContactHandler) List(c *gin.Context) {
  submissions, err := ch.contactService.List(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"records": submissions})
}
