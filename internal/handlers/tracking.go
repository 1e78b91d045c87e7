package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type TrackingHandler struct {
  trackingService   services.TrackingService
}

func NewTrackingHandler(trackingService services.TrackingService) *TrackingHandler {
  return &TrackingHandler{trackingService: trackingService}
}

func (th *TrackingHandler) RecordClick(c *gin.Context) {
  var req services.ClickInput
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  if err := th.trackingService.RecordClick(c.Request.Context(), req); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "recorded"})
}

func (th *TrackingHandler) List(c *gin.Context) {
  listing, err := th.trackingService.ListClicks(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, listing)
}
