package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type UserHandler struct {
  userService       services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
  return &UserHandler{userService: userService}
}

func (uh *UserHandler) Me(c *gin.Context) {
  user, err := uh.userService.GetMe(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) UpdateProfile(c *gin.Context) {
  var req services.ProfileUpdate
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  user, err := uh.userService.UpdateProfile(c.Request.Context(), req)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, user)
}

func (uh *UserHandler) List(c *gin.Context) {
  listing, err := uh.userService.ListUsers(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, listing)
}

func (uh *UserHandler) UpdateRole(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, apierr.Validation("invalid user id"))
    return
  }
  var req struct {
    Role      string      `json:"role"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  if err := uh.userService.UpdateRole(c.Request.Context(), userID, req.Role); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "role updated"})
}
