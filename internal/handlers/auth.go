package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type AuthHandler struct {
  authService       services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
  return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
  var req struct {
    Email         string      `json:"email"`
    Password      string      `json:"password"`
    CompanyName   string      `json:"company_name"`
    Phone         string      `json:"phone"`
    Country       string      `json:"country"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  user := types.User{
    Email:       req.Email,
    Password:    req.Password,
    CompanyName: req.CompanyName,
    Phone:       req.Phone,
    Country:     req.Country,
  }
  if err := ah.authService.RegisterUser(c.Request.Context(), &user); err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"id": user.ID, "email": user.Email})
}

func (ah *AuthHandler) Login(c *gin.Context) {
  var req struct {
    Email         string      `json:"email"`
    Password      string      `json:"password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
  if err != nil {
    RespondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
  accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  expiresIn := int(ah.authService.GetAccessTTL().Seconds())
  RespondOK(c, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
  if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "logged out successfully"})
}

func (ah *AuthHandler) ChangePassword(c *gin.Context) {
  var req struct {
    CurrentPassword   string    `json:"current_password"`
    NewPassword       string    `json:"new_password"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  if err := ah.authService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "password updated"})
}

func (ah *AuthHandler) DeleteAccount(c *gin.Context) {
  if err := ah.authService.DeleteAccount(c.Request.Context()); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "account deleted"})
}

func (ah *AuthHandler) ConfirmEmails(c *gin.Context) {
  var req struct {
    Emails      []string    `json:"emails"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation("invalid request body"))
    return
  }
  confirmed, failed, err := ah.authService.ConfirmEmails(c.Request.Context(), req.Emails)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"confirmed": confirmed, "failed": failed})
}
