package handlers

import (
  "github.com/gin-gonic/gin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/services"
)

type AdminHandler struct {
  adminService      services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
  return &AdminHandler{adminService: adminService}
}

func (ah *AdminHandler) Dashboard(c *gin.Context) {
  stats, err := ah.adminService.Dashboard(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, stats)
}
