package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
)

type APIError struct {
  Message     string	`json:"message"`
  Code	      string	`json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error	      APIError	`json:"error"`
}

// RespondError maps a service error onto the wire. The HTTP status and code
// come from the error itself; anything unclassified is a 500.
func RespondError(c *gin.Context, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(apierr.StatusOf(err), ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    apierr.CodeOf(err),
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
  c.JSON(http.StatusCreated, payload)
}
