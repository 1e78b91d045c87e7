package services

import (
  "github.com/golang-jwt/jwt/v5"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  Role string `json:"role,omitempty"`
}
