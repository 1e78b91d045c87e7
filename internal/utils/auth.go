package utils

import (
  "context"
  "net/mail"
  "golang.org/x/crypto/bcrypt"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

func ValidateRegistration(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User) error {
  if user == nil {
    return apierr.Validation("no user given, cannot proceed with registration")
  }
  if user.Email == "" {
    return apierr.Validation("an email is required to register")
  }
  if _, err := mail.ParseAddress(user.Email); err != nil {
    return apierr.Validation("a valid email is required to register")
  }
  if user.Password == "" {
    return apierr.Validation("a password is required to register")
  }
  if len(user.Password) < 8 {
    return apierr.Validation("password must be at least 8 characters")
  }
  if user.CompanyName == "" {
    return apierr.Validation("a company name is required to register")
  }
  emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    log.Warn("Failed to check user email", "error", err)
    return apierr.Upstream(err)
  }
  if emailExists {
    return apierr.Conflict("email is already in use")
  }
  return nil
}

func ValidateLogin(email, password string) error {
  if email == "" {
    return apierr.Validation("email is required to login")
  }
  if password == "" {
    return apierr.Validation("password is required to login")
  }
  return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    log.Warn("Failed to hash password", "error", err)
    return apierr.Upstream(err)
  }
  user.Password = string(hashedPassword)
  return nil
}

func NormalizeUserFields(ctx context.Context, user *types.User) {
  user.Email = normalization.ParseInputString(user.Email)
  user.CompanyName = normalization.TrimOnly(user.CompanyName)
  user.Phone = normalization.TrimOnly(user.Phone)
  user.Country = normalization.TrimOnly(user.Country)
}
