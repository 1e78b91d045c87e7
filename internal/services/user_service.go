package services

import (
  "fmt"
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/aggregate"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type UserListing struct {
  Records []*types.User  `json:"records"`
  Stats   UserStats      `json:"stats"`
}

type UserStats struct {
  Total        int                 `json:"total"`
  PerRole      map[string]int      `json:"per_role"`
  TopCountries []aggregate.Bucket  `json:"top_countries"`
}

type ProfileUpdate struct {
  CompanyName *string `json:"company_name"`
  Phone       *string `json:"phone"`
  Country     *string `json:"country"`
}

type UserService interface {
  GetMe(ctx context.Context) (*types.User, error)
  UpdateProfile(ctx context.Context, update ProfileUpdate) (*types.User, error)
  ListUsers(ctx context.Context) (*UserListing, error)
  UpdateRole(ctx context.Context, userID uuid.UUID, role string) error
}

type userService struct {
  db       *gorm.DB
  log      *logger.Logger
  userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
  serviceLog := log.With("service", "UserService")
  return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }
  users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    us.log.Warn("Failed to load current user", "error", err)
    return nil, apierr.Upstream(err)
  }
  if len(users) == 0 {
    return nil, apierr.NotFound("user not found")
  }
  return users[0], nil
}

func (us *userService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*types.User, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }

  fields := map[string]interface{}{}
  if update.CompanyName != nil {
    v := normalization.TrimOnly(*update.CompanyName)
    if v == "" {
      return nil, apierr.Validation("company name cannot be empty")
    }
    fields["company_name"] = v
  }
  if update.Phone != nil {
    fields["phone"] = normalization.TrimOnly(*update.Phone)
  }
  if update.Country != nil {
    fields["country"] = normalization.TrimOnly(*update.Country)
  }
  if len(fields) == 0 {
    return nil, apierr.Validation("no profile fields to update")
  }

  if err := us.userRepo.UpdateFields(ctx, nil, rd.UserID, fields); err != nil {
    us.log.Warn("Failed to update profile", "error", err, "user_id", rd.UserID)
    return nil, apierr.Upstream(err)
  }
  return us.GetMe(ctx)
}

func (us *userService) ListUsers(ctx context.Context) (*UserListing, error) {
  rd := requestdata.GetRequestData(ctx)
  if err := authz.RequireAdmin(rd); err != nil {
    return nil, err
  }
  users, err := us.userRepo.List(ctx, nil)
  if err != nil {
    us.log.Warn("Failed to list users", "error", err)
    return nil, apierr.Upstream(err)
  }
  listing := &UserListing{
    Records: users,
    Stats: UserStats{
      Total:        aggregate.Total(users),
      PerRole:      aggregate.CountBy(users, func(u *types.User) string { return u.Role }),
      TopCountries: aggregate.TopN(users, func(u *types.User) string { return u.Country }, 5),
    },
  }
  return listing, nil
}

func (us *userService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
  rd := requestdata.GetRequestData(ctx)
  if err := authz.RequireAdmin(rd); err != nil {
    return err
  }
  role = types.NormalizeStatus(role)
  if !types.ValidRole(role) {
    return apierr.Validation("role must be one of: user, admin")
  }
  users, gErr := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if gErr != nil {
    us.log.Warn("Failed to load user for role update", "error", gErr)
    return apierr.Upstream(gErr)
  }
  if len(users) == 0 {
    return apierr.NotFound("user not found")
  }
  if uErr := us.userRepo.UpdateFields(ctx, nil, userID, map[string]interface{}{"role": role}); uErr != nil {
    us.log.Warn("Failed to update role", "error", uErr, "user_id", userID)
    return apierr.Upstream(fmt.Errorf("failed to update role: %w", uErr))
  }
  return nil
}
