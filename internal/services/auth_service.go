package services

import (
  "context"
  "fmt"
  "time"
  "golang.org/x/crypto/bcrypt"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/utils"
)

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) error
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  ChangePassword(ctx context.Context, currentPassword, newPassword string) error
  DeleteAccount(ctx context.Context) error
  ConfirmEmails(ctx context.Context, emails []string) (int64, []string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db           *gorm.DB
  log          *logger.Logger
  cfg          config.Config
  userRepo     repos.UserRepo
  sessionRepo  repos.SessionRepo
  productRepo  repos.ProductRepo
  mailer       MailerService
  jwtSecretKey string
  accessTTL    time.Duration
  refreshTTL   time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  cfg config.Config,
  userRepo repos.UserRepo,
  sessionRepo repos.SessionRepo,
  productRepo repos.ProductRepo,
  mailer MailerService,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:           db,
    log:          serviceLog,
    cfg:          cfg,
    userRepo:     userRepo,
    sessionRepo:  sessionRepo,
    productRepo:  productRepo,
    mailer:       mailer,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
    refreshTTL:   refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
  utils.NormalizeUserFields(ctx, user)
  if vErr := utils.ValidateRegistration(ctx, as.userRepo, as.log, user); vErr != nil {
    return vErr
  }
  if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
    return hErr
  }
  user.ID = uuid.New()
  user.Role = types.RoleUser
  if as.cfg.IsAdminEmail(user.Email) {
    user.Role = types.RoleAdmin
  }
  if _, cErr := as.userRepo.Create(ctx, nil, []*types.User{user}); cErr != nil {
    as.log.Warn("Failed to create user", "error", cErr)
    return apierr.Upstream(fmt.Errorf("failed to create user: %w", cErr))
  }
  // Welcome email is best-effort: a delivery failure never undoes the
  // registration.
  if as.mailer != nil {
    if mErr := as.mailer.SendWelcome(ctx, user); mErr != nil {
      as.log.Warn("Welcome email failed", "error", mErr, "user_id", user.ID)
    }
  }
  return nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = normalization.ParseInputString(email)

  if vErr := utils.ValidateLogin(email, password); vErr != nil {
    return "", "", vErr
  }

  users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if usErr != nil {
    as.log.Warn("Error retrieving user by email", "error", usErr)
    return "", "", apierr.Upstream(fmt.Errorf("error retrieving user by email: %w", usErr))
  }
  if len(users) == 0 {
    return "", "", apierr.Unauthorized("invalid email or password")
  }

  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
    return "", "", apierr.Unauthorized("invalid email or password")
  }

  var accessToken string
  var refreshToken string
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    // Opportunistic sweep: every login prunes whatever sessions have
    // expired, not just the caller's.
    if _, dErr := as.sessionRepo.DeleteExpired(ctx, tx, time.Now()); dErr != nil {
      return fmt.Errorf("failed to prune expired sessions: %w", dErr)
    }
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("generate access token error: %w", genErr)
    }
    accessToken = tok
    refreshToken = uuid.New().String()
    session := types.Session{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, csErr := as.sessionRepo.Create(ctx, tx, []*types.Session{&session}); csErr != nil {
      return fmt.Errorf("failed to create session: %w", csErr)
    }
    return nil
  }); err != nil {
    as.log.Warn("Login transaction failed", "error", err)
    return "", "", apierr.Upstream(err)
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.RefreshToken == "" {
    return "", "", apierr.Unauthorized("no refresh token in request context")
  }

  var accessToken string
  var newRefreshToken string
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundSessions, fsErr := as.sessionRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if fsErr != nil {
      return fmt.Errorf("error fetching refresh token: %w", fsErr)
    }
    if len(foundSessions) == 0 || foundSessions[0] == nil {
      return apierr.Unauthorized("unknown refresh token")
    }
    existing := foundSessions[0]
    const expiryBuffer = 5 * time.Minute
    if existing.ExpiresAt.Add(expiryBuffer).Before(time.Now()) {
      if dErr := as.sessionRepo.DeleteBySessions(ctx, tx, []*types.Session{existing}); dErr != nil {
        return fmt.Errorf("refresh token expired, error deleting: %w", dErr)
      }
      return apierr.Unauthorized("refresh token expired")
    }
    users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
    if uErr != nil {
      return fmt.Errorf("failed to load user for refresh: %w", uErr)
    }
    if len(users) == 0 {
      return apierr.Unauthorized("no user found for the given refresh token")
    }
    user := users[0]
    tok, genErr := as.generateAccessToken(user)
    if genErr != nil {
      return fmt.Errorf("failed to generate new access token: %w", genErr)
    }
    accessToken = tok
    newRefreshToken = uuid.New().String()
    newSession := types.Session{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  tok,
      RefreshToken: newRefreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, cErr := as.sessionRepo.Create(ctx, tx, []*types.Session{&newSession}); cErr != nil {
      return fmt.Errorf("failed to create new session: %w", cErr)
    }
    if dErr := as.sessionRepo.DeleteBySessions(ctx, tx, []*types.Session{existing}); dErr != nil {
      return fmt.Errorf("failed to remove old session: %w", dErr)
    }
    return nil
  })
  if err != nil {
    as.log.Warn("Refresh transaction failed", "error", err)
    if apierr.StatusOf(err) != 500 {
      return "", "", err
    }
    return "", "", apierr.Upstream(err)
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return apierr.Unauthorized("no session token in request context")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    foundSessions, fsErr := as.sessionRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if fsErr != nil {
      as.log.Warn("Error finding session from token string", "error", fsErr)
      return apierr.Upstream(fmt.Errorf("error finding session: %w", fsErr))
    }
    if len(foundSessions) == 0 {
      return nil
    }
    if dErr := as.sessionRepo.DeleteBySessions(ctx, tx, foundSessions); dErr != nil {
      as.log.Warn("Error deleting session", "error", dErr)
      return apierr.Upstream(fmt.Errorf("error deleting session: %w", dErr))
    }
    return nil
  })
}

func (as *authService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.Unauthorized("no authenticated identity")
  }
  if currentPassword == "" || newPassword == "" {
    return apierr.Validation("current and new password are required")
  }
  if len(newPassword) < 8 {
    return apierr.Validation("new password must be at least 8 characters")
  }

  users, uErr := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if uErr != nil {
    as.log.Warn("Failed to load user for password change", "error", uErr)
    return apierr.Upstream(uErr)
  }
  if len(users) == 0 {
    return apierr.NotFound("user not found")
  }
  user := users[0]
  if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); hErr != nil {
    return apierr.Unauthorized("current password is incorrect")
  }
  hashed, hErr := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
  if hErr != nil {
    as.log.Warn("Failed to hash new password", "error", hErr)
    return apierr.Upstream(hErr)
  }
  if uErr := as.userRepo.UpdateFields(ctx, nil, user.ID, map[string]interface{}{"password": string(hashed)}); uErr != nil {
    as.log.Warn("Failed to update password", "error", uErr)
    return apierr.Upstream(uErr)
  }
  return nil
}

// DeleteAccount removes the caller's listings, sessions, and user row in one
// transaction; they live in the same store, so no cross-service compensation
// is needed here.
func (as *authService) DeleteAccount(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return apierr.Unauthorized("no authenticated identity")
  }
  err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    products, pErr := as.productRepo.GetByUserIDs(ctx, tx, []uuid.UUID{rd.UserID})
    if pErr != nil {
      return fmt.Errorf("failed to load user products: %w", pErr)
    }
    productIDs := make([]uuid.UUID, 0, len(products))
    for _, p := range products {
      productIDs = append(productIDs, p.ID)
    }
    if dErr := as.productRepo.Delete(ctx, tx, productIDs); dErr != nil {
      return fmt.Errorf("failed to delete user products: %w", dErr)
    }
    if sErr := as.sessionRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{rd.UserID}); sErr != nil {
      return fmt.Errorf("failed to delete user sessions: %w", sErr)
    }
    if uErr := as.userRepo.Delete(ctx, tx, []uuid.UUID{rd.UserID}); uErr != nil {
      return fmt.Errorf("failed to delete user: %w", uErr)
    }
    return nil
  })
  if err != nil {
    as.log.Warn("Account deletion failed", "error", err, "user_id", rd.UserID)
    return apierr.Upstream(err)
  }
  return nil
}

// ConfirmEmails marks the given addresses confirmed. Individual lookup
// failures are collected; the iteration never aborts early.
func (as *authService) ConfirmEmails(ctx context.Context, emails []string) (int64, []string, error) {
  if len(emails) == 0 {
    return 0, nil, apierr.Validation("at least one email is required")
  }
  var confirmed int64
  var failed []string
  for _, raw := range emails {
    email := normalization.ParseInputString(raw)
    if email == "" {
      failed = append(failed, raw)
      continue
    }
    n, cErr := as.userRepo.ConfirmByEmails(ctx, nil, []string{email})
    if cErr != nil {
      as.log.Warn("Failed to confirm email", "email", email, "error", cErr)
      failed = append(failed, raw)
      continue
    }
    if n == 0 {
      failed = append(failed, raw)
      continue
    }
    confirmed += n
  }
  return confirmed, failed, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
    Role: user.Role,
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken resolves the caller's identity. The role comes from
// the users table, not the token: a stale or tampered role claim never
// grants access.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, apierr.Unauthorized("missing token")
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, apierr.Unauthorized("failed to parse token")
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, apierr.Unauthorized("invalid or expired token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, apierr.Unauthorized("invalid user id in token")
  }

  sessions, fsErr := as.sessionRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if fsErr != nil {
    as.log.Warn("Error fetching session by access token", "error", fsErr)
    return ctx, apierr.Upstream(fmt.Errorf("failed to fetch session: %w", fsErr))
  }
  if len(sessions) == 0 || sessions[0] == nil {
    return ctx, apierr.Unauthorized("session not found")
  }

  users, uErr := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
  if uErr != nil {
    as.log.Warn("Error fetching user for session", "error", uErr)
    return ctx, apierr.Upstream(fmt.Errorf("failed to fetch user: %w", uErr))
  }
  if len(users) == 0 {
    return ctx, apierr.Unauthorized("user no longer exists")
  }

  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: sessions[0].RefreshToken,
    UserID:       userID,
    Email:        users[0].Email,
    Role:         users[0].Role,
  }
  ctx = requestdata.WithRequestData(ctx, rd)
  return ctx, nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
