package services

import (
  "context"
  "net/http"
  "testing"
  "time"

  "github.com/google/uuid"

  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type authFixture struct {
  svc      AuthService
  users    *fakeUserRepo
  sessions *fakeSessionRepo
  products *fakeProductRepo
  mailer   *fakeMailer
}

func newAuthFixture(t *testing.T, cfg config.Config) *authFixture {
  t.Helper()
  users := newFakeUserRepo()
  sessions := newFakeSessionRepo()
  products := newFakeProductRepo()
  mailer := newFakeMailer()
  svc := NewAuthService(newTestDB(t), newTestLogger(t), cfg, users, sessions, products, mailer, "test-secret", time.Hour, 24*time.Hour)
  return &authFixture{svc: svc, users: users, sessions: sessions, products: products, mailer: mailer}
}

func registerUser(t *testing.T, fx *authFixture, email string) *types.User {
  t.Helper()
  user := &types.User{
    Email:       email,
    Password:    "longenough",
    CompanyName: "Acme Farms",
  }
  if err := fx.svc.RegisterUser(context.Background(), user); err != nil {
    t.Fatalf("RegisterUser: %v", err)
  }
  return user
}

func TestRegisterUserAssignsRoleFromAllowlist(t *testing.T) {
  fx := newAuthFixture(t, config.Config{AdminEmails: []string{"boss@agrilpa.com"}})

  admin := registerUser(t, fx, "Boss@Agrilpa.com")
  if admin.Role != types.RoleAdmin {
    t.Fatalf("allowlisted email role: want=%q got=%q", types.RoleAdmin, admin.Role)
  }
  regular := registerUser(t, fx, "farmer@example.com")
  if regular.Role != types.RoleUser {
    t.Fatalf("regular email role: want=%q got=%q", types.RoleUser, regular.Role)
  }
  if len(fx.mailer.sent) != 2 {
    t.Fatalf("welcome emails: want=2 got=%d", len(fx.mailer.sent))
  }
}

func TestRegisterUserRejectsDuplicateEmail(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  registerUser(t, fx, "farmer@example.com")

  dup := &types.User{Email: "farmer@example.com", Password: "longenough", CompanyName: "Other Co"}
  err := fx.svc.RegisterUser(context.Background(), dup)
  if err == nil {
    t.Fatalf("expected duplicate email to be rejected")
  }
  if got := apierr.StatusOf(err); got != http.StatusConflict {
    t.Fatalf("duplicate email status: want=%d got=%d", http.StatusConflict, got)
  }
}

func TestRegisterUserRejectsShortPassword(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  user := &types.User{Email: "farmer@example.com", Password: "short", CompanyName: "Acme"}
  err := fx.svc.RegisterUser(context.Background(), user)
  if err == nil {
    t.Fatalf("expected short password to be rejected")
  }
  if got := apierr.StatusOf(err); got != http.StatusBadRequest {
    t.Fatalf("short password status: want=%d got=%d", http.StatusBadRequest, got)
  }
}

func TestLoginUserWrongPassword(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  registerUser(t, fx, "farmer@example.com")

  _, _, err := fx.svc.LoginUser(context.Background(), "farmer@example.com", "wrongpassword")
  if err == nil {
    t.Fatalf("expected wrong password to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusUnauthorized {
    t.Fatalf("wrong password status: want=%d got=%d", http.StatusUnauthorized, got)
  }
}

func TestLoginUserCreatesSessionAndPrunesExpired(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  user := registerUser(t, fx, "farmer@example.com")

  expired := &types.Session{
    ID:           uuid.New(),
    UserID:       user.ID,
    AccessToken:  "stale-access",
    RefreshToken: "stale-refresh",
    ExpiresAt:    time.Now().Add(-time.Hour),
  }
  fx.sessions.sessions[expired.ID] = expired

  // Expired sessions of other users get swept on the same login.
  otherExpired := &types.Session{
    ID:           uuid.New(),
    UserID:       uuid.New(),
    AccessToken:  "other-stale-access",
    RefreshToken: "other-stale-refresh",
    ExpiresAt:    time.Now().Add(-time.Minute),
  }
  fx.sessions.sessions[otherExpired.ID] = otherExpired

  access, refresh, err := fx.svc.LoginUser(context.Background(), "farmer@example.com", "longenough")
  if err != nil {
    t.Fatalf("LoginUser: %v", err)
  }
  if access == "" || refresh == "" {
    t.Fatalf("expected non-empty token pair")
  }
  if _, ok := fx.sessions.sessions[expired.ID]; ok {
    t.Fatalf("expected expired session to be pruned on login")
  }
  if _, ok := fx.sessions.sessions[otherExpired.ID]; ok {
    t.Fatalf("expected other user's expired session to be pruned on login")
  }
  if len(fx.sessions.sessions) != 1 {
    t.Fatalf("sessions after login: want=1 got=%d", len(fx.sessions.sessions))
  }
}

func TestSetContextFromTokenUsesStoredRole(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  user := registerUser(t, fx, "farmer@example.com")

  access, _, err := fx.svc.LoginUser(context.Background(), "farmer@example.com", "longenough")
  if err != nil {
    t.Fatalf("LoginUser: %v", err)
  }

  // Promote after the token was issued: the context must reflect the store,
  // not the claim baked into the token.
  user.Role = types.RoleAdmin

  ctx, err := fx.svc.SetContextFromToken(context.Background(), access)
  if err != nil {
    t.Fatalf("SetContextFromToken: %v", err)
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    t.Fatalf("expected request data in context")
  }
  if rd.UserID != user.ID {
    t.Fatalf("context user id: want=%v got=%v", user.ID, rd.UserID)
  }
  if rd.Role != types.RoleAdmin {
    t.Fatalf("context role: want=%q got=%q", types.RoleAdmin, rd.Role)
  }
}

func TestSetContextFromTokenRejectsUnknownSession(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  user := registerUser(t, fx, "farmer@example.com")
  access, _, err := fx.svc.LoginUser(context.Background(), "farmer@example.com", "longenough")
  if err != nil {
    t.Fatalf("LoginUser: %v", err)
  }
  if err := fx.sessions.DeleteByUserIDs(context.Background(), nil, []uuid.UUID{user.ID}); err != nil {
    t.Fatalf("prune sessions: %v", err)
  }
  _, err = fx.svc.SetContextFromToken(context.Background(), access)
  if err == nil {
    t.Fatalf("expected error for a valid JWT without a live session")
  }
  if got := apierr.StatusOf(err); got != http.StatusUnauthorized {
    t.Fatalf("dead session status: want=%d got=%d", http.StatusUnauthorized, got)
  }
}

func TestChangePasswordWrongCurrent(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  user := registerUser(t, fx, "farmer@example.com")

  err := fx.svc.ChangePassword(authedCtx(user.ID, user.Role), "notthepassword", "newlongenough")
  if err == nil {
    t.Fatalf("expected wrong current password to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusUnauthorized {
    t.Fatalf("wrong current status: want=%d got=%d", http.StatusUnauthorized, got)
  }
}

func TestConfirmEmailsCollectsFailures(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  registerUser(t, fx, "one@example.com")
  registerUser(t, fx, "two@example.com")

  confirmed, failed, err := fx.svc.ConfirmEmails(context.Background(), []string{
    "One@Example.com",
    "missing@example.com",
    "",
    "two@example.com",
  })
  if err != nil {
    t.Fatalf("ConfirmEmails: %v", err)
  }
  if confirmed != 2 {
    t.Fatalf("confirmed: want=2 got=%d", confirmed)
  }
  if len(failed) != 2 {
    t.Fatalf("failed: want=2 entries got=%v", failed)
  }
}

func TestDeleteAccountRemovesOwnedData(t *testing.T) {
  fx := newAuthFixture(t, config.Config{})
  user := registerUser(t, fx, "farmer@example.com")
  if _, _, err := fx.svc.LoginUser(context.Background(), "farmer@example.com", "longenough"); err != nil {
    t.Fatalf("LoginUser: %v", err)
  }
  product := &types.Product{ID: uuid.New(), UserID: user.ID, Title: "Maize", IsVisible: true}
  fx.products.products[product.ID] = product

  if err := fx.svc.DeleteAccount(authedCtx(user.ID, user.Role)); err != nil {
    t.Fatalf("DeleteAccount: %v", err)
  }
  if len(fx.products.products) != 0 {
    t.Fatalf("expected products removed, got %d", len(fx.products.products))
  }
  if len(fx.sessions.sessions) != 0 {
    t.Fatalf("expected sessions removed, got %d", len(fx.sessions.sessions))
  }
  if len(fx.users.users) != 0 {
    t.Fatalf("expected user removed, got %d", len(fx.users.users))
  }
}
