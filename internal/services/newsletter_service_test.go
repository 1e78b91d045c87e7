package services

import (
  "context"
  "net/http"
  "testing"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type newsletterFixture struct {
  svc         NewsletterService
  subscribers *fakeNewsletterRepo
  mailer      *fakeMailer
}

func newNewsletterFixture(t *testing.T) *newsletterFixture {
  t.Helper()
  subscribers := newFakeNewsletterRepo()
  mailer := newFakeMailer()
  svc := NewNewsletterService(config.Config{}, newTestLogger(t), subscribers, mailer)
  return &newsletterFixture{svc: svc, subscribers: subscribers, mailer: mailer}
}

func subscribe(t *testing.T, fx *newsletterFixture, email string) {
  t.Helper()
  if _, err := fx.svc.Subscribe(context.Background(), email); err != nil {
    t.Fatalf("Subscribe(%s): %v", email, err)
  }
}

func TestSubscribeNormalizesAndDeduplicates(t *testing.T) {
  fx := newNewsletterFixture(t)

  sub, err := fx.svc.Subscribe(context.Background(), "  Reader@Example.COM ")
  if err != nil {
    t.Fatalf("Subscribe: %v", err)
  }
  if sub.Email != "reader@example.com" {
    t.Fatalf("email not normalized: %q", sub.Email)
  }

  _, err = fx.svc.Subscribe(context.Background(), "reader@example.com")
  if err == nil {
    t.Fatalf("expected duplicate subscription to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusConflict {
    t.Fatalf("duplicate status: want=%d got=%d", http.StatusConflict, got)
  }
}

func TestSubscribeUniqueIndexRaceIsConflict(t *testing.T) {
  fx := newNewsletterFixture(t)

  // A concurrent subscribe can slip between the precheck and the insert;
  // the unique index then rejects the insert.
  fx.subscribers.createErr = gorm.ErrDuplicatedKey

  _, err := fx.svc.Subscribe(context.Background(), "reader@example.com")
  if err == nil {
    t.Fatalf("expected duplicate-key insert to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusConflict {
    t.Fatalf("duplicate-key status: want=%d got=%d", http.StatusConflict, got)
  }
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
  fx := newNewsletterFixture(t)
  _, err := fx.svc.Subscribe(context.Background(), "not-an-email")
  if err == nil {
    t.Fatalf("expected invalid email to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusBadRequest {
    t.Fatalf("invalid email status: want=%d got=%d", http.StatusBadRequest, got)
  }
}

func TestSendToAllCollectsFailuresAndContinues(t *testing.T) {
  fx := newNewsletterFixture(t)
  subscribe(t, fx, "a@example.com")
  subscribe(t, fx, "b@example.com")
  subscribe(t, fx, "c@example.com")
  fx.mailer.failFor["b@example.com"] = true

  result, err := fx.svc.SendToAll(authedCtx(uuid.New(), types.RoleAdmin), "Market update", "Prices are up.")
  if err != nil {
    t.Fatalf("SendToAll: %v", err)
  }
  if result.Sent != 2 {
    t.Fatalf("sent: want=2 got=%d", result.Sent)
  }
  if len(result.Failed) != 1 || result.Failed[0] != "b@example.com" {
    t.Fatalf("failed list: want=[b@example.com] got=%v", result.Failed)
  }
  if len(fx.mailer.sent) != 2 {
    t.Fatalf("deliveries: want=2 got=%d", len(fx.mailer.sent))
  }
}

func TestSendToAllRequiresAdmin(t *testing.T) {
  fx := newNewsletterFixture(t)
  subscribe(t, fx, "a@example.com")

  _, err := fx.svc.SendToAll(authedCtx(uuid.New(), "user"), "s", "b")
  if err == nil {
    t.Fatalf("expected non-admin send to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusForbidden {
    t.Fatalf("non-admin status: want=%d got=%d", http.StatusForbidden, got)
  }
  if len(fx.mailer.sent) != 0 {
    t.Fatalf("no deliveries expected, got %d", len(fx.mailer.sent))
  }
}
