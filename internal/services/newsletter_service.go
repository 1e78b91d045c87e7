package services

import (
  "context"
  "errors"
  "fmt"
  "net/mail"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type NewsletterSendResult struct {
  Sent     int      `json:"sent"`
  Failed   []string `json:"failed"`
}

type NewsletterService interface {
  Subscribe(ctx context.Context, email string) (*types.NewsletterSubscriber, error)
  List(ctx context.Context) ([]*types.NewsletterSubscriber, error)
  SendToAll(ctx context.Context, subject, body string) (*NewsletterSendResult, error)
}

type newsletterService struct {
  cfg            config.Config
  log            *logger.Logger
  newsletterRepo repos.NewsletterRepo
  mailer         MailerService
}

func NewNewsletterService(cfg config.Config, log *logger.Logger, newsletterRepo repos.NewsletterRepo, mailer MailerService) NewsletterService {
  serviceLog := log.With("service", "NewsletterService")
  return &newsletterService{cfg: cfg, log: serviceLog, newsletterRepo: newsletterRepo, mailer: mailer}
}

func (ns *newsletterService) Subscribe(ctx context.Context, email string) (*types.NewsletterSubscriber, error) {
  email = normalization.ParseInputString(email)
  if _, mErr := mail.ParseAddress(email); mErr != nil {
    return nil, apierr.Validation("a valid email is required")
  }

  exists, eErr := ns.newsletterRepo.EmailExists(ctx, nil, email)
  if eErr != nil {
    ns.log.Warn("Failed to check newsletter subscription", "error", eErr)
    return nil, apierr.Upstream(eErr)
  }
  if exists {
    return nil, apierr.Conflict("email is already subscribed")
  }

  subscriber := &types.NewsletterSubscriber{ID: uuid.New(), Email: email}
  if _, cErr := ns.newsletterRepo.Create(ctx, nil, []*types.NewsletterSubscriber{subscriber}); cErr != nil {
    // The precheck races with concurrent subscribes; the unique index wins
    // and that loser is still a duplicate, not a store failure.
    if errors.Is(cErr, gorm.ErrDuplicatedKey) {
      return nil, apierr.Conflict("email is already subscribed")
    }
    ns.log.Warn("Failed to store newsletter subscription", "error", cErr)
    return nil, apierr.Upstream(fmt.Errorf("failed to store subscription: %w", cErr))
  }
  return subscriber, nil
}

func (ns *newsletterService) List(ctx context.Context) ([]*types.NewsletterSubscriber, error) {
  rd := requestdata.GetRequestData(ctx)
  if aErr := authz.RequireAdmin(rd); aErr != nil {
    return nil, aErr
  }
  subscribers, err := ns.newsletterRepo.List(ctx, nil)
  if err != nil {
    ns.log.Warn("Failed to list newsletter subscribers", "error", err)
    return nil, apierr.Upstream(err)
  }
  return subscribers, nil
}

// SendToAll walks the subscriber list sequentially with a fixed delay between
// sends so the provider is never burst-flooded. A failed recipient is recorded
// and the walk continues; only a cancelled context stops it early.
func (ns *newsletterService) SendToAll(ctx context.Context, subject, body string) (*NewsletterSendResult, error) {
  rd := requestdata.GetRequestData(ctx)
  if aErr := authz.RequireAdmin(rd); aErr != nil {
    return nil, aErr
  }
  subject = normalization.TrimOnly(subject)
  if subject == "" || normalization.TrimOnly(body) == "" {
    return nil, apierr.Validation("subject and body are required")
  }
  if ns.mailer == nil {
    return nil, apierr.Upstream(fmt.Errorf("mailer not configured"))
  }

  subscribers, lErr := ns.newsletterRepo.List(ctx, nil)
  if lErr != nil {
    ns.log.Warn("Failed to list newsletter subscribers", "error", lErr)
    return nil, apierr.Upstream(lErr)
  }

  result := &NewsletterSendResult{Failed: []string{}}
  for i, subscriber := range subscribers {
    if i > 0 && ns.cfg.NewsletterSendDelay > 0 {
      select {
      case <-ctx.Done():
        return nil, apierr.Upstream(ctx.Err())
      case <-time.After(ns.cfg.NewsletterSendDelay):
      }
    }
    if sErr := ns.mailer.SendNewsletter(ctx, subscriber.Email, subject, body); sErr != nil {
      ns.log.Warn("Newsletter send failed", "error", sErr, "email", subscriber.Email)
      result.Failed = append(result.Failed, subscriber.Email)
      continue
    }
    result.Sent++
  }
  ns.log.Info("Newsletter batch complete", "sent", result.Sent, "failed", len(result.Failed))
  return result, nil
}
