package services

import (
  "context"
  "fmt"
  "net/mail"
  "github.com/google/uuid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/config"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type ContactInput struct {
  Name    string `json:"name"`
  Email   string `json:"email"`
  Subject string `json:"subject"`
  Message string `json:"message"`
}

type ContactService interface {
  Submit(ctx context.Context, input ContactInput) (*types.ContactSubmission, error)
  List(ctx context.Context) ([]*types.ContactSubmission, error)
}

type contactService struct {
  cfg         config.Config
  log         *logger.Logger
  contactRepo repos.ContactRepo
  mailer      MailerService
}

func NewContactService(cfg config.Config, log *logger.Logger, contactRepo repos.ContactRepo, mailer MailerService) ContactService {
  serviceLog := log.With("service", "ContactService")
  return &contactService{cfg: cfg, log: serviceLog, contactRepo: contactRepo, mailer: mailer}
}

func (cs *contactService) Submit(ctx context.Context, input ContactInput) (*types.ContactSubmission, error) {
  name := normalization.TrimOnly(input.Name)
  email := normalization.ParseInputString(input.Email)
  message := normalization.TrimOnly(input.Message)
  if name == "" || message == "" {
    return nil, apierr.Validation("name and message are required")
  }
  if _, mErr := mail.ParseAddress(email); mErr != nil {
    return nil, apierr.Validation("a valid email is required")
  }

  submission := &types.ContactSubmission{
    ID:      uuid.New(),
    Name:    name,
    Email:   email,
    Subject: normalization.TrimOnly(input.Subject),
    Message: message,
  }
  if _, cErr := cs.contactRepo.Create(ctx, nil, []*types.ContactSubmission{submission}); cErr != nil {
    cs.log.Warn("Failed to store contact submission", "error", cErr)
    return nil, apierr.Upstream(fmt.Errorf("failed to store contact submission: %w", cErr))
  }

  // Notify the allowlisted admins; the submission is already stored, so a
  // delivery failure is only logged.
  if cs.mailer != nil {
    for _, adminEmail := range cs.cfg.AdminEmails {
      if nErr := cs.mailer.SendContactNotice(ctx, adminEmail, submission); nErr != nil {
        cs.log.Warn("Contact notice email failed", "error", nErr)
      }
    }
  }
  return submission, nil
}

func (cs *contactService) List(ctx context.Context) ([]*types.ContactSubmission, error) {
  rd := requestdata.GetRequestData(ctx)
  if aErr := authz.RequireAdmin(rd); aErr != nil {
    return nil, aErr
  }
  submissions, err := cs.contactRepo.List(ctx, nil)
  if err != nil {
    cs.log.Warn("Failed to list contact submissions", "error", err)
    return nil, apierr.Upstream(err)
  }
  return submissions, nil
}
