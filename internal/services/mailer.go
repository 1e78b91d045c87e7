package services

import (
  "context"
  "fmt"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/sendgrid"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

// MailerService wraps the SendGrid client with the handful of messages this
// app sends. Callers decide whether delivery failure matters; most treat it
// as best-effort.
type MailerService interface {
  SendWelcome(ctx context.Context, user *types.User) error
  SendContactNotice(ctx context.Context, adminEmail string, submission *types.ContactSubmission) error
  SendQuotationReply(ctx context.Context, buyerEmail string, quotation *types.Quotation) error
  SendNewsletter(ctx context.Context, recipient, subject, body string) error
}

type mailerService struct {
  log    *logger.Logger
  client sendgrid.Client
}

func NewMailerService(log *logger.Logger, client sendgrid.Client) MailerService {
  serviceLog := log.With("service", "MailerService")
  return &mailerService{log: serviceLog, client: client}
}

func (ms *mailerService) SendWelcome(ctx context.Context, user *types.User) error {
  if ms.client == nil {
    return fmt.Errorf("mailer not configured")
  }
  _, err := ms.client.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: user.Email, Name: user.CompanyName}},
    Subject: "Welcome to Agrilpa",
    Text:    fmt.Sprintf("Hello %s,\n\nYour Agrilpa account is ready. You can now list products and request quotations.\n", user.CompanyName),
  })
  return err
}

func (ms *mailerService) SendContactNotice(ctx context.Context, adminEmail string, submission *types.ContactSubmission) error {
  if ms.client == nil {
    return fmt.Errorf("mailer not configured")
  }
  _, err := ms.client.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: adminEmail}},
    ReplyTo: &sendgrid.EmailAddress{Email: submission.Email, Name: submission.Name},
    Subject: fmt.Sprintf("New contact submission: %s", submission.Subject),
    Text:    fmt.Sprintf("From: %s <%s>\n\n%s\n", submission.Name, submission.Email, submission.Message),
  })
  return err
}

func (ms *mailerService) SendQuotationReply(ctx context.Context, buyerEmail string, quotation *types.Quotation) error {
  if ms.client == nil {
    return fmt.Errorf("mailer not configured")
  }
  _, err := ms.client.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: buyerEmail}},
    Subject: "A seller replied to your quotation request",
    Text:    fmt.Sprintf("Your quotation request has a reply:\n\n%s\n\nLog in to your dashboard to review it.\n", quotation.Reply),
  })
  return err
}

func (ms *mailerService) SendNewsletter(ctx context.Context, recipient, subject, body string) error {
  if ms.client == nil {
    return fmt.Errorf("mailer not configured")
  }
  _, err := ms.client.Send(ctx, sendgrid.SendEmailRequest{
    To:      []sendgrid.EmailAddress{{Email: recipient}},
    Subject: subject,
    HTML:    body,
  })
  return err
}
