package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type NewsletterRepo interface {
  Create(ctx context.Context, tx *gorm.DB, subscribers []*types.NewsletterSubscriber) ([]*types.NewsletterSubscriber, error)
  EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.NewsletterSubscriber, error)
}

type newsletterRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewNewsletterRepo(db *gorm.DB, baseLog *logger.Logger) NewsletterRepo {
  repoLog := baseLog.With("repo", "NewsletterRepo")
  return &newsletterRepo{db: db, log: repoLog}
}

func (nr *newsletterRepo) Create(ctx context.Context, tx *gorm.DB, subscribers []*types.NewsletterSubscriber) ([]*types.NewsletterSubscriber, error) {
  transaction := tx
  if transaction == nil {
    transaction = nr.db
  }

  if len(subscribers) == 0 {
    return []*types.NewsletterSubscriber{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&subscribers).Error; err != nil {
    return nil, err
  }
  return subscribers, nil
}

func (nr *newsletterRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  transaction := tx
  if transaction == nil {
    transaction = nr.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.NewsletterSubscriber{}).
    Where("email = ?", email).
    Count(&count).Error; err != nil {
    return false, err
  }
  return count > 0, nil
}

func (nr *newsletterRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.NewsletterSubscriber, error) {
  transaction := tx
  if transaction == nil {
    transaction = nr.db
  }

  var results []*types.NewsletterSubscriber
  if err := transaction.WithContext(ctx).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
