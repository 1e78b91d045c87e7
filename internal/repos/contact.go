package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type ContactRepo interface {
  Create(ctx context.Context, tx *gorm.DB, submissions []*types.ContactSubmission) ([]*types.ContactSubmission, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.ContactSubmission, error)
}

type contactRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewContactRepo(db *gorm.DB, baseLog *logger.Logger) ContactRepo {
  repoLog := baseLog.With("repo", "ContactRepo")
  return &contactRepo{db: db, log: repoLog}
}

func (cr *contactRepo) Create(ctx context.Context, tx *gorm.DB, submissions []*types.ContactSubmission) ([]*types.ContactSubmission, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if len(submissions) == 0 {
    return []*types.ContactSubmission{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&submissions).Error; err != nil {
    return nil, err
  }
  return submissions, nil
}

func (cr *contactRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ContactSubmission, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var results []*types.ContactSubmission
  if err := transaction.WithContext(ctx).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
