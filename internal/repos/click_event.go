package repos

import (
  "context"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

// ClickEventRepo is intentionally append-only: the table has no update or
// delete path.
type ClickEventRepo interface {
  Create(ctx context.Context, tx *gorm.DB, events []*types.ClickEvent) ([]*types.ClickEvent, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.ClickEvent, error)
}

type clickEventRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewClickEventRepo(db *gorm.DB, baseLog *logger.Logger) ClickEventRepo {
  repoLog := baseLog.With("repo", "ClickEventRepo")
  return &clickEventRepo{db: db, log: repoLog}
}

func (cr *clickEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.ClickEvent) ([]*types.ClickEvent, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  if len(events) == 0 {
    return []*types.ClickEvent{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
    return nil, err
  }
  return events, nil
}

func (cr *clickEventRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ClickEvent, error) {
  transaction := tx
  if transaction == nil {
    transaction = cr.db
  }

  var results []*types.ClickEvent
  if err := transaction.WithContext(ctx).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
