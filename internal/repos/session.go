package repos

import (
  "context"
  "time"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type SessionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error)
  GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.Session, error)
  GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.Session, error)
  DeleteBySessions(ctx context.Context, tx *gorm.DB, sessions []*types.Session) error
  DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
  DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type sessionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
  repoLog := baseLog.With("repo", "SessionRepo")
  return &sessionRepo{db: db, log: repoLog}
}

func (sr *sessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(sessions) == 0 {
    return []*types.Session{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
    return nil, err
  }
  return sessions, nil
}

func (sr *sessionRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.Session, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Session
  if len(accessTokens) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("access_token IN ?", accessTokens).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *sessionRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.Session, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  var results []*types.Session
  if len(refreshTokens) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("refresh_token IN ?", refreshTokens).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sr *sessionRepo) DeleteBySessions(ctx context.Context, tx *gorm.DB, sessions []*types.Session) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(sessions) == 0 {
    return nil
  }

  ids := make([]uuid.UUID, 0, len(sessions))
  for _, s := range sessions {
    if s != nil {
      ids = append(ids, s.ID)
    }
  }
  if len(ids) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("id IN ?", ids).
    Delete(&types.Session{}).Error
}

func (sr *sessionRepo) DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  if len(userIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Delete(&types.Session{}).Error
}

func (sr *sessionRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }

  res := transaction.WithContext(ctx).
    Where("expires_at < ?", now).
    Delete(&types.Session{})
  if res.Error != nil {
    return 0, res.Error
  }
  return res.RowsAffected, nil
}
