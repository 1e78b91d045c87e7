package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type OrderRepo interface {
  Create(ctx context.Context, tx *gorm.DB, orders []*types.Order) ([]*types.Order, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Order, error)
  ListByBuyerIDs(ctx context.Context, tx *gorm.DB, buyerIDs []uuid.UUID) ([]*types.Order, error)
  ListBySellerIDs(ctx context.Context, tx *gorm.DB, sellerIDs []uuid.UUID) ([]*types.Order, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Order, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, fields map[string]interface{}) error
  MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID, readColumn, ownerColumn string) (int64, error)
  Delete(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) error
}

type orderRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
  repoLog := baseLog.With("repo", "OrderRepo")
  return &orderRepo{db: db, log: repoLog}
}

func (or *orderRepo) Create(ctx context.Context, tx *gorm.DB, orders []*types.Order) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  if len(orders) == 0 {
    return []*types.Order{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&orders).Error; err != nil {
    return nil, err
  }
  return orders, nil
}

func (or *orderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  var results []*types.Order
  if len(orderIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", orderIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) ListByBuyerIDs(ctx context.Context, tx *gorm.DB, buyerIDs []uuid.UUID) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  var results []*types.Order
  if len(buyerIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("buyer_id IN ?", buyerIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) ListBySellerIDs(ctx context.Context, tx *gorm.DB, sellerIDs []uuid.UUID) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  var results []*types.Order
  if len(sellerIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("seller_id IN ?", sellerIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Order, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  var results []*types.Order
  if err := transaction.WithContext(ctx).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (or *orderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.Order{}).
    Where("id = ?", orderID).
    Updates(fields).Error
}

// MarkAllRead flips the given read column for every order where ownerColumn
// matches userID. The column names are fixed by the callers (buyer_read/
// buyer_id or seller_read/seller_id), never caller input.
func (or *orderRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID, readColumn, ownerColumn string) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Order{}).
    Where(ownerColumn+" = ? AND "+readColumn+" = ?", userID, false).
    Update(readColumn, true)
  if res.Error != nil {
    return 0, res.Error
  }
  return res.RowsAffected, nil
}

func (or *orderRepo) Delete(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = or.db
  }

  if len(orderIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("id IN ?", orderIDs).
    Delete(&types.Order{}).Error
}
