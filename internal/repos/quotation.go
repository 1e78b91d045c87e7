package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type QuotationRepo interface {
  Create(ctx context.Context, tx *gorm.DB, quotations []*types.Quotation) ([]*types.Quotation, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, quotationIDs []uuid.UUID) ([]*types.Quotation, error)
  ListByBuyerIDs(ctx context.Context, tx *gorm.DB, buyerIDs []uuid.UUID) ([]*types.Quotation, error)
  ListBySellerIDs(ctx context.Context, tx *gorm.DB, sellerIDs []uuid.UUID) ([]*types.Quotation, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Quotation, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, quotationID uuid.UUID, fields map[string]interface{}) error
}

type quotationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewQuotationRepo(db *gorm.DB, baseLog *logger.Logger) QuotationRepo {
  repoLog := baseLog.With("repo", "QuotationRepo")
  return &quotationRepo{db: db, log: repoLog}
}

func (qr *quotationRepo) Create(ctx context.Context, tx *gorm.DB, quotations []*types.Quotation) ([]*types.Quotation, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }

  if len(quotations) == 0 {
    return []*types.Quotation{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&quotations).Error; err != nil {
    return nil, err
  }
  return quotations, nil
}

func (qr *quotationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, quotationIDs []uuid.UUID) ([]*types.Quotation, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }

  var results []*types.Quotation
  if len(quotationIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", quotationIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (qr *quotationRepo) ListByBuyerIDs(ctx context.Context, tx *gorm.DB, buyerIDs []uuid.UUID) ([]*types.Quotation, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }

  var results []*types.Quotation
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

func (qr *quotationRepo) ListBySellerIDs(ctx context.Context, tx *gorm.DB, sellerIDs []uuid.UUID) ([]*types.Quotation, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }

  var results []*types.Quotation
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

func (qr *quotationRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Quotation, error) {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }

  var results []*types.Quotation
  if err := transaction.WithContext(ctx).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (qr *quotationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, quotationID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = qr.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.Quotation{}).
    Where("id = ?", quotationID).
    Updates(fields).Error
}
