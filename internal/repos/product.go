package repos

import (
  "context"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "gorm.io/gorm/clause"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type ProductRepo interface {
  Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error)
  GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Product, error)
  ListVisible(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.Product, error)
  CountVisibleByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, productID uuid.UUID, fields map[string]interface{}) error
  Delete(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error
}

type productRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
  repoLog := baseLog.With("repo", "ProductRepo")
  return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(products) == 0 {
    return []*types.Product{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
    return nil, err
  }
  return products, nil
}

func (pr *productRepo) GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Product
  if len(productIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("id IN ?", productIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *productRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Product
  if len(userIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("user_id IN ?", userIDs).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *productRepo) ListVisible(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Product
  if err := transaction.WithContext(ctx).
    Where("is_visible = ?", true).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *productRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var results []*types.Product
  if err := transaction.WithContext(ctx).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (pr *productRepo) CountVisibleByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  var count int64
  if err := transaction.WithContext(ctx).
    Model(&types.Product{}).
    Where("user_id = ? AND is_visible = ?", userID, true).
    Count(&count).Error; err != nil {
    return 0, err
  }
  return count, nil
}

func (pr *productRepo) UpdateFields(ctx context.Context, tx *gorm.DB, productID uuid.UUID, fields map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(fields) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Model(&types.Product{}).
    Where("id = ?", productID).
    Updates(fields).Error
}

func (pr *productRepo) Delete(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = pr.db
  }

  if len(productIDs) == 0 {
    return nil
  }

  return transaction.WithContext(ctx).
    Where("id IN ?", productIDs).
    Delete(&types.Product{}).Error
}

type StaticVisibilityRepo interface {
  Upsert(ctx context.Context, tx *gorm.DB, productID string, isVisible bool) (*types.StaticProductVisibility, error)
  GetByProductIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*types.StaticProductVisibility, error)
  List(ctx context.Context, tx *gorm.DB) ([]*types.StaticProductVisibility, error)
}

type staticVisibilityRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewStaticVisibilityRepo(db *gorm.DB, baseLog *logger.Logger) StaticVisibilityRepo {
  repoLog := baseLog.With("repo", "StaticVisibilityRepo")
  return &staticVisibilityRepo{db: db, log: repoLog}
}

func (sv *staticVisibilityRepo) Upsert(ctx context.Context, tx *gorm.DB, productID string, isVisible bool) (*types.StaticProductVisibility, error) {
  transaction := tx
  if transaction == nil {
    transaction = sv.db
  }

  record := &types.StaticProductVisibility{
    ID:        uuid.New(),
    ProductID: productID,
    IsVisible: isVisible,
  }
  if err := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "product_id"}},
      DoUpdates: clause.AssignmentColumns([]string{"is_visible", "updated_at"}),
    }).
    Create(record).Error; err != nil {
    return nil, err
  }
  return record, nil
}

func (sv *staticVisibilityRepo) GetByProductIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*types.StaticProductVisibility, error) {
  transaction := tx
  if transaction == nil {
    transaction = sv.db
  }

  var results []*types.StaticProductVisibility
  if len(productIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("product_id IN ?", productIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (sv *staticVisibilityRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.StaticProductVisibility, error) {
  transaction := tx
  if transaction == nil {
    transaction = sv.db
  }

  var results []*types.StaticProductVisibility
  if err := transaction.WithContext(ctx).
    Order("product_id ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
