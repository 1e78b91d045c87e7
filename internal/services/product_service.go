package services

import (
  "context"
  "fmt"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/aggregate"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/normalization"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type ProductInput struct {
  Title       string  `json:"title"`
  Description string  `json:"description"`
  Category    string  `json:"category"`
  Price       float64 `json:"price"`
  Quantity    int     `json:"quantity"`
  Unit        string  `json:"unit"`
  ImageURL    string  `json:"image_url"`
  IsVisible   *bool   `json:"is_visible"`
}

type ProductUpdate struct {
  Title       *string  `json:"title"`
  Description *string  `json:"description"`
  Category    *string  `json:"category"`
  Price       *float64 `json:"price"`
  Quantity    *int     `json:"quantity"`
  Unit        *string  `json:"unit"`
  ImageURL    *string  `json:"image_url"`
  IsVisible   *bool    `json:"is_visible"`
}

// PublicProduct is a listing row joined in memory with the seller's public
// company info.
type PublicProduct struct {
  *types.Product
  SellerCompany string `json:"seller_company"`
  SellerCountry string `json:"seller_country"`
}

type ProductListing struct {
  Records []*types.Product `json:"records"`
  Stats   ProductStats     `json:"stats"`
}

type ProductStats struct {
  Total       int            `json:"total"`
  PerCategory map[string]int `json:"per_category"`
}

type ProductService interface {
  Create(ctx context.Context, input ProductInput) (*types.Product, error)
  Update(ctx context.Context, productID uuid.UUID, update ProductUpdate) (*types.Product, error)
  Delete(ctx context.Context, productID uuid.UUID) error
  ListMine(ctx context.Context) (*ProductListing, error)
  ListVisible(ctx context.Context) ([]*PublicProduct, error)
  IncrementViews(ctx context.Context, productID uuid.UUID) error
  SetStaticVisibility(ctx context.Context, productID string, isVisible bool) (*types.StaticProductVisibility, error)
}

type productService struct {
  db          *gorm.DB
  log         *logger.Logger
  productRepo repos.ProductRepo
  userRepo    repos.UserRepo
  staticRepo  repos.StaticVisibilityRepo
}

func NewProductService(
  db *gorm.DB,
  log *logger.Logger,
  productRepo repos.ProductRepo,
  userRepo repos.UserRepo,
  staticRepo repos.StaticVisibilityRepo,
) ProductService {
  serviceLog := log.With("service", "ProductService")
  return &productService{
    db:          db,
    log:         serviceLog,
    productRepo: productRepo,
    userRepo:    userRepo,
    staticRepo:  staticRepo,
  }
}

func (ps *productService) Create(ctx context.Context, input ProductInput) (*types.Product, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }

  title := normalization.TrimOnly(input.Title)
  if title == "" {
    return nil, apierr.Validation("a title is required")
  }
  if input.Price < 0 {
    return nil, apierr.Validation("price cannot be negative")
  }
  if input.Quantity < 0 {
    return nil, apierr.Validation("quantity cannot be negative")
  }

  visible := true
  if input.IsVisible != nil {
    visible = *input.IsVisible
  }

  product := &types.Product{
    ID:          uuid.New(),
    UserID:      rd.UserID,
    Title:       title,
    Description: normalization.TrimOnly(input.Description),
    Category:    normalization.ParseInputString(input.Category),
    Price:       input.Price,
    Quantity:    input.Quantity,
    Unit:        normalization.ParseInputString(input.Unit),
    ImageURL:    normalization.TrimOnly(input.ImageURL),
    IsVisible:   visible,
  }

  err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if visible {
      count, cErr := ps.productRepo.CountVisibleByUser(ctx, tx, rd.UserID)
      if cErr != nil {
        return fmt.Errorf("failed to count active listings: %w", cErr)
      }
      if count >= types.MaxActiveListings {
        return apierr.Validation("maximum of %d active listings reached", types.MaxActiveListings)
      }
    }
    if _, crErr := ps.productRepo.Create(ctx, tx, []*types.Product{product}); crErr != nil {
      return fmt.Errorf("failed to create product: %w", crErr)
    }
    return nil
  })
  if err != nil {
    if apierr.StatusOf(err) != 500 {
      return nil, err
    }
    ps.log.Warn("Product create failed", "error", err, "user_id", rd.UserID)
    return nil, apierr.Upstream(err)
  }
  return product, nil
}

func (ps *productService) Update(ctx context.Context, productID uuid.UUID, update ProductUpdate) (*types.Product, error) {
  rd := requestdata.GetRequestData(ctx)

  var updated *types.Product
  err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    products, gErr := ps.productRepo.GetByIDs(ctx, tx, []uuid.UUID{productID})
    if gErr != nil {
      return fmt.Errorf("failed to load product: %w", gErr)
    }
    if len(products) == 0 {
      return apierr.NotFound("product not found")
    }
    product := products[0]
    if aErr := authz.Require(rd, product.UserID); aErr != nil {
      return aErr
    }

    fields := map[string]interface{}{}
    if update.Title != nil {
      v := normalization.TrimOnly(*update.Title)
      if v == "" {
        return apierr.Validation("title cannot be empty")
      }
      fields["title"] = v
    }
    if update.Description != nil {
      fields["description"] = normalization.TrimOnly(*update.Description)
    }
    if update.Category != nil {
      fields["category"] = normalization.ParseInputString(*update.Category)
    }
    if update.Price != nil {
      if *update.Price < 0 {
        return apierr.Validation("price cannot be negative")
      }
      fields["price"] = *update.Price
    }
    if update.Quantity != nil {
      if *update.Quantity < 0 {
        return apierr.Validation("quantity cannot be negative")
      }
      fields["quantity"] = *update.Quantity
    }
    if update.Unit != nil {
      fields["unit"] = normalization.ParseInputString(*update.Unit)
    }
    if update.ImageURL != nil {
      fields["image_url"] = normalization.TrimOnly(*update.ImageURL)
    }
    if update.IsVisible != nil {
      if *update.IsVisible && !product.IsVisible {
        count, cErr := ps.productRepo.CountVisibleByUser(ctx, tx, product.UserID)
        if cErr != nil {
          return fmt.Errorf("failed to count active listings: %w", cErr)
        }
        if count >= types.MaxActiveListings {
          return apierr.Validation("maximum of %d active listings reached", types.MaxActiveListings)
        }
      }
      fields["is_visible"] = *update.IsVisible
    }
    if len(fields) == 0 {
      return apierr.Validation("no product fields to update")
    }

    if uErr := ps.productRepo.UpdateFields(ctx, tx, productID, fields); uErr != nil {
      return fmt.Errorf("failed to update product: %w", uErr)
    }
    reloaded, rErr := ps.productRepo.GetByIDs(ctx, tx, []uuid.UUID{productID})
    if rErr != nil || len(reloaded) == 0 {
      return fmt.Errorf("failed to reload product: %w", rErr)
    }
    updated = reloaded[0]
    return nil
  })
  if err != nil {
    if apierr.StatusOf(err) != 500 {
      return nil, err
    }
    ps.log.Warn("Product update failed", "error", err, "user_id", rdUserID(rd))
    return nil, apierr.Upstream(err)
  }
  return updated, nil
}

func (ps *productService) Delete(ctx context.Context, productID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)

  products, gErr := ps.productRepo.GetByIDs(ctx, nil, []uuid.UUID{productID})
  if gErr != nil {
    ps.log.Warn("Failed to load product for delete", "error", gErr)
    return apierr.Upstream(gErr)
  }
  if len(products) == 0 {
    return apierr.NotFound("product not found")
  }
  if aErr := authz.Require(rd, products[0].UserID); aErr != nil {
    return aErr
  }
  if dErr := ps.productRepo.Delete(ctx, nil, []uuid.UUID{productID}); dErr != nil {
    ps.log.Warn("Failed to delete product", "error", dErr)
    return apierr.Upstream(dErr)
  }
  return nil
}

func (ps *productService) ListMine(ctx context.Context) (*ProductListing, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }
  products, err := ps.productRepo.GetByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
  if err != nil {
    ps.log.Warn("Failed to list own products", "error", err)
    return nil, apierr.Upstream(err)
  }
  listing := &ProductListing{
    Records: products,
    Stats: ProductStats{
      Total:       aggregate.Total(products),
      PerCategory: aggregate.CountBy(products, func(p *types.Product) string { return p.Category }),
    },
  }
  return listing, nil
}

func (ps *productService) ListVisible(ctx context.Context) ([]*PublicProduct, error) {
  products, err := ps.productRepo.ListVisible(ctx, nil)
  if err != nil {
    ps.log.Warn("Failed to list visible products", "error", err)
    return nil, apierr.Upstream(err)
  }

  sellerIDs := make([]uuid.UUID, 0, len(products))
  seen := map[uuid.UUID]bool{}
  for _, p := range products {
    if !seen[p.UserID] {
      seen[p.UserID] = true
      sellerIDs = append(sellerIDs, p.UserID)
    }
  }
  sellers, uErr := ps.userRepo.GetByIDs(ctx, nil, sellerIDs)
  if uErr != nil {
    ps.log.Warn("Failed to load sellers for listing", "error", uErr)
    return nil, apierr.Upstream(uErr)
  }
  byID := make(map[uuid.UUID]*types.User, len(sellers))
  for _, s := range sellers {
    byID[s.ID] = s
  }

  out := make([]*PublicProduct, 0, len(products))
  for _, p := range products {
    pp := &PublicProduct{Product: p}
    if s, ok := byID[p.UserID]; ok {
      pp.SellerCompany = s.CompanyName
      pp.SellerCountry = s.Country
    }
    out = append(out, pp)
  }
  return out, nil
}

// IncrementViews is read-then-write on purpose: concurrent viewers may lose
// an increment, which the counter tolerates.
func (ps *productService) IncrementViews(ctx context.Context, productID uuid.UUID) error {
  products, gErr := ps.productRepo.GetByIDs(ctx, nil, []uuid.UUID{productID})
  if gErr != nil {
    ps.log.Warn("View increment load failed", "error", gErr, "product_id", productID)
    return nil
  }
  if len(products) == 0 {
    return nil
  }
  next := products[0].Views + 1
  if uErr := ps.productRepo.UpdateFields(ctx, nil, productID, map[string]interface{}{"views": next}); uErr != nil {
    ps.log.Warn("View increment write failed", "error", uErr, "product_id", productID)
  }
  return nil
}

func (ps *productService) SetStaticVisibility(ctx context.Context, productID string, isVisible bool) (*types.StaticProductVisibility, error) {
  rd := requestdata.GetRequestData(ctx)
  if err := authz.RequireAdmin(rd); err != nil {
    return nil, err
  }
  productID = normalization.TrimOnly(productID)
  if productID == "" {
    return nil, apierr.Validation("productId is required")
  }
  record, err := ps.staticRepo.Upsert(ctx, nil, productID, isVisible)
  if err != nil {
    ps.log.Warn("Static visibility upsert failed", "error", err, "static_product", productID)
    return nil, apierr.Upstream(err)
  }
  return record, nil
}

func rdUserID(rd *requestdata.RequestData) uuid.UUID {
  if rd == nil {
    return uuid.Nil
  }
  return rd.UserID
}
