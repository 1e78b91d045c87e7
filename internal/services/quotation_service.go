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

type QuotationInput struct {
  ProductID uuid.UUID `json:"product_id"`
  Quantity  int       `json:"quantity"`
  Message   string    `json:"message"`
}

type QuotationListing struct {
  Records []*types.Quotation `json:"records"`
  Stats   QuotationStats     `json:"stats"`
}

type QuotationStats struct {
  Total     int            `json:"total"`
  PerStatus map[string]int `json:"per_status"`
  Unread    int            `json:"unread"`
}

type QuotationService interface {
  Create(ctx context.Context, input QuotationInput) (*types.Quotation, error)
  List(ctx context.Context, role string) (*QuotationListing, error)
  Reply(ctx context.Context, quotationID uuid.UUID, reply string) (*types.Quotation, error)
  Reject(ctx context.Context, quotationID uuid.UUID) (*types.Quotation, error)
  MarkRead(ctx context.Context, quotationID uuid.UUID) error
  Accept(ctx context.Context, quotationID uuid.UUID) (*types.Order, error)
}

type quotationService struct {
  db            *gorm.DB
  log           *logger.Logger
  quotationRepo repos.QuotationRepo
  productRepo   repos.ProductRepo
  orderRepo     repos.OrderRepo
  userRepo      repos.UserRepo
  mailer        MailerService
}

func NewQuotationService(
  db *gorm.DB,
  log *logger.Logger,
  quotationRepo repos.QuotationRepo,
  productRepo repos.ProductRepo,
  orderRepo repos.OrderRepo,
  userRepo repos.UserRepo,
  mailer MailerService,
) QuotationService {
  serviceLog := log.With("service", "QuotationService")
  return &quotationService{
    db:            db,
    log:           serviceLog,
    quotationRepo: quotationRepo,
    productRepo:   productRepo,
    orderRepo:     orderRepo,
    userRepo:      userRepo,
    mailer:        mailer,
  }
}

func (qs *quotationService) Create(ctx context.Context, input QuotationInput) (*types.Quotation, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }
  if input.ProductID == uuid.Nil {
    return nil, apierr.Validation("product_id is required")
  }
  quantity := input.Quantity
  if quantity <= 0 {
    quantity = 1
  }

  products, pErr := qs.productRepo.GetByIDs(ctx, nil, []uuid.UUID{input.ProductID})
  if pErr != nil {
    qs.log.Warn("Failed to load product for quotation", "error", pErr)
    return nil, apierr.Upstream(pErr)
  }
  if len(products) == 0 || !products[0].IsVisible {
    return nil, apierr.NotFound("product not found")
  }
  product := products[0]
  if product.UserID == rd.UserID {
    return nil, apierr.Validation("cannot request a quotation on your own listing")
  }

  quotation := &types.Quotation{
    ID:        uuid.New(),
    BuyerID:   rd.UserID,
    SellerID:  product.UserID,
    ProductID: product.ID,
    Quantity:  quantity,
    Message:   normalization.TrimOnly(input.Message),
    Status:    types.QuotationStatusPending,
  }
  if _, cErr := qs.quotationRepo.Create(ctx, nil, []*types.Quotation{quotation}); cErr != nil {
    qs.log.Warn("Failed to create quotation", "error", cErr)
    return nil, apierr.Upstream(fmt.Errorf("failed to create quotation: %w", cErr))
  }
  return quotation, nil
}

func (qs *quotationService) List(ctx context.Context, role string) (*QuotationListing, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }

  var quotations []*types.Quotation
  var err error
  seller := false
  switch types.NormalizeStatus(role) {
  case "buyer":
    quotations, err = qs.quotationRepo.ListByBuyerIDs(ctx, nil, []uuid.UUID{rd.UserID})
  case "seller":
    quotations, err = qs.quotationRepo.ListBySellerIDs(ctx, nil, []uuid.UUID{rd.UserID})
    seller = true
  default:
    return nil, apierr.Validation("role must be buyer or seller")
  }
  if err != nil {
    qs.log.Warn("Failed to list quotations", "error", err, "role", role)
    return nil, apierr.Upstream(err)
  }

  // The read flag belongs to the seller's inbox; a buyer listing has no
  // unread notion, so the count stays zero there.
  unread := 0
  if seller {
    for _, q := range quotations {
      if !q.SellerRead {
        unread++
      }
    }
  }
  listing := &QuotationListing{
    Records: quotations,
    Stats: QuotationStats{
      Total:     aggregate.Total(quotations),
      PerStatus: aggregate.CountBy(quotations, func(q *types.Quotation) string { return types.NormalizeStatus(q.Status) }),
      Unread:    unread,
    },
  }
  return listing, nil
}

func (qs *quotationService) Reply(ctx context.Context, quotationID uuid.UUID, reply string) (*types.Quotation, error) {
  reply = normalization.TrimOnly(reply)
  if reply == "" {
    return nil, apierr.Validation("a reply is required")
  }
  quotation, err := qs.sellerTransition(ctx, quotationID, types.QuotationStatusPending, map[string]interface{}{
    "status": types.QuotationStatusReplied,
    "reply":  reply,
  })
  if err != nil {
    return nil, err
  }
  // Buyer notification is best-effort.
  if qs.mailer != nil {
    buyers, bErr := qs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{quotation.BuyerID})
    if bErr != nil || len(buyers) == 0 {
      qs.log.Warn("Could not load buyer for reply notice", "error", bErr)
    } else if mErr := qs.mailer.SendQuotationReply(ctx, buyers[0].Email, quotation); mErr != nil {
      qs.log.Warn("Quotation reply email failed", "error", mErr)
    }
  }
  return quotation, nil
}

func (qs *quotationService) Reject(ctx context.Context, quotationID uuid.UUID) (*types.Quotation, error) {
  return qs.sellerTransition(ctx, quotationID, types.QuotationStatusPending, map[string]interface{}{
    "status": types.QuotationStatusRejected,
  })
}

func (qs *quotationService) MarkRead(ctx context.Context, quotationID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  quotations, gErr := qs.quotationRepo.GetByIDs(ctx, nil, []uuid.UUID{quotationID})
  if gErr != nil {
    qs.log.Warn("Failed to load quotation for mark-read", "error", gErr)
    return apierr.Upstream(gErr)
  }
  if len(quotations) == 0 {
    return apierr.NotFound("quotation not found")
  }
  if aErr := authz.Require(rd, quotations[0].SellerID); aErr != nil {
    return aErr
  }
  if uErr := qs.quotationRepo.UpdateFields(ctx, nil, quotationID, map[string]interface{}{"seller_read": true}); uErr != nil {
    qs.log.Warn("Failed to mark quotation read", "error", uErr)
    return apierr.Upstream(uErr)
  }
  return nil
}

// Accept converts a replied quotation into an order. Both writes happen in
// one transaction against the same store, so a failure of either rolls back
// the other.
func (qs *quotationService) Accept(ctx context.Context, quotationID uuid.UUID) (*types.Order, error) {
  rd := requestdata.GetRequestData(ctx)

  var order *types.Order
  err := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    quotations, gErr := qs.quotationRepo.GetByIDs(ctx, tx, []uuid.UUID{quotationID})
    if gErr != nil {
      return fmt.Errorf("failed to load quotation: %w", gErr)
    }
    if len(quotations) == 0 {
      return apierr.NotFound("quotation not found")
    }
    quotation := quotations[0]
    if aErr := authz.Require(rd, quotation.BuyerID); aErr != nil {
      return aErr
    }
    if types.NormalizeStatus(quotation.Status) != types.QuotationStatusReplied {
      return apierr.Validation("only replied quotations can be accepted")
    }

    products, pErr := qs.productRepo.GetByIDs(ctx, tx, []uuid.UUID{quotation.ProductID})
    if pErr != nil {
      return fmt.Errorf("failed to load product for acceptance: %w", pErr)
    }
    if len(products) == 0 {
      return apierr.NotFound("product no longer exists")
    }
    product := products[0]

    order = &types.Order{
      ID:         uuid.New(),
      BuyerID:    quotation.BuyerID,
      SellerID:   quotation.SellerID,
      ProductID:  quotation.ProductID,
      Quantity:   quotation.Quantity,
      TotalPrice: product.Price * float64(quotation.Quantity),
      Status:     types.OrderStatusPending,
    }
    if _, cErr := qs.orderRepo.Create(ctx, tx, []*types.Order{order}); cErr != nil {
      return fmt.Errorf("failed to create order from quotation: %w", cErr)
    }
    if uErr := qs.quotationRepo.UpdateFields(ctx, tx, quotationID, map[string]interface{}{
      "status": types.QuotationStatusAccepted,
    }); uErr != nil {
      return fmt.Errorf("failed to mark quotation accepted: %w", uErr)
    }
    return nil
  })
  if err != nil {
    if apierr.StatusOf(err) != 500 {
      return nil, err
    }
    qs.log.Warn("Quotation acceptance failed", "error", err)
    return nil, apierr.Upstream(err)
  }
  return order, nil
}

func (qs *quotationService) sellerTransition(ctx context.Context, quotationID uuid.UUID, fromStatus string, fields map[string]interface{}) (*types.Quotation, error) {
  rd := requestdata.GetRequestData(ctx)

  var updated *types.Quotation
  err := qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    quotations, gErr := qs.quotationRepo.GetByIDs(ctx, tx, []uuid.UUID{quotationID})
    if gErr != nil {
      return fmt.Errorf("failed to load quotation: %w", gErr)
    }
    if len(quotations) == 0 {
      return apierr.NotFound("quotation not found")
    }
    quotation := quotations[0]
    if aErr := authz.Require(rd, quotation.SellerID); aErr != nil {
      return aErr
    }
    if types.NormalizeStatus(quotation.Status) != fromStatus {
      return apierr.Validation("quotation is not %s", fromStatus)
    }
    fields["seller_read"] = true
    if uErr := qs.quotationRepo.UpdateFields(ctx, tx, quotationID, fields); uErr != nil {
      return fmt.Errorf("failed to update quotation: %w", uErr)
    }
    reloaded, rErr := qs.quotationRepo.GetByIDs(ctx, tx, []uuid.UUID{quotationID})
    if rErr != nil || len(reloaded) == 0 {
      return fmt.Errorf("failed to reload quotation: %w", rErr)
    }
    updated = reloaded[0]
    return nil
  })
  if err != nil {
    if apierr.StatusOf(err) != 500 {
      return nil, err
    }
    qs.log.Warn("Quotation transition failed", "error", err)
    return nil, apierr.Upstream(err)
  }
  return updated, nil
}
