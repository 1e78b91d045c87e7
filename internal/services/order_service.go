package services

import (
  "context"
  "fmt"
  "github.com/google/uuid"
  "gorm.io/gorm"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/aggregate"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type OrderInput struct {
  ProductID uuid.UUID `json:"product_id"`
  Quantity  int       `json:"quantity"`
}

type OrderListing struct {
  Records []*types.Order `json:"records"`
  Stats   OrderStats     `json:"stats"`
}

type OrderStats struct {
  Total     int            `json:"total"`
  PerStatus map[string]int `json:"per_status"`
  Unread    int            `json:"unread"`
}

type OrderService interface {
  Create(ctx context.Context, input OrderInput) (*types.Order, error)
  List(ctx context.Context, role string) (*OrderListing, error)
  Get(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
  UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*types.Order, error)
  MarkRead(ctx context.Context, orderID uuid.UUID) error
  MarkAllRead(ctx context.Context, role string) (int64, error)
}

type orderService struct {
  db          *gorm.DB
  log         *logger.Logger
  orderRepo   repos.OrderRepo
  productRepo repos.ProductRepo
}

func NewOrderService(db *gorm.DB, log *logger.Logger, orderRepo repos.OrderRepo, productRepo repos.ProductRepo) OrderService {
  serviceLog := log.With("service", "OrderService")
  return &orderService{db: db, log: serviceLog, orderRepo: orderRepo, productRepo: productRepo}
}

func (os *orderService) Create(ctx context.Context, input OrderInput) (*types.Order, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }
  if input.ProductID == uuid.Nil {
    return nil, apierr.Validation("product_id is required")
  }
  if input.Quantity <= 0 {
    return nil, apierr.Validation("quantity must be positive")
  }

  products, pErr := os.productRepo.GetByIDs(ctx, nil, []uuid.UUID{input.ProductID})
  if pErr != nil {
    os.log.Warn("Failed to load product for order", "error", pErr)
    return nil, apierr.Upstream(pErr)
  }
  if len(products) == 0 || !products[0].IsVisible {
    return nil, apierr.NotFound("product not found")
  }
  product := products[0]
  if product.UserID == rd.UserID {
    return nil, apierr.Validation("cannot order your own listing")
  }

  order := &types.Order{
    ID:         uuid.New(),
    BuyerID:    rd.UserID,
    SellerID:   product.UserID,
    ProductID:  product.ID,
    Quantity:   input.Quantity,
    TotalPrice: product.Price * float64(input.Quantity),
    Status:     types.OrderStatusPending,
  }
  if _, cErr := os.orderRepo.Create(ctx, nil, []*types.Order{order}); cErr != nil {
    os.log.Warn("Failed to create order", "error", cErr)
    return nil, apierr.Upstream(fmt.Errorf("failed to create order: %w", cErr))
  }
  return order, nil
}

func (os *orderService) List(ctx context.Context, role string) (*OrderListing, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return nil, apierr.Unauthorized("no authenticated identity")
  }

  var orders []*types.Order
  var err error
  var readFn func(o *types.Order) bool
  switch types.NormalizeStatus(role) {
  case "buyer":
    orders, err = os.orderRepo.ListByBuyerIDs(ctx, nil, []uuid.UUID{rd.UserID})
    readFn = func(o *types.Order) bool { return o.BuyerRead }
  case "seller":
    orders, err = os.orderRepo.ListBySellerIDs(ctx, nil, []uuid.UUID{rd.UserID})
    readFn = func(o *types.Order) bool { return o.SellerRead }
  default:
    return nil, apierr.Validation("role must be buyer or seller")
  }
  if err != nil {
    os.log.Warn("Failed to list orders", "error", err, "role", role)
    return nil, apierr.Upstream(err)
  }

  unread := 0
  for _, o := range orders {
    if !readFn(o) {
      unread++
    }
  }
  listing := &OrderListing{
    Records: orders,
    Stats: OrderStats{
      Total:     aggregate.Total(orders),
      PerStatus: aggregate.CountBy(orders, func(o *types.Order) string { return types.NormalizeStatus(o.Status) }),
      Unread:    unread,
    },
  }
  return listing, nil
}

func (os *orderService) Get(ctx context.Context, orderID uuid.UUID) (*types.Order, error) {
  rd := requestdata.GetRequestData(ctx)
  orders, err := os.orderRepo.GetByIDs(ctx, nil, []uuid.UUID{orderID})
  if err != nil {
    os.log.Warn("Failed to load order", "error", err)
    return nil, apierr.Upstream(err)
  }
  if len(orders) == 0 {
    return nil, apierr.NotFound("order not found")
  }
  order := orders[0]
  if aErr := authz.Require(rd, order.BuyerID, order.SellerID); aErr != nil {
    return nil, aErr
  }
  return order, nil
}

// UpdateStatus enforces the party rules: a buyer may only cancel a pending
// order, a seller may advance it, an admin may set anything valid.
func (os *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*types.Order, error) {
  rd := requestdata.GetRequestData(ctx)
  status = types.NormalizeStatus(status)
  if !types.ValidOrderStatus(status) {
    return nil, apierr.Validation("invalid order status")
  }

  var updated *types.Order
  err := os.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    orders, gErr := os.orderRepo.GetByIDs(ctx, tx, []uuid.UUID{orderID})
    if gErr != nil {
      return fmt.Errorf("failed to load order: %w", gErr)
    }
    if len(orders) == 0 {
      return apierr.NotFound("order not found")
    }
    order := orders[0]
    if aErr := authz.Require(rd, order.BuyerID, order.SellerID); aErr != nil {
      return aErr
    }

    if !rd.IsAdmin() {
      current := types.NormalizeStatus(order.Status)
      switch {
      case rd.UserID == order.BuyerID:
        if status != types.OrderStatusCancelled || current != types.OrderStatusPending {
          return apierr.Forbidden("buyers may only cancel pending orders")
        }
      case rd.UserID == order.SellerID:
        if status == types.OrderStatusCancelled {
          return apierr.Forbidden("sellers cannot cancel orders")
        }
      }
    }

    fields := map[string]interface{}{
      "status": status,
      // A status change is news to both parties.
      "buyer_read":  false,
      "seller_read": false,
    }
    if uErr := os.orderRepo.UpdateFields(ctx, tx, orderID, fields); uErr != nil {
      return fmt.Errorf("failed to update order status: %w", uErr)
    }
    reloaded, rErr := os.orderRepo.GetByIDs(ctx, tx, []uuid.UUID{orderID})
    if rErr != nil || len(reloaded) == 0 {
      return fmt.Errorf("failed to reload order: %w", rErr)
    }
    updated = reloaded[0]
    return nil
  })
  if err != nil {
    if apierr.StatusOf(err) != 500 {
      return nil, err
    }
    os.log.Warn("Order status update failed", "error", err)
    return nil, apierr.Upstream(err)
  }
  return updated, nil
}

// MarkRead flips the caller's own read flag; a party can never mark the
// other side's copy.
func (os *orderService) MarkRead(ctx context.Context, orderID uuid.UUID) error {
  rd := requestdata.GetRequestData(ctx)
  orders, gErr := os.orderRepo.GetByIDs(ctx, nil, []uuid.UUID{orderID})
  if gErr != nil {
    os.log.Warn("Failed to load order for mark-read", "error", gErr)
    return apierr.Upstream(gErr)
  }
  if len(orders) == 0 {
    return apierr.NotFound("order not found")
  }
  order := orders[0]
  if aErr := authz.Require(rd, order.BuyerID, order.SellerID); aErr != nil {
    return aErr
  }

  var column string
  switch rd.UserID {
  case order.BuyerID:
    column = "buyer_read"
  case order.SellerID:
    column = "seller_read"
  default:
    // Admin without a party role has no read flag of its own.
    return apierr.Validation("caller is not a party to this order")
  }
  if uErr := os.orderRepo.UpdateFields(ctx, nil, orderID, map[string]interface{}{column: true}); uErr != nil {
    os.log.Warn("Failed to mark order read", "error", uErr)
    return apierr.Upstream(uErr)
  }
  return nil
}

func (os *orderService) MarkAllRead(ctx context.Context, role string) (int64, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.UserID == uuid.Nil {
    return 0, apierr.Unauthorized("no authenticated identity")
  }
  var readColumn, ownerColumn string
  switch types.NormalizeStatus(role) {
  case "buyer":
    readColumn, ownerColumn = "buyer_read", "buyer_id"
  case "seller":
    readColumn, ownerColumn = "seller_read", "seller_id"
  default:
    return 0, apierr.Validation("role must be buyer or seller")
  }
  n, err := os.orderRepo.MarkAllRead(ctx, nil, rd.UserID, readColumn, ownerColumn)
  if err != nil {
    os.log.Warn("Failed to bulk mark orders read", "error", err)
    return 0, apierr.Upstream(err)
  }
  return n, nil
}
