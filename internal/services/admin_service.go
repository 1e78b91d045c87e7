package services

import (
  "context"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/aggregate"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/authz"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/repos"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

// DashboardStats is the admin landing-page summary. Every number is computed
// in memory from full table reads; at this product's scale that is cheaper
// than maintaining counters.
type DashboardStats struct {
  Users         int                `json:"users"`
  Products      int                `json:"products"`
  Orders        int                `json:"orders"`
  Quotations    int                `json:"quotations"`
  Contacts      int                `json:"contacts"`
  Subscribers   int                `json:"subscribers"`
  OrdersPerStatus map[string]int   `json:"orders_per_status"`
  TopCategories []aggregate.Bucket `json:"top_categories"`
  TopClickTypes []aggregate.Bucket `json:"top_click_types"`
}

type AdminService interface {
  Dashboard(ctx context.Context) (*DashboardStats, error)
}

type adminService struct {
  log            *logger.Logger
  userRepo       repos.UserRepo
  productRepo    repos.ProductRepo
  orderRepo      repos.OrderRepo
  quotationRepo  repos.QuotationRepo
  clickEventRepo repos.ClickEventRepo
  contactRepo    repos.ContactRepo
  newsletterRepo repos.NewsletterRepo
}

func NewAdminService(
  log *logger.Logger,
  userRepo repos.UserRepo,
  productRepo repos.ProductRepo,
  orderRepo repos.OrderRepo,
  quotationRepo repos.QuotationRepo,
  clickEventRepo repos.ClickEventRepo,
  contactRepo repos.ContactRepo,
  newsletterRepo repos.NewsletterRepo,
) AdminService {
  serviceLog := log.With("service", "AdminService")
  return &adminService{
    log:            serviceLog,
    userRepo:       userRepo,
    productRepo:    productRepo,
    orderRepo:      orderRepo,
    quotationRepo:  quotationRepo,
    clickEventRepo: clickEventRepo,
    contactRepo:    contactRepo,
    newsletterRepo: newsletterRepo,
  }
}

func (as *adminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
  rd := requestdata.GetRequestData(ctx)
  if aErr := authz.RequireAdmin(rd); aErr != nil {
    return nil, aErr
  }

  users, err := as.userRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("users", err)
  }
  products, err := as.productRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("products", err)
  }
  orders, err := as.orderRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("orders", err)
  }
  quotations, err := as.quotationRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("quotations", err)
  }
  clicks, err := as.clickEventRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("clicks", err)
  }
  contacts, err := as.contactRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("contacts", err)
  }
  subscribers, err := as.newsletterRepo.List(ctx, nil)
  if err != nil {
    return nil, as.upstream("subscribers", err)
  }

  stats := &DashboardStats{
    Users:       aggregate.Total(users),
    Products:    aggregate.Total(products),
    Orders:      aggregate.Total(orders),
    Quotations:  aggregate.Total(quotations),
    Contacts:    aggregate.Total(contacts),
    Subscribers: aggregate.Total(subscribers),
    OrdersPerStatus: aggregate.CountBy(orders, func(o *types.Order) string {
      return types.NormalizeStatus(o.Status)
    }),
    TopCategories: aggregate.TopN(products, func(p *types.Product) string {
      return types.NormalizeStatus(p.Category)
    }, 5),
    TopClickTypes: aggregate.TopN(clicks, func(e *types.ClickEvent) string {
      return e.Type
    }, 5),
  }
  return stats, nil
}

func (as *adminService) upstream(table string, err error) error {
  as.log.Warn("Dashboard read failed", "error", err, "table", table)
  return apierr.Upstream(err)
}
