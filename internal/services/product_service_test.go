package services

import (
  "context"
  "net/http"
  "testing"

  "github.com/google/uuid"

  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/apierr"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

type productFixture struct {
  svc      ProductService
  products *fakeProductRepo
  users    *fakeUserRepo
  static   *fakeStaticVisibilityRepo
}

func newProductFixture(t *testing.T) *productFixture {
  t.Helper()
  products := newFakeProductRepo()
  users := newFakeUserRepo()
  static := newFakeStaticVisibilityRepo()
  svc := NewProductService(newTestDB(t), newTestLogger(t), products, users, static)
  return &productFixture{svc: svc, products: products, users: users, static: static}
}

func seedProduct(fx *productFixture, userID uuid.UUID, visible bool) *types.Product {
  p := &types.Product{
    ID:        uuid.New(),
    UserID:    userID,
    Title:     "Maize",
    Category:  "grain",
    Price:     10,
    Quantity:  100,
    IsVisible: visible,
  }
  fx.products.products[p.ID] = p
  return p
}

func TestCreateProductCapsVisibleListings(t *testing.T) {
  fx := newProductFixture(t)
  seller := uuid.New()
  for i := 0; i < types.MaxActiveListings; i++ {
    seedProduct(fx, seller, true)
  }

  _, err := fx.svc.Create(authedCtx(seller, "user"), ProductInput{Title: "One More", Price: 5})
  if err == nil {
    t.Fatalf("expected listing cap to reject a fourth visible product")
  }
  if got := apierr.StatusOf(err); got != http.StatusBadRequest {
    t.Fatalf("cap status: want=%d got=%d", http.StatusBadRequest, got)
  }

  // A hidden listing is always allowed.
  hidden := false
  product, err := fx.svc.Create(authedCtx(seller, "user"), ProductInput{Title: "Hidden", Price: 5, IsVisible: &hidden})
  if err != nil {
    t.Fatalf("hidden create: %v", err)
  }
  if product.IsVisible {
    t.Fatalf("expected hidden product")
  }
}

func TestUpdateProductNonOwnerForbidden(t *testing.T) {
  fx := newProductFixture(t)
  owner := uuid.New()
  product := seedProduct(fx, owner, true)

  title := "Stolen"
  _, err := fx.svc.Update(authedCtx(uuid.New(), "user"), product.ID, ProductUpdate{Title: &title})
  if err == nil {
    t.Fatalf("expected non-owner update to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusForbidden {
    t.Fatalf("non-owner status: want=%d got=%d", http.StatusForbidden, got)
  }
  if product.Title != "Maize" {
    t.Fatalf("product mutated by denied update: %q", product.Title)
  }
}

func TestUpdateProductAdminBypassesOwnership(t *testing.T) {
  fx := newProductFixture(t)
  product := seedProduct(fx, uuid.New(), true)

  title := "Corrected Title"
  updated, err := fx.svc.Update(authedCtx(uuid.New(), "admin"), product.ID, ProductUpdate{Title: &title})
  if err != nil {
    t.Fatalf("admin update: %v", err)
  }
  if updated.Title != title {
    t.Fatalf("admin update title: want=%q got=%q", title, updated.Title)
  }
}

func TestUpdateProductVisibilityReenableHitsCap(t *testing.T) {
  fx := newProductFixture(t)
  seller := uuid.New()
  for i := 0; i < types.MaxActiveListings; i++ {
    seedProduct(fx, seller, true)
  }
  hidden := seedProduct(fx, seller, false)

  visible := true
  _, err := fx.svc.Update(authedCtx(seller, "user"), hidden.ID, ProductUpdate{IsVisible: &visible})
  if err == nil {
    t.Fatalf("expected re-enable past the cap to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusBadRequest {
    t.Fatalf("re-enable status: want=%d got=%d", http.StatusBadRequest, got)
  }
}

func TestDeleteProductOwnerThenGone(t *testing.T) {
  fx := newProductFixture(t)
  owner := uuid.New()
  product := seedProduct(fx, owner, true)

  if err := fx.svc.Delete(authedCtx(owner, "user"), product.ID); err != nil {
    t.Fatalf("owner delete: %v", err)
  }
  if _, ok := fx.products.products[product.ID]; ok {
    t.Fatalf("expected product row to be removed")
  }

  // Anything addressing the deleted listing answers 404 from here on.
  title := "Ghost"
  _, err := fx.svc.Update(authedCtx(owner, "user"), product.ID, ProductUpdate{Title: &title})
  if got := apierr.StatusOf(err); got != http.StatusNotFound {
    t.Fatalf("update after delete: want=%d got=%d", http.StatusNotFound, got)
  }
  if err := fx.svc.Delete(authedCtx(owner, "user"), product.ID); apierr.StatusOf(err) != http.StatusNotFound {
    t.Fatalf("delete after delete: want=%d got=%d", http.StatusNotFound, apierr.StatusOf(err))
  }
}

func TestDeleteProductNonOwnerForbidden(t *testing.T) {
  fx := newProductFixture(t)
  product := seedProduct(fx, uuid.New(), true)

  err := fx.svc.Delete(authedCtx(uuid.New(), "user"), product.ID)
  if err == nil {
    t.Fatalf("expected non-owner delete to fail")
  }
  if got := apierr.StatusOf(err); got != http.StatusForbidden {
    t.Fatalf("non-owner delete status: want=%d got=%d", http.StatusForbidden, got)
  }
  if _, ok := fx.products.products[product.ID]; !ok {
    t.Fatalf("denied delete removed the row")
  }

  // Admin may remove any listing.
  if err := fx.svc.Delete(authedCtx(uuid.New(), "admin"), product.ID); err != nil {
    t.Fatalf("admin delete: %v", err)
  }
}

func TestListVisibleJoinsSellerInfo(t *testing.T) {
  fx := newProductFixture(t)
  seller := &types.User{ID: uuid.New(), Email: "s@example.com", CompanyName: "Acme Farms", Country: "kenya"}
  fx.users.users[seller.ID] = seller
  seedProduct(fx, seller.ID, true)
  seedProduct(fx, seller.ID, false)

  out, err := fx.svc.ListVisible(context.Background())
  if err != nil {
    t.Fatalf("ListVisible: %v", err)
  }
  if len(out) != 1 {
    t.Fatalf("visible products: want=1 got=%d", len(out))
  }
  if out[0].SellerCompany != "Acme Farms" || out[0].SellerCountry != "kenya" {
    t.Fatalf("seller join missing: %+v", out[0])
  }
}

func TestIncrementViewsSwallowsErrors(t *testing.T) {
  fx := newProductFixture(t)
  product := seedProduct(fx, uuid.New(), true)

  if err := fx.svc.IncrementViews(context.Background(), product.ID); err != nil {
    t.Fatalf("IncrementViews: %v", err)
  }
  if product.Views != 1 {
    t.Fatalf("views: want=1 got=%d", product.Views)
  }

  fx.products.err = errSendFailed
  if err := fx.svc.IncrementViews(context.Background(), product.ID); err != nil {
    t.Fatalf("IncrementViews with failing store should return nil, got %v", err)
  }
}

func TestSetStaticVisibilityRequiresAdmin(t *testing.T) {
  fx := newProductFixture(t)

  _, err := fx.svc.SetStaticVisibility(authedCtx(uuid.New(), "user"), "hero-banner", true)
  if err == nil {
    t.Fatalf("expected non-admin to be rejected")
  }
  if got := apierr.StatusOf(err); got != http.StatusForbidden {
    t.Fatalf("non-admin status: want=%d got=%d", http.StatusForbidden, got)
  }

  row, err := fx.svc.SetStaticVisibility(authedCtx(uuid.New(), "admin"), "hero-banner", true)
  if err != nil {
    t.Fatalf("admin upsert: %v", err)
  }
  if !row.IsVisible || row.ProductID != "hero-banner" {
    t.Fatalf("unexpected visibility row: %+v", row)
  }
}
