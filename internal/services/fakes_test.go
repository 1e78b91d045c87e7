package services

import (
  "context"
  "errors"
  "sort"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/agrilpasv-cmd/agrilpa-backend/internal/platform/logger"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/requestdata"
  "github.com/agrilpasv-cmd/agrilpa-backend/internal/types"
)

// The fakes below hold records in maps and ignore the tx argument. Services
// still run their closures against a real in-memory database so transaction
// plumbing is exercised, but no table is ever touched.

func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  return db
}

func newTestLogger(t *testing.T) *logger.Logger {
  t.Helper()
  log, err := logger.New("development")
  if err != nil {
    t.Fatalf("init logger: %v", err)
  }
  return log
}

func authedCtx(userID uuid.UUID, role string) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
    UserID: userID,
    Role:   role,
  })
}

type fakeUserRepo struct {
  users map[uuid.UUID]*types.User
  err   error
}

func newFakeUserRepo() *fakeUserRepo {
  return &fakeUserRepo{users: map[uuid.UUID]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
  if f.err != nil {
    return nil, f.err
  }
  for _, u := range users {
    f.users[u.ID] = u
  }
  return users, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.User
  for _, id := range userIDs {
    if u, ok := f.users[id]; ok {
      out = append(out, u)
    }
  }
  return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.User
  for _, email := range userEmails {
    for _, u := range f.users {
      if u.Email == email {
        out = append(out, u)
      }
    }
  }
  return out, nil
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, userEmail string) (bool, error) {
  if f.err != nil {
    return false, f.err
  }
  for _, u := range f.users {
    if u.Email == userEmail {
      return true, nil
    }
  }
  return false, nil
}

func (f *fakeUserRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
  if f.err != nil {
    return nil, f.err
  }
  out := make([]*types.User, 0, len(f.users))
  for _, u := range f.users {
    out = append(out, u)
  }
  sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
  return out, nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, fields map[string]interface{}) error {
  if f.err != nil {
    return f.err
  }
  u, ok := f.users[userID]
  if !ok {
    return gorm.ErrRecordNotFound
  }
  for k, v := range fields {
    switch k {
    case "role":
      u.Role = v.(string)
    case "company_name":
      u.CompanyName = v.(string)
    case "phone":
      u.Phone = v.(string)
    case "country":
      u.Country = v.(string)
    case "password":
      u.Password = v.(string)
    case "email_confirmed":
      u.EmailConfirmed = v.(bool)
    }
  }
  return nil
}

func (f *fakeUserRepo) ConfirmByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) (int64, error) {
  if f.err != nil {
    return 0, f.err
  }
  var n int64
  for _, email := range userEmails {
    for _, u := range f.users {
      if u.Email == email && !u.EmailConfirmed {
        u.EmailConfirmed = true
        n++
      }
    }
  }
  return n, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  if f.err != nil {
    return f.err
  }
  for _, id := range userIDs {
    delete(f.users, id)
  }
  return nil
}

type fakeSessionRepo struct {
  sessions map[uuid.UUID]*types.Session
  err      error
}

func newFakeSessionRepo() *fakeSessionRepo {
  return &fakeSessionRepo{sessions: map[uuid.UUID]*types.Session{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
  if f.err != nil {
    return nil, f.err
  }
  for _, s := range sessions {
    f.sessions[s.ID] = s
  }
  return sessions, nil
}

func (f *fakeSessionRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.Session, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Session
  for _, token := range accessTokens {
    for _, s := range f.sessions {
      if s.AccessToken == token {
        out = append(out, s)
      }
    }
  }
  return out, nil
}

func (f *fakeSessionRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.Session, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Session
  for _, token := range refreshTokens {
    for _, s := range f.sessions {
      if s.RefreshToken == token {
        out = append(out, s)
      }
    }
  }
  return out, nil
}

func (f *fakeSessionRepo) DeleteBySessions(ctx context.Context, tx *gorm.DB, sessions []*types.Session) error {
  if f.err != nil {
    return f.err
  }
  for _, s := range sessions {
    delete(f.sessions, s.ID)
  }
  return nil
}

func (f *fakeSessionRepo) DeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
  if f.err != nil {
    return f.err
  }
  for _, id := range userIDs {
    for sid, s := range f.sessions {
      if s.UserID == id {
        delete(f.sessions, sid)
      }
    }
  }
  return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
  if f.err != nil {
    return 0, f.err
  }
  var n int64
  for sid, s := range f.sessions {
    if s.ExpiresAt.Before(now) {
      delete(f.sessions, sid)
      n++
    }
  }
  return n, nil
}

type fakeProductRepo struct {
  products map[uuid.UUID]*types.Product
  err      error
}

func newFakeProductRepo() *fakeProductRepo {
  return &fakeProductRepo{products: map[uuid.UUID]*types.Product{}}
}

func (f *fakeProductRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
  if f.err != nil {
    return nil, f.err
  }
  for _, p := range products {
    f.products[p.ID] = p
  }
  return products, nil
}

func (f *fakeProductRepo) GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Product
  for _, id := range productIDs {
    if p, ok := f.products[id]; ok {
      out = append(out, p)
    }
  }
  return out, nil
}

func (f *fakeProductRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.Product, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Product
  for _, id := range userIDs {
    for _, p := range f.products {
      if p.UserID == id {
        out = append(out, p)
      }
    }
  }
  return out, nil
}

func (f *fakeProductRepo) ListVisible(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Product
  for _, p := range f.products {
    if p.IsVisible {
      out = append(out, p)
    }
  }
  return out, nil
}

func (f *fakeProductRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Product, error) {
  if f.err != nil {
    return nil, f.err
  }
  out := make([]*types.Product, 0, len(f.products))
  for _, p := range f.products {
    out = append(out, p)
  }
  return out, nil
}

func (f *fakeProductRepo) CountVisibleByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
  if f.err != nil {
    return 0, f.err
  }
  var n int64
  for _, p := range f.products {
    if p.UserID == userID && p.IsVisible {
      n++
    }
  }
  return n, nil
}

func (f *fakeProductRepo) UpdateFields(ctx context.Context, tx *gorm.DB, productID uuid.UUID, fields map[string]interface{}) error {
  if f.err != nil {
    return f.err
  }
  p, ok := f.products[productID]
  if !ok {
    return gorm.ErrRecordNotFound
  }
  for k, v := range fields {
    switch k {
    case "title":
      p.Title = v.(string)
    case "description":
      p.Description = v.(string)
    case "category":
      p.Category = v.(string)
    case "price":
      p.Price = v.(float64)
    case "quantity":
      p.Quantity = v.(int)
    case "unit":
      p.Unit = v.(string)
    case "image_url":
      p.ImageURL = v.(string)
    case "is_visible":
      p.IsVisible = v.(bool)
    case "views":
      p.Views = v.(int)
    }
  }
  return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error {
  if f.err != nil {
    return f.err
  }
  for _, id := range productIDs {
    delete(f.products, id)
  }
  return nil
}

type fakeStaticVisibilityRepo struct {
  rows map[string]*types.StaticProductVisibility
  err  error
}

func newFakeStaticVisibilityRepo() *fakeStaticVisibilityRepo {
  return &fakeStaticVisibilityRepo{rows: map[string]*types.StaticProductVisibility{}}
}

func (f *fakeStaticVisibilityRepo) Upsert(ctx context.Context, tx *gorm.DB, productID string, isVisible bool) (*types.StaticProductVisibility, error) {
  if f.err != nil {
    return nil, f.err
  }
  row, ok := f.rows[productID]
  if !ok {
    row = &types.StaticProductVisibility{ID: uuid.New(), ProductID: productID}
    f.rows[productID] = row
  }
  row.IsVisible = isVisible
  return row, nil
}

func (f *fakeStaticVisibilityRepo) GetByProductIDs(ctx context.Context, tx *gorm.DB, productIDs []string) ([]*types.StaticProductVisibility, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.StaticProductVisibility
  for _, id := range productIDs {
    if row, ok := f.rows[id]; ok {
      out = append(out, row)
    }
  }
  return out, nil
}

func (f *fakeStaticVisibilityRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.StaticProductVisibility, error) {
  if f.err != nil {
    return nil, f.err
  }
  out := make([]*types.StaticProductVisibility, 0, len(f.rows))
  for _, row := range f.rows {
    out = append(out, row)
  }
  return out, nil
}

type fakeOrderRepo struct {
  orders map[uuid.UUID]*types.Order
  err    error
}

func newFakeOrderRepo() *fakeOrderRepo {
  return &fakeOrderRepo{orders: map[uuid.UUID]*types.Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, tx *gorm.DB, orders []*types.Order) ([]*types.Order, error) {
  if f.err != nil {
    return nil, f.err
  }
  for _, o := range orders {
    f.orders[o.ID] = o
  }
  return orders, nil
}

func (f *fakeOrderRepo) GetByIDs(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) ([]*types.Order, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Order
  for _, id := range orderIDs {
    if o, ok := f.orders[id]; ok {
      out = append(out, o)
    }
  }
  return out, nil
}

func (f *fakeOrderRepo) ListByBuyerIDs(ctx context.Context, tx *gorm.DB, buyerIDs []uuid.UUID) ([]*types.Order, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Order
  for _, id := range buyerIDs {
    for _, o := range f.orders {
      if o.BuyerID == id {
        out = append(out, o)
      }
    }
  }
  return out, nil
}

func (f *fakeOrderRepo) ListBySellerIDs(ctx context.Context, tx *gorm.DB, sellerIDs []uuid.UUID) ([]*types.Order, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Order
  for _, id := range sellerIDs {
    for _, o := range f.orders {
      if o.SellerID == id {
        out = append(out, o)
      }
    }
  }
  return out, nil
}

func (f *fakeOrderRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Order, error) {
  if f.err != nil {
    return nil, f.err
  }
  out := make([]*types.Order, 0, len(f.orders))
  for _, o := range f.orders {
    out = append(out, o)
  }
  return out, nil
}

func (f *fakeOrderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, fields map[string]interface{}) error {
  if f.err != nil {
    return f.err
  }
  o, ok := f.orders[orderID]
  if !ok {
    return gorm.ErrRecordNotFound
  }
  for k, v := range fields {
    switch k {
    case "status":
      o.Status = v.(string)
    case "buyer_read":
      o.BuyerRead = v.(bool)
    case "seller_read":
      o.SellerRead = v.(bool)
    }
  }
  return nil
}

func (f *fakeOrderRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID, readColumn, ownerColumn string) (int64, error) {
  if f.err != nil {
    return 0, f.err
  }
  var n int64
  for _, o := range f.orders {
    switch ownerColumn {
    case "buyer_id":
      if o.BuyerID == userID && !o.BuyerRead {
        o.BuyerRead = true
        n++
      }
    case "seller_id":
      if o.SellerID == userID && !o.SellerRead {
        o.SellerRead = true
        n++
      }
    }
  }
  return n, nil
}

func (f *fakeOrderRepo) Delete(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID) error {
  if f.err != nil {
    return f.err
  }
  for _, id := range orderIDs {
    delete(f.orders, id)
  }
  return nil
}

type fakeQuotationRepo struct {
  quotations map[uuid.UUID]*types.Quotation
  err        error
}

func newFakeQuotationRepo() *fakeQuotationRepo {
  return &fakeQuotationRepo{quotations: map[uuid.UUID]*types.Quotation{}}
}

func (f *fakeQuotationRepo) Create(ctx context.Context, tx *gorm.DB, quotations []*types.Quotation) ([]*types.Quotation, error) {
  if f.err != nil {
    return nil, f.err
  }
  for _, q := range quotations {
    f.quotations[q.ID] = q
  }
  return quotations, nil
}

func (f *fakeQuotationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, quotationIDs []uuid.UUID) ([]*types.Quotation, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Quotation
  for _, id := range quotationIDs {
    if q, ok := f.quotations[id]; ok {
      out = append(out, q)
    }
  }
  return out, nil
}

func (f *fakeQuotationRepo) ListByBuyerIDs(ctx context.Context, tx *gorm.DB, buyerIDs []uuid.UUID) ([]*types.Quotation, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Quotation
  for _, id := range buyerIDs {
    for _, q := range f.quotations {
      if q.BuyerID == id {
        out = append(out, q)
      }
    }
  }
  return out, nil
}

func (f *fakeQuotationRepo) ListBySellerIDs(ctx context.Context, tx *gorm.DB, sellerIDs []uuid.UUID) ([]*types.Quotation, error) {
  if f.err != nil {
    return nil, f.err
  }
  var out []*types.Quotation
  for _, id := range sellerIDs {
    for _, q := range f.quotations {
      if q.SellerID == id {
        out = append(out, q)
      }
    }
  }
  return out, nil
}

func (f *fakeQuotationRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Quotation, error) {
  if f.err != nil {
    return nil, f.err
  }
  out := make([]*types.Quotation, 0, len(f.quotations))
  for _, q := range f.quotations {
    out = append(out, q)
  }
  return out, nil
}

func (f *fakeQuotationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, quotationID uuid.UUID, fields map[string]interface{}) error {
  if f.err != nil {
    return f.err
  }
  q, ok := f.quotations[quotationID]
  if !ok {
    return gorm.ErrRecordNotFound
  }
  for k, v := range fields {
    switch k {
    case "status":
      q.Status = v.(string)
    case "reply":
      q.Reply = v.(string)
    case "seller_read":
      q.SellerRead = v.(bool)
    }
  }
  return nil
}

type fakeNewsletterRepo struct {
  subscribers map[uuid.UUID]*types.NewsletterSubscriber
  err         error
  createErr   error
}

func newFakeNewsletterRepo() *fakeNewsletterRepo {
  return &fakeNewsletterRepo{subscribers: map[uuid.UUID]*types.NewsletterSubscriber{}}
}

func (f *fakeNewsletterRepo) Create(ctx context.Context, tx *gorm.DB, subscribers []*types.NewsletterSubscriber) ([]*types.NewsletterSubscriber, error) {
  if f.err != nil {
    return nil, f.err
  }
  if f.createErr != nil {
    return nil, f.createErr
  }
  for _, s := range subscribers {
    f.subscribers[s.ID] = s
  }
  return subscribers, nil
}

func (f *fakeNewsletterRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
  if f.err != nil {
    return false, f.err
  }
  for _, s := range f.subscribers {
    if s.Email == email {
      return true, nil
    }
  }
  return false, nil
}

func (f *fakeNewsletterRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.NewsletterSubscriber, error) {
  if f.err != nil {
    return nil, f.err
  }
  out := make([]*types.NewsletterSubscriber, 0, len(f.subscribers))
  for _, s := range f.subscribers {
    out = append(out, s)
  }
  sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
  return out, nil
}

var errSendFailed = errors.New("send failed")

type sentMail struct {
  recipient string
  subject   string
}

// fakeMailer records sends and can fail specific recipients.
type fakeMailer struct {
  sent    []sentMail
  failFor map[string]bool
}

func newFakeMailer() *fakeMailer {
  return &fakeMailer{failFor: map[string]bool{}}
}

func (f *fakeMailer) record(recipient, subject string) error {
  if f.failFor[recipient] {
    return errSendFailed
  }
  f.sent = append(f.sent, sentMail{recipient: recipient, subject: subject})
  return nil
}

func (f *fakeMailer) SendWelcome(ctx context.Context, user *types.User) error {
  return f.record(user.Email, "welcome")
}

func (f *fakeMailer) SendContactNotice(ctx context.Context, adminEmail string, submission *types.ContactSubmission) error {
  return f.record(adminEmail, "contact")
}

func (f *fakeMailer) SendQuotationReply(ctx context.Context, buyerEmail string, quotation *types.Quotation) error {
  return f.record(buyerEmail, "quotation")
}

func (f *fakeMailer) SendNewsletter(ctx context.Context, recipient, subject, body string) error {
  return f.record(recipient, subject)
}
