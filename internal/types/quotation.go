package types

import (
  "time"
  "gorm.io/gorm"
  "github.com/google/uuid"
)

const (
  QuotationStatusPending  = "pending"
  QuotationStatusReplied  = "replied"
  QuotationStatusRejected = "rejected"
  QuotationStatusAccepted = "accepted"
)

type Quotation struct {
  ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  BuyerID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"buyer_id"`
  Buyer       *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:BuyerID;references:ID" json:"buyer,omitempty"`
  SellerID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"seller_id"`
  Seller      *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:SellerID;references:ID" json:"seller,omitempty"`
  ProductID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
  Product     *Product        `gorm:"constraint:OnDelete:SET NULL;foreignKey:ProductID;references:ID" json:"product,omitempty"`
  Quantity    int             `gorm:"not null;default:1;column:quantity" json:"quantity"`
  Message     string          `gorm:"type:text;column:message" json:"message"`
  Reply       string          `gorm:"type:text;column:reply" json:"reply"`
  Status      string          `gorm:"not null;default:pending;index;column:status" json:"status"`
  SellerRead  bool            `gorm:"not null;default:false;column:seller_read" json:"seller_read"`
  CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time       `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Quotation) TableName() string {
  return "quotation"
}
