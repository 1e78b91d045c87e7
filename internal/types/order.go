package types

import (
  "time"
  "gorm.io/gorm"
  "github.com/google/uuid"
)

const (
  OrderStatusPending   = "pending"
  OrderStatusConfirmed = "confirmed"
  OrderStatusShipped   = "shipped"
  OrderStatusDelivered = "delivered"
  OrderStatusCancelled = "cancelled"
)

type Order struct {
  ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  BuyerID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"buyer_id"`
  Buyer        *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:BuyerID;references:ID" json:"buyer,omitempty"`
  SellerID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"seller_id"`
  Seller       *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:SellerID;references:ID" json:"seller,omitempty"`
  ProductID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
  Product      *Product        `gorm:"constraint:OnDelete:SET NULL;foreignKey:ProductID;references:ID" json:"product,omitempty"`
  Quantity     int             `gorm:"not null;column:quantity" json:"quantity"`
  TotalPrice   float64         `gorm:"not null;column:total_price" json:"total_price"`
  Status       string          `gorm:"not null;default:pending;index;column:status" json:"status"`
  BuyerRead    bool            `gorm:"not null;default:false;column:buyer_read" json:"buyer_read"`
  SellerRead   bool            `gorm:"not null;default:false;column:seller_read" json:"seller_read"`
  CreatedAt    time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt    time.Time       `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Order) TableName() string {
  return "order"
}
