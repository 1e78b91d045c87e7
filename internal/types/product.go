package types

import (
  "time"
  "gorm.io/gorm"
  "github.com/google/uuid"
)

// MaxActiveListings caps how many visible listings one seller may hold.
const MaxActiveListings = 3

type Product struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
  User          *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
  Title         string          `gorm:"not null;column:title" json:"title"`
  Description   string          `gorm:"type:text;column:description" json:"description"`
  Category      string          `gorm:"index;column:category" json:"category"`
  Price         float64         `gorm:"not null;column:price" json:"price"`
  Quantity      int             `gorm:"not null;default:0;column:quantity" json:"quantity"`
  Unit          string          `gorm:"column:unit" json:"unit"`
  ImageURL      string          `gorm:"column:image_url" json:"image_url"`
  IsVisible     bool            `gorm:"not null;default:true;column:is_visible" json:"is_visible"`
  Views         int             `gorm:"not null;default:0;column:views" json:"views"`
  CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Product) TableName() string {
  return "user_product"
}

type StaticProductVisibility struct {
  ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  ProductID   string        `gorm:"uniqueIndex;not null;column:product_id" json:"product_id"`
  IsVisible   bool          `gorm:"not null;default:true;column:is_visible" json:"is_visible"`
  CreatedAt   time.Time     `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt   time.Time     `gorm:"not null;default:now()" json:"updated_at"`
}

func (StaticProductVisibility) TableName() string {
  return "static_product_visibility"
}
