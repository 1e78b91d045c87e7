package types

import (
  "time"
  "gorm.io/gorm"
  "github.com/google/uuid"
)

const (
  RoleUser  = "user"
  RoleAdmin = "admin"
)

type User struct {
  ID              uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email           string          `gorm:"uniqueIndex;not null;column:email" json:"email"`
  Password        string          `gorm:"not null;column:password" json:"-"`
  Role            string          `gorm:"not null;default:user;column:role" json:"role"`
  CompanyName     string          `gorm:"not null;column:company_name" json:"company_name"`
  Phone           string          `gorm:"column:phone" json:"phone"`
  Country         string          `gorm:"column:country" json:"country"`
  EmailConfirmed  bool            `gorm:"not null;default:false;column:email_confirmed" json:"email_confirmed"`
  CreatedAt       time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt       time.Time       `gorm:"not null;default:now()" json:"updated_at"`
  DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (User) TableName() string {
  return "user"
}
