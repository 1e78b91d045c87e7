package types

import (
  "time"
  "github.com/google/uuid"
)

type Session struct {
  ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  UserID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
  User          *User           `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
  AccessToken   string          `gorm:"uniqueIndex;not null;column:access_token" json:"-"`
  RefreshToken  string          `gorm:"uniqueIndex;not null;column:refresh_token" json:"-"`
  ExpiresAt     time.Time       `gorm:"column:expires_at" json:"expires_at"`
  CreatedAt     time.Time       `gorm:"not null;default:now()" json:"created_at"`
  UpdatedAt     time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Session) TableName() string {
  return "session"
}
