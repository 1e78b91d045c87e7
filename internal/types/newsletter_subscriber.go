package types

import (
  "time"
  "github.com/google/uuid"
)

type NewsletterSubscriber struct {
  ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Email       string        `gorm:"uniqueIndex;not null;column:email" json:"email"`
  CreatedAt   time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

func (NewsletterSubscriber) TableName() string {
  return "newsletter_subscriber"
}
