package types

import (
  "time"
  "github.com/google/uuid"
)

type ContactSubmission struct {
  ID          uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Name        string        `gorm:"not null;column:name" json:"name"`
  Email       string        `gorm:"not null;column:email" json:"email"`
  Subject     string        `gorm:"column:subject" json:"subject"`
  Message     string        `gorm:"type:text;not null;column:message" json:"message"`
  CreatedAt   time.Time     `gorm:"not null;default:now()" json:"created_at"`
}

func (ContactSubmission) TableName() string {
  return "contact_submission"
}
