package types

import (
  "time"
  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// ClickEvent rows are append-only: never updated, never deleted.
type ClickEvent struct {
  ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  Type        string          `gorm:"not null;index;column:type" json:"type"`
  SubjectID   string          `gorm:"index;column:subject_id" json:"subject_id"`
  Metadata    datatypes.JSON  `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
  CreatedAt   time.Time       `gorm:"not null;default:now()" json:"created_at"`
}

func (ClickEvent) TableName() string {
  return "click_event"
}
