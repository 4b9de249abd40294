package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EntityRecord stores every entity kind as a jsonb document scoped by owner.
type EntityRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string         `gorm:"size:50;not null;index:idx_entity_records_owner_kind,priority:2" json:"kind"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_entity_records_owner_kind,priority:1" json:"owner_id"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"data"`
	Version   int            `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (EntityRecord) TableName() string {
	return "entity_records"
}
