package identity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForOwner returns a GORM scope that filters by owner_id.
func ForOwner(owner uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", owner)
	}
}

// ForUser returns a GORM scope that filters by user_id.
func ForUser(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
