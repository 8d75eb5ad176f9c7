// Package model holds the GORM persistence models.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'users' table. IDs are generated by the service as UUIDv7.
type AccountModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName string    `gorm:"type:text;not null"`
	LastName  string    `gorm:"type:text;not null"`
	Email     string    `gorm:"type:text;unique;not null"`
	Password  string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "users"
}
