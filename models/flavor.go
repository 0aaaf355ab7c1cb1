package models

import "time"

// Flavor is one selectable ice-cream flavor in the catalog
type Flavor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Flavor model
func (Flavor) TableName() string {
	return "flavors"
}
