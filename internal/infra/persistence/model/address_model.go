package model

import (
	"time"

	"github.com/google/uuid"
)

// AddressModel mirrors the 'addresses' table.
type AddressModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Street    string    `gorm:"type:varchar(255);not null"`
	Area      string    `gorm:"type:varchar(255)"`
	City      string    `gorm:"type:varchar(100);not null"`
	State     string    `gorm:"type:varchar(100);not null"`
	Landmark  string    `gorm:"type:varchar(255)"`
	Pincode   string    `gorm:"type:varchar(20);not null"`
	Lat       float64
	Long      float64
	Tag       string `gorm:"type:varchar(20);not null;default:home"`
	Deleted   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User *UserModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (AddressModel) TableName() string {
	return "addresses"
}
