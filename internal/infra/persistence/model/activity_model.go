package model

import (
	"time"

	"github.com/google/uuid"
)

// ActivityModel mirrors the 'activities' table.
type ActivityModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Activity       string     `gorm:"type:varchar(50);not null"`
	ActionTargetID *uuid.UUID `gorm:"type:uuid"`
	ActionModule   string     `gorm:"type:varchar(50);not null"`
	Message        string     `gorm:"type:text"`
	Deleted        bool       `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User *UserModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (ActivityModel) TableName() string {
	return "activities"
}
