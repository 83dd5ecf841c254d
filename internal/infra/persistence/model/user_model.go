package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserModel mirrors the 'users' table. Email is unique among non-deleted rows.
type UserModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FirstName           string     `gorm:"type:varchar(100);not null"`
	LastName            string     `gorm:"type:varchar(100);not null"`
	Email               string     `gorm:"type:varchar(255);not null"`
	Phone               *string    `gorm:"type:varchar(32)"`
	Password            string     `gorm:"type:varchar(255)"`
	Role                string     `gorm:"type:varchar(20);not null;default:user"`
	Gender              string     `gorm:"type:varchar(10);not null;default:na"`
	BirthDate           *time.Time `gorm:"type:date"`
	Bio                 string     `gorm:"type:text"`
	Image               string     `gorm:"type:varchar(512)"`
	ActivationToken     *string    `gorm:"type:varchar(64)"`
	ActivationExpiresAt *time.Time
	ResetToken          *string `gorm:"type:varchar(128)"`
	ResetExpiresAt      *time.Time
	ActiveFlag          bool `gorm:"not null;default:false"`
	VerifiedFlag        bool `gorm:"not null;default:false"`
	Deleted             bool `gorm:"not null;default:false"`
	DeletedAt           *time.Time
	DeletedBy           *uuid.UUID `gorm:"type:uuid"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Identities []IdentityModel `gorm:"foreignKey:UserID"`
	Addresses  []AddressModel  `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// IdentityModel mirrors the 'user_identities' table; (provider, external_id) is unique.
type IdentityModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null"`
	Provider    string            `gorm:"type:varchar(50);not null"`
	ExternalID  string            `gorm:"type:varchar(255);not null"`
	AccessToken string            `gorm:"type:text"`
	RawProfile  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (IdentityModel) TableName() string {
	return "user_identities"
}

// RefreshSessionModel mirrors the 'refresh_sessions' table.
type RefreshSessionModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null"`
	TokenHash        string    `gorm:"type:varchar(64);not null"`
	RefreshTokenHash string    `gorm:"type:varchar(64);not null;unique"`
	ExpiresAt        time.Time `gorm:"not null"`
	IsActive         bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshSessionModel) TableName() string {
	return "refresh_sessions"
}
