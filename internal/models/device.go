package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice is one registered push endpoint for a user. The raw push token
// is never stored, only its hash; the SNS endpoint ARN is what delivery
// targets.
type UserDevice struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Platform    string    `gorm:"size:10;not null" json:"platform"`
	TokenHash   string    `gorm:"size:64;not null;index" json:"-"`
	EndpointARN string    `gorm:"size:255;not null" json:"-"`
	Enabled     bool      `gorm:"not null" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
