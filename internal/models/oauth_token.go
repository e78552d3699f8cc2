package models

import (
	"time"
)

// OAuthToken persists tokens issued by the OAuth2 token endpoint so refresh
// tokens can be exchanged and revoked.
type OAuthToken struct {
	ID               uint    `gorm:"primaryKey"`
	ClientID         string  `gorm:"not null;index"`
	UserID           *string // NULL for client credentials issued without an owner
	AccessToken      string  `gorm:"uniqueIndex;not null"`
	RefreshToken     *string `gorm:"index"`
	Scopes           string
	ExpiresAt        time.Time `gorm:"not null"`
	RefreshExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}
