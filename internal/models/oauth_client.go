package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is an API client owned by a user. It satisfies
// oauth2.ClientInfo and oauth2.ClientPasswordVerifier so the token endpoint
// can authenticate it directly.
type OAuthClient struct {
	ID          string `gorm:"primaryKey"`
	Secret      string `gorm:"not null" json:"-"`
	Name        string
	Domain      string
	UserID      uint   `gorm:"index"`
	Scopes      string // Space-separated list of allowed scopes
	GrantTypes  string // Space-separated list, e.g. "client_credentials password"
	RedirectURI string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return false }

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword compares a presented secret with the stored bcrypt hash.
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
