package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles accepted in access tokens
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Username     string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`
	Password     string `gorm:"-" json:"-"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:'user'" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HashPassword replaces PasswordHash with the bcrypt hash of Password and
// clears the plain text value.
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Password = ""
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
