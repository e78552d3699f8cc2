package models

import (
	"time"
)

// Favorite bookmarks a recipe for a user
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_favorite_user_recipe;index"`
	CreatedAt time.Time
}

// CartEntry puts a recipe into the user's shopping cart
type CartEntry struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_cart_user_recipe;index"`
	CreatedAt time.Time
}

func (CartEntry) TableName() string {
	return "cart_entries"
}

// Subscription makes UserID follow the recipes of AuthorID
type Subscription struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_subscription_user_author"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_subscription_user_author;index"`
	CreatedAt time.Time
}
