package models

import (
	"time"
)

type Recipe struct {
	ID          uint   `gorm:"primaryKey"`
	AuthorID    *uint  `gorm:"index"`
	Author      *User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	Name        string `gorm:"size:100;index;not null"`
	Image       string `gorm:"type:text"`
	Text        string `gorm:"type:text;not null"`
	CookingTime int    `gorm:"not null"`
	Tags        []Tag  `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient is the amount of one ingredient a recipe needs
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null"`
}
