package models

// Tag labels recipes, e.g. breakfast or dinner
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:50;not null" json:"name" yaml:"name"`
	Color string `gorm:"size:7;not null" json:"color" yaml:"color"`
	Slug  string `gorm:"uniqueIndex;size:50;not null" json:"slug" yaml:"slug"`
}
