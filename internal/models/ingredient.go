package models

// Ingredient is reference data; the unit belongs to the ingredient, not to
// the recipe that uses it.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"uniqueIndex;size:100;not null" json:"name" yaml:"name"`
	MeasurementUnit string `gorm:"size:50;not null" json:"measurement_unit" yaml:"measurement_unit"`
}
