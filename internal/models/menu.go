package models

import (
	"time"
)

// DefaultMenuCategory is assigned when a menu item is created without a category
const DefaultMenuCategory = "main"

// MenuItem represents a dish on the menu
type MenuItem struct {
	ID          string    `json:"_id" bson:"-" firestore:"-" gorm:"primary_key"`
	Name        string    `json:"name" bson:"name" firestore:"name"`
	Description string    `json:"description" bson:"description" firestore:"description"`
	Price       float64   `json:"price" bson:"price" firestore:"price"`
	Category    string    `json:"category" bson:"category" firestore:"category"`
	Available   bool      `json:"available" bson:"available" firestore:"available"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	// Menu categories
	MenuCategoryAppetizer MenuCategory = "appetizer"
	MenuCategoryMain      MenuCategory = "main"
	MenuCategorySide      MenuCategory = "side"
	MenuCategoryDessert   MenuCategory = "dessert"
	MenuCategoryBeverage  MenuCategory = "beverage"
)

// MenuItemPatch carries the fields of a partial menu item update. Nil
// pointers leave the stored value untouched.
type MenuItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Available   *bool
	ImageURL    *string
	CreatedAt   *time.Time
}

// Apply copies every non-nil field of the patch onto item
func (p MenuItemPatch) Apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.CreatedAt != nil {
		item.CreatedAt = *p.CreatedAt
	}
}

// IsEmpty reports whether the patch changes nothing
func (p MenuItemPatch) IsEmpty() bool {
	return p == MenuItemPatch{}
}
