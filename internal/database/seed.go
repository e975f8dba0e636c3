package database

import (
	"context"
	"fmt"

	"bistro/internal/models"
)

// DefaultMenu returns the fixed menu installed by Seed
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{
			Name:        "Classic Burger",
			Description: "Beef patty with lettuce, tomato, onion and house sauce",
			Price:       12.99,
			Category:    string(models.MenuCategoryMain),
			Available:   true,
		},
		{
			Name:        "Margherita Pizza",
			Description: "Tomato sauce, fresh mozzarella and basil",
			Price:       14.99,
			Category:    string(models.MenuCategoryMain),
			Available:   true,
		},
		{
			Name:        "Caesar Salad",
			Description: "Romaine, parmesan, croutons and caesar dressing",
			Price:       9.99,
			Category:    string(models.MenuCategoryAppetizer),
			Available:   true,
		},
		{
			Name:        "Chocolate Cake",
			Description: "Rich chocolate layer cake",
			Price:       6.99,
			Category:    string(models.MenuCategoryDessert),
			Available:   true,
		},
	}
}

// Seed wipes the menu and installs DefaultMenu
func Seed(ctx context.Context, repo MenuRepository) ([]models.MenuItem, error) {
	items, err := repo.ReplaceMenu(ctx, DefaultMenu())
	if err != nil {
		return nil, fmt.Errorf("failed to seed menu: %w", err)
	}
	return items, nil
}
