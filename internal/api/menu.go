package api

import (
	"net/http"
	"time"

	"bistro/internal/models"

	"github.com/gin-gonic/gin"
)

type menuItemInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	Category    string   `json:"category"`
	Available   *bool    `json:"available"`
	ImageURL    string   `json:"imageUrl"`
}

func (in menuItemInput) model() *models.MenuItem {
	item := &models.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
		Available:   true,
		ImageURL:    in.ImageURL,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	return item
}

// menuItemPatchInput leaves absent fields untouched; set fields are checked
// against the create rules by the store
type menuItemPatchInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price" binding:"omitempty,gte=0"`
	Category    *string    `json:"category"`
	Available   *bool      `json:"available"`
	ImageURL    *string    `json:"imageUrl"`
	CreatedAt   *time.Time `json:"createdAt"`
}

func (in menuItemPatchInput) patch() models.MenuItemPatch {
	return models.MenuItemPatch{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Available:   in.Available,
		ImageURL:    in.ImageURL,
		CreatedAt:   in.CreatedAt,
	}
}

// ListMenu returns every available menu item
func (a *RestaurantAPI) ListMenu(c *gin.Context) {
	items, err := a.Store.ListAvailableMenuItems(c.Request.Context())
	if err != nil {
		respondError(c, err, "Menu item", "Failed to fetch menu items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *RestaurantAPI) GetMenuItem(c *gin.Context) {
	item, err := a.Store.GetMenuItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Menu item", "Failed to fetch menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *RestaurantAPI) CreateMenuItem(c *gin.Context) {
	var in menuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	item := in.model()
	if err := a.Store.CreateMenuItem(c.Request.Context(), item); err != nil {
		respondError(c, err, "Menu item", "Failed to create menu item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (a *RestaurantAPI) UpdateMenuItem(c *gin.Context) {
	var in menuItemPatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	item, err := a.Store.UpdateMenuItem(c.Request.Context(), c.Param("id"), in.patch())
	if err != nil {
		respondError(c, err, "Menu item", "Failed to update menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *RestaurantAPI) DeleteMenuItem(c *gin.Context) {
	if err := a.Store.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Menu item", "Failed to delete menu item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
