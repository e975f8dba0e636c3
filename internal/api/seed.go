package api

import (
	"net/http"

	"bistro/internal/database"

	"github.com/gin-gonic/gin"
)

// SeedMenu replaces the whole menu with the default items
func (a *RestaurantAPI) SeedMenu(c *gin.Context) {
	items, err := database.Seed(c.Request.Context(), a.Store)
	if err != nil {
		respondError(c, err, "Menu item", "Failed to seed database")
		return
	}
	a.log.Info("menu seeded", "items", len(items))
	c.JSON(http.StatusOK, gin.H{"message": "Database seeded successfully", "items": items})
}
