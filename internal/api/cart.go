package api

import (
	"net/http"

	"bistro/internal/models"

	"github.com/gin-gonic/gin"
)

type lineItemInput struct {
	Name     string   `json:"name" binding:"required"`
	Price    *float64 `json:"price" binding:"required,gte=0"`
	Quantity int      `json:"quantity" binding:"min=1"`
}

func toItemList(in []lineItemInput) models.ItemList {
	items := make(models.ItemList, len(in))
	for i, li := range in {
		items[i] = models.LineItem{Name: li.Name, Price: *li.Price, Quantity: li.Quantity}
	}
	return items
}

// cartInput replaces the whole item list; a missing list empties the cart
type cartInput struct {
	Items []lineItemInput `json:"items" binding:"dive"`
}

// GetCart returns the session's cart, creating an empty one on first read
func (a *RestaurantAPI) GetCart(c *gin.Context) {
	cart, err := a.Store.GetOrCreateCart(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		respondError(c, err, "Cart", "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// SaveCart overwrites the session's items wholesale
func (a *RestaurantAPI) SaveCart(c *gin.Context) {
	var in cartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	cart, err := a.Store.ReplaceCartItems(c.Request.Context(), c.Param("sessionId"), toItemList(in.Items))
	if err != nil {
		respondError(c, err, "Cart", "Failed to update cart")
		return
	}
	a.Monitor.RecordCartSync()
	c.JSON(http.StatusOK, cart)
}

// ClearCart deletes the session's cart; clearing an absent cart succeeds
func (a *RestaurantAPI) ClearCart(c *gin.Context) {
	if err := a.Store.DeleteCart(c.Request.Context(), c.Param("sessionId")); err != nil {
		respondError(c, err, "Cart", "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
