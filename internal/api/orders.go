package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"bistro/internal/events"
	"bistro/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type customerInfoInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// orderInput is the checkout body. Any status sent by the client is ignored.
type orderInput struct {
	Items        []lineItemInput   `json:"items" binding:"dive"`
	TotalPrice   *float64          `json:"totalPrice" binding:"required,gte=0"`
	CustomerInfo customerInfoInput `json:"customerInfo"`
	Notes        string            `json:"notes"`
	SessionID    string            `json:"sessionId"`
}

type statusInput struct {
	Status string `json:"status"`
}

// ListOrders returns every order, newest first
func (a *RestaurantAPI) ListOrders(c *gin.Context) {
	orders, err := a.Store.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err, "Order", "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (a *RestaurantAPI) GetOrder(c *gin.Context) {
	order, err := a.Store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Order", "Failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder places an order. The session's cart is removed afterwards;
// that removal is not part of the response.
func (a *RestaurantAPI) CreateOrder(c *gin.Context) {
	var in orderInput
	if err := json.NewDecoder(c.Request.Body).Decode(&in); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errInvalidBody, err), "Order", "Failed to create order")
		return
	}

	// Checked ahead of field validation so the message names the problem
	if len(in.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order must contain at least one item"})
		return
	}
	if err := binding.Validator.ValidateStruct(&in); err != nil {
		bindError(c, err)
		return
	}

	order := &models.Order{
		Items:      toItemList(in.Items),
		TotalPrice: *in.TotalPrice,
		CustomerInfo: models.CustomerInfo{
			Name:  in.CustomerInfo.Name,
			Email: in.CustomerInfo.Email,
			Phone: in.CustomerInfo.Phone,
		},
		Status: models.OrderStatusPending,
		Notes:  in.Notes,
	}

	ctx := c.Request.Context()
	if err := a.Store.CreateOrder(ctx, order); err != nil {
		respondError(c, err, "Order", "Failed to create order")
		return
	}

	// totalPrice is trusted as sent; mismatches are only reported
	if sum := order.Items.Total(); math.Abs(sum-order.TotalPrice) > 0.005 {
		a.log.Warn("order total does not match items",
			"order_id", order.ID,
			"total_price", order.TotalPrice,
			"items_total", sum,
		)
	}

	if in.SessionID != "" {
		if err := a.Store.DeleteCart(ctx, in.SessionID); err != nil {
			a.log.Warn("failed to clear cart after order", "session_id", in.SessionID, "order_id", order.ID, "error", err)
		}
	}

	a.Monitor.RecordOrderPlaced(order)
	a.publish(ctx, events.NewEvent(events.OrderPlaced, order.ID, order))

	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus overwrites the status with any accepted value
func (a *RestaurantAPI) UpdateOrderStatus(c *gin.Context) {
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	status, ok := models.ParseOrderStatus(in.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Invalid status. Must be one of: " + models.OrderStatusList(),
			"fields": gin.H{"status": "must be one of: " + models.OrderStatusList()},
		})
		return
	}

	ctx := c.Request.Context()
	order, err := a.Store.UpdateOrderStatus(ctx, c.Param("id"), status)
	if err != nil {
		respondError(c, err, "Order", "Failed to update order status")
		return
	}

	a.Monitor.RecordStatusChange(status)
	a.publish(ctx, events.NewEvent(events.OrderStatusChanged, order.ID, order))

	c.JSON(http.StatusOK, order)
}

func (a *RestaurantAPI) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	if err := a.Store.DeleteOrder(ctx, id); err != nil {
		respondError(c, err, "Order", "Failed to delete order")
		return
	}

	a.Monitor.RecordOrderDeleted()
	a.publish(ctx, events.NewEvent(events.OrderDeleted, id, nil))

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
