package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bistro/internal/database"
	"bistro/internal/events"
	"bistro/internal/kitchen"
	"bistro/internal/logger"
	"bistro/internal/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the optional collaborators of the API. Zero values get
// working defaults.
type Options struct {
	Logger      *slog.Logger
	Monitor     *monitoring.Monitor
	Hub         *kitchen.Hub
	Publisher   events.Publisher
	CORSOrigins []string
	// JWTSecret enables the admin guard on write routes when set
	JWTSecret string
}

// RestaurantAPI serves the menu, cart and order endpoints
type RestaurantAPI struct {
	Router    *gin.Engine
	Store     database.Store
	Hub       *kitchen.Hub
	Monitor   *monitoring.Monitor
	publisher events.Publisher
	log       *slog.Logger
	opts      Options
}

// NewRestaurantAPI creates the API around an opened store
func NewRestaurantAPI(store database.Store, opts Options) *RestaurantAPI {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Monitor == nil {
		opts.Monitor = monitoring.NewMonitor()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.Hub == nil {
		opts.Hub = kitchen.NewHub(opts.Logger, opts.CORSOrigins...)
	}
	if opts.Publisher == nil {
		opts.Publisher = opts.Hub
	}

	a := &RestaurantAPI{
		Router:    gin.New(),
		Store:     store,
		Hub:       opts.Hub,
		Monitor:   opts.Monitor,
		publisher: opts.Publisher,
		log:       opts.Logger,
		opts:      opts,
	}

	a.setupRoutes()
	return a
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// setupRoutes configures all API endpoints
func (a *RestaurantAPI) setupRoutes() {
	a.Router.Use(
		a.recovery(),
		a.requestLogger(),
		a.Monitor.Middleware(),
		cors.New(corsConfig(a.opts.CORSOrigins)),
	)

	a.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	admin := a.adminOnly(a.opts.JWTSecret)

	api := a.Router.Group("/api")
	{
		api.GET("/health", a.Health)
		api.GET("/ready", a.Ready)
		api.GET("/seed", admin, a.SeedMenu)

		// Menu
		api.GET("/menu", a.ListMenu)
		api.GET("/menu/:id", a.GetMenuItem)
		api.POST("/menu", admin, a.CreateMenuItem)
		api.PUT("/menu/:id", admin, a.UpdateMenuItem)
		api.DELETE("/menu/:id", admin, a.DeleteMenuItem)

		// Carts
		api.GET("/cart/:sessionId", a.GetCart)
		api.POST("/cart/:sessionId", a.SaveCart)
		api.DELETE("/cart/:sessionId", a.ClearCart)

		// Orders
		api.GET("/orders", a.ListOrders)
		api.GET("/orders/ws", admin, a.Hub.ServeWS)
		api.GET("/orders/:id", a.GetOrder)
		api.POST("/orders", a.CreateOrder)
		api.PATCH("/orders/:id/status", admin, a.UpdateOrderStatus)
		api.DELETE("/orders/:id", admin, a.DeleteOrder)
	}
}

// Health is a static liveness probe
func (a *RestaurantAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Restaurant API is running",
		"timestamp": time.Now().UTC(),
	})
}

// Ready reports whether the store answers a ping
func (a *RestaurantAPI) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := a.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// publish delivers an order event; failures never affect the response
func (a *RestaurantAPI) publish(ctx context.Context, ev events.Event) {
	if err := a.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		a.log.Warn("failed to publish order event", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}
