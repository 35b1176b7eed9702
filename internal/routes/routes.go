package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greencart/greencart-golang/internal/handlers"
	"github.com/greencart/greencart-golang/internal/middleware"
)

// --- CORS Middleware ---
// The storefront runs on a different origin and sends the session cookie,
// so the browser needs explicit permission before it will talk to us.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		// 1. Echo the origin back only when it is on the allow list
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		// 2. Allow the session cookie to travel with requests
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// 3. Allow the headers we actually use
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With")

		// 4. Allow the HTTP methods we use in our API
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		// 5. Handle the "Preflight" OPTIONS request
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before anything else touches the request
	router.Use(CORSMiddleware(h.Cfg.HTTP.AllowedOrigins))

	authUser := middleware.AuthUser(h.Tokens)
	authSeller := middleware.AuthSeller(h.Tokens, h.Sellers)

	// --- Health Check (Public) ---
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "API is Working"})
	})

	api := router.Group("/api")
	{
		// --- User Routes ---
		user := api.Group("/user")
		{
			user.POST("/register", h.RegisterUser)
			user.POST("/verify-email", h.VerifyEmail)
			user.POST("/login", h.LoginUser)
			user.GET("/is-auth", authUser, h.IsAuth)
			user.GET("/logout", authUser, h.Logout)
		}

		// --- Seller Routes ---
		seller := api.Group("/seller")
		{
			seller.POST("/register", h.RegisterSeller)
			seller.POST("/verify-email", h.VerifySellerEmail)
			seller.POST("/login", h.SellerLogin)
			seller.GET("/is-auth", authSeller, h.IsSellerAuth)
			seller.GET("/logout", authSeller, h.SellerLogout)
		}

		// --- Product Routes ---
		product := api.Group("/product")
		{
			product.POST("/add", authSeller, h.AddProduct)
			product.GET("/list", h.ProductList)
			product.POST("/id", h.ProductByID)
			product.POST("/stock", authSeller, h.ChangeStock)
			product.GET("/seller", authSeller, h.SellerProducts)
		}

		// --- Cart Routes ---
		api.POST("/cart/update", authUser, h.UpdateCart)

		// --- Address Routes ---
		address := api.Group("/address")
		address.Use(authUser)
		{
			address.POST("/add", h.AddAddress)
			address.GET("/get", h.GetAddresses)
		}

		// --- Order Routes ---
		order := api.Group("/order")
		{
			order.POST("/cod", authUser, h.PlaceOrderCOD)
			order.POST("/stripe", authUser, h.PlaceOrderStripe)
			order.GET("/user", authUser, h.GetUserOrders)
			order.GET("/seller", authSeller, h.GetAllOrders)
			order.PUT("/update-status", authSeller, h.UpdateOrderStatus)

			// The webhook is called by the payment gateway, not the browser,
			// and authenticates via signature rather than cookie.
			order.POST("/stripe/webhook", h.StripeWebhook)
		}
	}

	return router
}
