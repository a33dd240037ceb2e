package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/common/middleware"
	"github.com/coradis/storefront/services/storefront-service/controllers"
)

// Controllers bundles every handler group mounted by RegisterRoutes.
type Controllers struct {
	Health    *controllers.HealthController
	Auth      *controllers.AuthController
	Customers *controllers.CustomerController
	Orders    *controllers.OrderController
	OTP       *controllers.OTPController
	Products  *controllers.ProductController
	Cart      *controllers.CartController
	Contact   *controllers.ContactController
}

// RegisterRoutes mounts the public storefront API and the admin dashboard API.
// otpLimit guards the endpoints that send messages or accept credentials.
func RegisterRoutes(r *gin.Engine, c Controllers, sessions *auth.Sessions, otpLimit gin.HandlerFunc) {
	controllers.RegisterValidators()

	r.GET("/health", c.Health.Health)

	api := r.Group("/api")

	// Storefront
	products := api.Group("/products")
	products.GET("", c.Products.ListProducts)
	products.GET("/:id", c.Products.GetProduct)

	cart := api.Group("/cart")
	cart.GET("", c.Cart.GetCart)
	cart.DELETE("", c.Cart.ClearCart)
	cart.POST("/items", c.Cart.AddItem)
	cart.PUT("/items/:product_id", c.Cart.UpdateItem)
	cart.DELETE("/items/:product_id", c.Cart.RemoveItem)

	api.POST("/orders", middleware.OptionalCustomer(sessions), c.Orders.CreateOrder)
	api.POST("/contact", otpLimit, c.Contact.Submit)

	otp := api.Group("/otp")
	otp.POST("/send", otpLimit, c.OTP.SendOTP)
	otp.POST("/verify", otpLimit, c.OTP.VerifyOTP)
	otp.POST("/clear", otpLimit, c.OTP.ClearOTP)

	// Customer accounts
	customers := api.Group("/customers")
	customers.POST("/register", otpLimit, c.Customers.Register)
	customers.POST("/login", otpLimit, c.Customers.Login)
	customers.POST("/logout", c.Customers.Logout)
	customers.GET("/me", c.Customers.Me)
	customers.GET("/discount", middleware.OptionalCustomer(sessions), c.Customers.Discount)

	account := customers.Group("")
	account.Use(middleware.RequireCustomer(sessions))
	account.GET("/profile", c.Customers.Profile)
	account.PUT("/profile", c.Customers.UpdateProfile)
	account.POST("/referral", c.Customers.UseReferral)
	account.GET("/orders", c.Customers.MyOrders)
	account.GET("/favorites", c.Customers.Favorites)
	account.POST("/favorites", c.Customers.AddFavorite)
	account.GET("/scratch-cards", c.Customers.ScratchCards)
	account.POST("/scratch-cards/:id/scratch", c.Customers.Scratch)

	// Admin dashboard
	adminAuth := api.Group("/admin/auth")
	adminAuth.POST("/login", otpLimit, c.Auth.Login)
	adminAuth.GET("/me", c.Auth.Me)
	adminAuth.POST("/logout", c.Auth.Logout)
	adminAuth.POST("/admins", c.Auth.CreateAdmin)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(sessions))

	admin.GET("/orders", c.Orders.ListOrders)
	admin.GET("/orders/:id", c.Orders.GetOrder)
	admin.PATCH("/orders/:id/status", c.Orders.UpdateOrderStatus)
	admin.DELETE("/orders/:id", c.Orders.DeleteOrder)

	admin.POST("/products", c.Products.CreateProduct)
	admin.PUT("/products/:id", c.Products.UpdateProduct)
	admin.DELETE("/products/:id", c.Products.DeleteProduct)
	admin.POST("/products/:id/image-upload-url", c.Products.ImageUploadURL)

	admin.GET("/contact-messages", c.Contact.List)
	admin.PATCH("/contact-messages/:id/status", c.Contact.UpdateStatus)
}
