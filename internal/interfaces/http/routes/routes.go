// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/clinic-store-backend/internal/config"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/handlers"
	"github.com/your-org/clinic-store-backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth    *handlers.AuthHandler
	Catalog *handlers.CatalogHandler
	Product *handlers.ProductHandler
	Cart    *handlers.CartHandler
	Order   *handlers.OrderHandler
	Review  *handlers.ReviewHandler
}

// SetupRoutes mounts every API route under the given group
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	requireAuth := middleware.AuthMiddleware(cfg)
	requireStaff := middleware.StaffMiddleware()

	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	catalog := rg.Group("/catalog")
	{
		catalog.GET("/medicines", h.Catalog.ListMedicines)
		catalog.GET("/medicines/:id", h.Catalog.GetMedicine)
		catalog.GET("/treatments", h.Catalog.ListTreatments)
		catalog.GET("/treatments/:id", h.Catalog.GetTreatment)

		staff := catalog.Group("")
		staff.Use(requireAuth, requireStaff)
		{
			staff.POST("/medicines", h.Catalog.CreateMedicine)
			staff.PUT("/medicines/:id", h.Catalog.UpdateMedicine)
			staff.DELETE("/medicines/:id", h.Catalog.DeleteMedicine)
			staff.POST("/treatments", h.Catalog.CreateTreatment)
			staff.PUT("/treatments/:id", h.Catalog.UpdateTreatment)
			staff.DELETE("/treatments/:id", h.Catalog.DeleteTreatment)
		}
	}

	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.GET("/slug/:slug", h.Product.GetBySlug)

		staff := products.Group("")
		staff.Use(requireAuth, requireStaff)
		{
			staff.POST("", h.Product.Create)
			staff.PUT("/:id", h.Product.Update)
			staff.DELETE("/:id", h.Product.Delete)
		}
	}

	cart := rg.Group("/cart")
	cart.Use(requireAuth)
	{
		cart.GET("", h.Cart.Get)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
		cart.DELETE("", h.Cart.Clear)
	}

	orders := rg.Group("/orders")
	orders.Use(requireAuth)
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Place)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.POST("/:id/verify-payment", h.Order.VerifyPayment)
		orders.POST("/:id/retry-payment", h.Order.RetryPayment)
		orders.POST("/:id/accept-order", h.Order.AcceptDelivery)

		staff := orders.Group("")
		staff.Use(requireStaff)
		{
			staff.POST("/:id/dispatch", h.Order.Dispatch)
			staff.PATCH("/:id/status", h.Order.UpdateStatus)
		}
	}

	reviews := rg.Group("/reviews")
	{
		reviews.GET("", h.Review.List)

		authed := reviews.Group("")
		authed.Use(requireAuth)
		{
			authed.POST("", h.Review.Create)
			authed.PUT("/:id", h.Review.Update)
			authed.DELETE("/:id", h.Review.Delete)
		}
	}

	admin := rg.Group("/admin")
	admin.Use(requireAuth, requireStaff)
	{
		admin.POST("/store/reload-allow-list", h.Product.ReloadAllowList)
	}
}
