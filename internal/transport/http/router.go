package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/rentkart/rentkart/internal/handlers"
	authmw "github.com/rentkart/rentkart/internal/middleware/auth"
)

type Deps struct {
	JWTSecret          []byte
	ProductHandler     *handlers.ProductHandler
	UserHandler        *handlers.UserHandler
	OrderHandler       *handlers.OrderHandler
	ReservationHandler *handlers.ReservationHandler
	ReportHandler      *handlers.ReportHandler
	UploadHandler      *handlers.UploadHandler
	SearchHandler      *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := authmw.RequireAuth(d.JWTSecret)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/signup", d.UserHandler.Signup)
	users.POST("/signin", d.UserHandler.Signin)
	users.PUT("/profile/edit", d.UserHandler.EditProfile, auth)
	users.GET("", d.UserHandler.GetUsers, auth, authmw.AdminOnly)
	users.GET("/staff/get-all-staff", d.UserHandler.GetStaff, auth, authmw.AdminOnly)
	users.GET("/:id", d.UserHandler.GetUser, auth, authmw.AdminOnly)
	users.PUT("/:id", d.UserHandler.UpdateUser, auth, authmw.AdminOnly)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/categories", d.ProductHandler.GetCategories)
	products.GET("/search", d.ProductHandler.SearchProducts)
	if d.SearchHandler != nil {
		products.GET("/search-text", d.SearchHandler.Search)
	}
	products.GET("/admin", d.ProductHandler.GetProductsAdmin, auth, authmw.AdminOnly)
	products.GET("/slug/:slug", d.ProductHandler.GetProductBySlug)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, auth, authmw.AdminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, auth, authmw.AdminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, auth, authmw.AdminOnly)
	products.POST("/:id/reviews", d.ProductHandler.CreateReview, auth)

	orders := api.Group("/orders", auth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetOrders, authmw.AdminOnly)
	orders.GET("/mine", d.OrderHandler.GetMine)
	orders.GET("/summary", d.ReportHandler.Summary, authmw.AdminOnly)
	orders.POST("/filter-by-date", d.ReportHandler.FilterByDate)
	orders.POST("/orders-by-date", d.OrderHandler.GetOrdersByDate, authmw.AdminOnly)
	orders.POST("/by-location", d.OrderHandler.GetOrdersByLocation)
	orders.POST("/by-location/not-delivered", d.OrderHandler.GetNotDeliveredByLocation)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id/pay", d.OrderHandler.Pay)
	orders.PUT("/:id/dispatch", d.OrderHandler.Dispatch)
	orders.PUT("/:id/deliver", d.OrderHandler.Deliver)

	reservations := api.Group("/reservations", auth)
	reservations.POST("", d.ReservationHandler.CreateReservation)
	reservations.GET("", d.ReservationHandler.GetReservations, authmw.AdminOnly)
	reservations.GET("/mine", d.ReservationHandler.GetMine)
	reservations.GET("/:id", d.ReservationHandler.GetReservation)
	reservations.PUT("/:id/pay", d.ReservationHandler.Pay)
	reservations.PUT("/:id/dispatch", d.ReservationHandler.Dispatch)
	reservations.PUT("/:id/deliver", d.ReservationHandler.Deliver)
	reservations.PUT("/:id/release", d.ReservationHandler.Release)
	reservations.PUT("/:id/receive", d.ReservationHandler.Receive)
	reservations.PUT("/:id/return", d.ReservationHandler.Return)
	reservations.PUT("/:id/complete", d.ReservationHandler.Complete)

	api.POST("/upload", d.UploadHandler.Upload, auth, authmw.AdminOnly)
}
