package echoServer

import (
	"net/http"

	"campusmarket/app/echoServer/controller/auth"
	"campusmarket/app/echoServer/controller/book"
	"campusmarket/app/echoServer/controller/cart"
	"campusmarket/app/echoServer/controller/checkout"
	"campusmarket/app/echoServer/controller/dashboard"
	"campusmarket/app/echoServer/controller/message"
	"campusmarket/app/echoServer/controller/request"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Cart      *cart.Controller
	Checkout  *checkout.Controller
	Request   *request.Controller
	Message   *message.Controller
	Dashboard *dashboard.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Auth
	authg := e.Group("/v1")
	authg.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))
	// user_id extraction
	authg.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj := ctx.Get("user")
			if tokenObj == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			var claims jwt.MapClaims
			switch t := tokenObj.(type) {
			case *jwt.Token:
				claims, _ = t.Claims.(jwt.MapClaims)
			case jwt.MapClaims:
				claims = t
			}
			if claims == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			ctx.Set("user_id", int64(sub))
			return next(ctx)
		}
	})

	// Listings
	authg.POST("/books", c.Book.Create)
	authg.GET("/books/mine", c.Book.Mine)
	authg.PATCH("/books/:id/active", c.Book.SetActive)

	// Cart
	authg.GET("/cart", c.Cart.Get)
	authg.POST("/cart/items", c.Cart.AddItem)
	authg.DELETE("/cart/items/:id", c.Cart.RemoveItem)
	authg.PATCH("/cart/items/:id/quantity", c.Cart.UpdateQuantity)
	authg.PATCH("/cart/items/:id/borrow", c.Cart.UpdateBorrowDetails)

	// Checkout
	authg.GET("/checkout/quote", c.Checkout.Quote)
	authg.POST("/checkout", c.Checkout.Submit)

	// Borrow / swap negotiation
	authg.POST("/requests", c.Request.Create)
	authg.GET("/requests/incoming", c.Request.Incoming)
	authg.GET("/requests/outgoing", c.Request.Outgoing)
	authg.GET("/requests/:id", c.Request.Detail)
	authg.POST("/requests/:id/respond", c.Request.Respond)
	authg.POST("/requests/:id/handover", c.Request.HandOver)
	authg.POST("/requests/:id/return", c.Request.Return)

	// Chat
	authg.POST("/chats", c.Message.Send)
	authg.GET("/chats/:bookId", c.Message.Thread)

	// Dashboard
	authg.GET("/dashboard", c.Dashboard.Get)
}
