// Package main campus marketplace API.
//
// @title           Campus Marketplace API
// @version         1.0
// @description     Peer-to-peer campus book marketplace (buy, borrow, swap).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"campusmarket/app/echoServer"
	authctrl "campusmarket/app/echoServer/controller/auth"
	bookctrl "campusmarket/app/echoServer/controller/book"
	cartctrl "campusmarket/app/echoServer/controller/cart"
	checkoutctrl "campusmarket/app/echoServer/controller/checkout"
	dashctrl "campusmarket/app/echoServer/controller/dashboard"
	msgctrl "campusmarket/app/echoServer/controller/message"
	reqctrl "campusmarket/app/echoServer/controller/request"
	"campusmarket/app/echoServer/validation"
	"campusmarket/config"
	bookrepo "campusmarket/repository/book"
	messagerepo "campusmarket/repository/message"
	orderrepo "campusmarket/repository/order"
	requestrepo "campusmarket/repository/request"
	userrepo "campusmarket/repository/user"
	authsvc "campusmarket/service/auth"
	booksvc "campusmarket/service/book"
	cartsvc "campusmarket/service/cart"
	checkoutsvc "campusmarket/service/checkout"
	dashsvc "campusmarket/service/dashboard"
	"campusmarket/service/pricing"
	reqsvc "campusmarket/service/request"
	"campusmarket/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := requestrepo.New(db)
	or := orderrepo.New(db)
	mr := messagerepo.New(db)

	// services
	priceCfg := pricing.Config{TaxRate: cfg.TaxRate, ShippingFee: cfg.ShippingFee}
	carts := cartsvc.NewStore()
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	rs := reqsvc.New(rr, br, mr, log)
	cs := checkoutsvc.New(or, carts, priceCfg, log)
	ds := dashsvc.New(rr, or, br, ur, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	cartC := &cartctrl.Controller{Store: carts, Books: bs, V: v, Log: log}
	checkoutC := &checkoutctrl.Controller{Svc: cs, Log: log}
	requestC := &reqctrl.Controller{Svc: rs, V: v, Log: log}
	dashC := &dashctrl.Controller{Svc: ds, Log: log}
	msgC := &msgctrl.Controller{Messages: mr, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New(v)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Cart:      cartC,
		Checkout:  checkoutC,
		Request:   requestC,
		Message:   msgC,
		Dashboard: dashC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
