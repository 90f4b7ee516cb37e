package cart

import (
	"log/slog"
	"net/http"

	"campusmarket/app/echoServer/jwtx"
	"campusmarket/model"
	booksvc "campusmarket/service/book"
	cartsvc "campusmarket/service/cart"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Store *cartsvc.Store
	Books booksvc.Service
	V     *validator.Validate
	Log   *slog.Logger
}

// POST /v1/cart/items
func (h *Controller) AddItem(c echo.Context) error {
	var req AddItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	book, err := h.Books.Detail(c.Request().Context(), req.BookID)
	if err != nil {
		if err == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("cart add: book lookup", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	var details *cartsvc.BorrowDetails
	if model.TransactionMode(req.Mode) == model.ModeBorrow {
		details = &cartsvc.BorrowDetails{Duration: req.Duration, DepositOverride: req.Deposit}
	}

	item, err := h.Store.AddItem(uid, book, model.TransactionMode(req.Mode), details, req.OfferedBookIDs)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": item, "total_items": h.Store.TotalItemCount(uid)})
}

// GET /v1/cart
func (h *Controller) Get(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)
	return c.JSON(http.StatusOK, echo.Map{
		"data":           h.Store.Snapshot(uid),
		"counts_by_mode": h.Store.CountByMode(uid),
		"total_items":    h.Store.TotalItemCount(uid),
	})
}

// DELETE /v1/cart/items/:id
func (h *Controller) RemoveItem(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)
	if err := h.Store.RemoveItem(uid, c.Param("id")); err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed", "total_items": h.Store.TotalItemCount(uid)})
}

// PATCH /v1/cart/items/:id/quantity
func (h *Controller) UpdateQuantity(c echo.Context) error {
	var req UpdateQuantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	item, err := h.Store.UpdateQuantity(uid, c.Param("id"), req.Quantity)
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": item})
}

// PATCH /v1/cart/items/:id/borrow
func (h *Controller) UpdateBorrowDetails(c echo.Context) error {
	var req UpdateBorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	item, err := h.Store.UpdateBorrowDetails(uid, c.Param("id"), cartsvc.BorrowDetails{
		Duration:        req.Duration,
		DepositOverride: req.Deposit,
	})
	if err != nil {
		return h.mapErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": item})
}

func (h *Controller) mapErr(c echo.Context, err error) error {
	switch cartsvc.Code(err) {
	case cartsvc.ErrNotAuthenticated:
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	case cartsvc.ErrItemNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "cart item not found"})
	case cartsvc.ErrNotBorrowItem:
		return c.JSON(http.StatusConflict, echo.Map{"message": "not a borrow item"})
	case cartsvc.ErrModeUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "listing does not offer that mode"})
	default:
		h.Log.Error("cart", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
