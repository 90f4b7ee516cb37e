package checkout

import (
	"log/slog"
	"net/http"

	"campusmarket/app/echoServer/jwtx"
	"campusmarket/model"
	checkoutsvc "campusmarket/service/checkout"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc checkoutsvc.Service
	Log *slog.Logger
}

// GET /v1/checkout/quote?delivery=SHIP|PICKUP
func (h *Controller) Quote(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)

	delivery := model.DeliveryOption(c.QueryParam("delivery"))
	if delivery != model.DeliveryShip && delivery != model.DeliveryPickup {
		delivery = model.DeliveryPickup
	}

	q, err := h.Svc.Quote(uid, delivery)
	if err != nil {
		if checkoutsvc.Code(err) == checkoutsvc.ErrNotAuthenticated {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		h.Log.Error("quote", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": q})
}

// POST /v1/checkout
//
// Returns 201 with an order id, or 422 with a field-keyed error map. A
// validation failure applies nothing; the form can be corrected and
// resubmitted.
func (h *Controller) Submit(c echo.Context) error {
	var form checkoutsvc.Form
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	rcpt, fieldErrs, err := h.Svc.Submit(c.Request().Context(), uid, form)
	if err != nil {
		switch checkoutsvc.Code(err) {
		case checkoutsvc.ErrNotAuthenticated:
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		case checkoutsvc.ErrEmptyCart:
			return c.JSON(http.StatusConflict, echo.Map{"message": "cart is empty"})
		default:
			h.Log.Error("checkout submit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "validation error",
			"errors":  fieldErrs,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":         rcpt.OrderID,
		"totals":           rcpt.Totals,
		"swap_request_ids": rcpt.Swaps,
	})
}
