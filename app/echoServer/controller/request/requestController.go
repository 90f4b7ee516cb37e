package request

import (
	"log/slog"
	"net/http"
	"strconv"

	"campusmarket/app/echoServer/jwtx"
	"campusmarket/model"
	reqsvc "campusmarket/service/request"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reqsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/requests
func (h *Controller) Create(c echo.Context) error {
	var req CreateRequestReq
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

	rec, err := h.Svc.Create(c.Request().Context(), uid, reqsvc.CreateInput{
		Kind:           model.RequestKind(req.Kind),
		BookID:         req.BookID,
		Duration:       req.Duration,
		Deposit:        req.Deposit,
		OfferedBookIDs: req.OfferedBookIDs,
	})
	if err != nil {
		return h.mapErr(c, err, "request create")
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": rec})
}

// POST /v1/requests/:id/respond
func (h *Controller) Respond(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RespondReq
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

	rec, err := h.Svc.Respond(c.Request().Context(), id, uid, reqsvc.Decision(req.Decision))
	if err != nil {
		return h.mapErr(c, err, "request respond")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rec})
}

// POST /v1/requests/:id/handover
func (h *Controller) HandOver(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	rec, err := h.Svc.HandOver(c.Request().Context(), id, uid)
	if err != nil {
		return h.mapErr(c, err, "request handover")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rec})
}

// POST /v1/requests/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	rec, err := h.Svc.Return(c.Request().Context(), id, uid)
	if err != nil {
		return h.mapErr(c, err, "request return")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rec})
}

// GET /v1/requests/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	rec, err := h.Svc.Get(c.Request().Context(), id, uid)
	if err != nil {
		return h.mapErr(c, err, "request detail")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rec})
}

// GET /v1/requests/incoming
func (h *Controller) Incoming(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)
	rows, err := h.Svc.Incoming(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("request incoming", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/requests/outgoing
func (h *Controller) Outgoing(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)
	rows, err := h.Svc.Outgoing(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("request outgoing", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) mapErr(c echo.Context, err error, op string) error {
	switch reqsvc.Code(err) {
	case reqsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
	case reqsvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case reqsvc.ErrNotAllowed:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case reqsvc.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "request already resolved"})
	case reqsvc.ErrSelfRequest:
		return c.JSON(http.StatusConflict, echo.Map{"message": "cannot request your own book"})
	case reqsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
