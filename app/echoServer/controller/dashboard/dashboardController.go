package dashboard

import (
	"log/slog"
	"net/http"

	"campusmarket/app/echoServer/jwtx"
	dashsvc "campusmarket/service/dashboard"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc dashsvc.Service
	Log *slog.Logger
}

// GET /v1/dashboard
func (h *Controller) Get(c echo.Context) error {
	uid, _ := jwtx.UserIDFromContext(c)

	view, err := h.Svc.Aggregate(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("dashboard", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": view})
}
