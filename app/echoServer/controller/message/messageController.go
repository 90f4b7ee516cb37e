package message

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"campusmarket/app/echoServer/jwtx"
	"campusmarket/model"
	messagerepo "campusmarket/repository/message"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Messages messagerepo.Repo
	V        *validator.Validate
	Log      *slog.Logger
}

type SendReq struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	BookID     int64  `json:"book_id" validate:"required,gt=0"`
	Text       string `json:"text" validate:"required"`
}

// POST /v1/chats
func (h *Controller) Send(c echo.Context) error {
	var req SendReq
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
	if req.ReceiverID == uid {
		return c.JSON(http.StatusConflict, echo.Map{"message": "cannot message yourself"})
	}

	m := &model.Message{
		SenderID:   uid,
		ReceiverID: req.ReceiverID,
		BookID:     req.BookID,
		Text:       strings.TrimSpace(req.Text),
		Type:       model.MsgText,
	}
	if m.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "empty message"})
	}
	if err := h.Messages.Send(c.Request().Context(), m); err != nil {
		h.Log.Error("chat send", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": m})
}

// GET /v1/chats/:bookId?peer_id=N
func (h *Controller) Thread(c echo.Context) error {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	peerID, err := strconv.ParseInt(c.QueryParam("peer_id"), 10, 64)
	if err != nil || peerID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid peer id"})
	}
	uid, _ := jwtx.UserIDFromContext(c)

	rows, err := h.Messages.ListChat(c.Request().Context(), messagerepo.ChatKey(uid, peerID, bookID))
	if err != nil {
		h.Log.Error("chat thread", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
