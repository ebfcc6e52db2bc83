package handler

import (
	"errors"
	"net/http"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/realtime"
	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type ChatHandler struct {
	svc service.ChatService
	hub *realtime.Hub
}

// NewChatHandler serves the websocket feed only when hub is non-nil.
func NewChatHandler(svc service.ChatService, hub *realtime.Hub) *ChatHandler {
	return &ChatHandler{svc: svc, hub: hub}
}

type chatTargetRequest struct {
	TailorID string `json:"tailorId"`
}

type sendMessageRequest struct {
	Content           string             `json:"content"`
	Language          *string            `json:"language"`
	TranslatedContent model.Translations `json:"translated_content"`
}

// CheckOrCreate answers 200 with the existing chat or 201 with a new one.
func (h *ChatHandler) CheckOrCreate(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body chatTargetRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errBadBody.Error())
	}
	d, created, err := h.svc.CheckOrCreate(c.Request().Context(), uid, body.TailorID)
	if err != nil {
		return writeServiceError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, map[string]interface{}{"chat": toChatResponse(d)})
}

func (h *ChatHandler) Create(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body chatTargetRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errBadBody.Error())
	}
	d, err := h.svc.Create(c.Request().Context(), uid, body.TailorID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"chat": toChatResponse(d)})
}

func (h *ChatHandler) List(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.List(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]ChatResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toChatResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"chats": resp})
}

func (h *ChatHandler) Get(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	d, err := h.svc.Get(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"chat": toChatResponse(d)})
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.ListMessages(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]MessageResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toMessageResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"messages": resp})
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body sendMessageRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errBadBody.Error())
	}
	d, err := h.svc.SendMessage(c.Request().Context(), c.Param("id"), uid, service.NewMessage{
		Content:           body.Content,
		Language:          body.Language,
		TranslatedContent: body.TranslatedContent,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"message": toMessageResponse(d)})
}

// Stream upgrades to a websocket carrying the chat's new messages.
func (h *ChatHandler) Stream(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	if h.hub == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("realtime feed disabled"))
	}
	ctx := c.Request().Context()
	if _, err := h.svc.Get(ctx, c.Param("id"), uid); err != nil {
		return writeServiceError(c, err)
	}
	err := realtime.Serve(c.Response(), c.Request(), h.hub, c.Param("id"))
	if errors.Is(err, realtime.ErrHubClosed) {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("realtime feed disabled"))
	}
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("websocket closed")
	}
	return nil
}
