package handler

import (
	"net/http"

	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type TranslateHandler struct {
	svc service.TranslationService
}

func NewTranslateHandler(svc service.TranslationService) *TranslateHandler {
	return &TranslateHandler{svc: svc}
}

type translateRequest struct {
	MessageID      string `json:"messageId"`
	TargetLanguage string `json:"targetLanguage"`
}

func (h *TranslateHandler) Translate(c echo.Context) error {
	if callerID(c) == "" {
		return unauthorized(c)
	}
	var body translateRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errBadBody.Error())
	}
	text, err := h.svc.Translate(c.Request().Context(), body.MessageID, body.TargetLanguage)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"translatedText": text})
}
