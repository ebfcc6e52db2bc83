package handler

import (
	"errors"
	"net/http"

	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

type errorMapping struct {
	err     error
	status  int
	message string
}

// serviceErrors maps service sentinels to a status and client message.
var serviceErrors = []errorMapping{
	{service.ErrOnlyCustomersOrder, http.StatusForbidden, "Only customers can place orders"},
	{service.ErrOrderFieldsRequired, http.StatusBadRequest, "tailor_id and design_url are required"},
	{service.ErrInvalidTailor, http.StatusBadRequest, "Invalid tailor"},
	{service.ErrOrderNotFound, http.StatusNotFound, "Order not found or unauthorized"},
	{service.ErrCancelWindowPassed, http.StatusBadRequest, "Order cannot be cancelled after 24 hours"},
	{service.ErrNotPendingCancel, http.StatusBadRequest, "Only pending orders can be cancelled"},
	{service.ErrOnlyTailorsConfirm, http.StatusForbidden, "Only tailors can confirm delivery"},
	{service.ErrNotPendingConfirm, http.StatusBadRequest, "Only pending orders can be confirmed"},
	{service.ErrOnlyTailorsComplete, http.StatusForbidden, "Only tailors can complete orders"},
	{service.ErrNotInProgress, http.StatusBadRequest, "Only in-progress orders can be completed"},

	{service.ErrOnlyCustomersChat, http.StatusForbidden, "Only customers can create chats"},
	{service.ErrInvalidTailorID, http.StatusBadRequest, "Invalid tailorId"},
	{service.ErrTailorNotFound, http.StatusNotFound, "Tailor not found"},
	{service.ErrChatNotFound, http.StatusNotFound, "Chat not found"},
	{service.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{service.ErrChatExists, http.StatusConflict, "Chat already exists"},
	{service.ErrInvalidContent, http.StatusBadRequest, "Invalid message content"},

	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrAlreadyRegistered, http.StatusConflict, "User already registered"},
	{service.ErrUsernameTaken, http.StatusConflict, "Username already taken"},
	{service.ErrInvalidRole, http.StatusBadRequest, "Invalid role"},
	{service.ErrOnlyCustomersMeasure, http.StatusForbidden, "Only customers can record measurements"},

	{service.ErrUnsupportedLanguage, http.StatusBadRequest, "Invalid messageId or unsupported target language"},
	{service.ErrMessageNotFound, http.StatusNotFound, "Message not found"},

	{service.ErrOnlyTailorsDesign, http.StatusForbidden, "Only tailors can upload designs"},
	{service.ErrDesignFields, http.StatusBadRequest, "Missing required fields"},
	{service.ErrInvalidImage, http.StatusBadRequest, "Invalid image format"},
}

// writeServiceError renders err as {"error": ...}. Unmapped errors are store
// failures and go out as 500 with their text.
func writeServiceError(c echo.Context, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return c.JSON(m.status, NewErrorResponse(m.message))
		}
	}
	if errors.Is(err, repository.ErrDBNotReady) {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("Service is starting, try again shortly"))
	}
	var te *service.TranslationError
	if errors.As(err, &te) {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("Translation failed: "+te.Err.Error()))
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, NewErrorResponse(err.Error()))
}

var errBadBody = errors.New("invalid request body")

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("Unauthorized"))
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse(msg))
}

func callerID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

// bindAndValidate binds the body and runs the echo validator when one is set.
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errBadBody
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(v)
}
