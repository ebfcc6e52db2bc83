package handler

import (
	"net/http"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type registerRequest struct {
	Username          string  `json:"username" validate:"required,max=64"`
	Email             string  `json:"email" validate:"required,email"`
	Role              string  `json:"role" validate:"required,oneof=customer tailor"`
	FullName          *string `json:"full_name" validate:"omitempty,max=255"`
	Location          *string `json:"location" validate:"omitempty,max=255"`
	Dialect           *string `json:"dialect" validate:"omitempty,max=64"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,max=512"`
	Bio               *string `json:"bio"`
}

type measurementsRequest struct {
	RightArmLength  *float64 `json:"right_arm_length" validate:"omitempty,gt=0"`
	ShoulderWidth   *float64 `json:"shoulder_width" validate:"omitempty,gt=0"`
	LeftArmLength   *float64 `json:"left_arm_length" validate:"omitempty,gt=0"`
	UpperBodyHeight *float64 `json:"upper_body_height" validate:"omitempty,gt=0"`
	HipWidth        *float64 `json:"hip_width" validate:"omitempty,gt=0"`
}

func (h *UserHandler) Register(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body registerRequest
	if err := bindAndValidate(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), uid, service.RegisterInput{
		Username:          body.Username,
		Email:             body.Email,
		Role:              model.Role(body.Role),
		FullName:          body.FullName,
		Location:          body.Location,
		Dialect:           body.Dialect,
		ProfilePictureURL: body.ProfilePictureURL,
		Bio:               body.Bio,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"user": u})
}

func (h *UserHandler) Me(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	u, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": u})
}

func (h *UserHandler) UpdateMeasurements(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body measurementsRequest
	if err := bindAndValidate(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	u, err := h.svc.UpdateMeasurements(c.Request().Context(), uid, repository.Measurements{
		RightArmLength:  body.RightArmLength,
		ShoulderWidth:   body.ShoulderWidth,
		LeftArmLength:   body.LeftArmLength,
		UpperBodyHeight: body.UpperBodyHeight,
		HipWidth:        body.HipWidth,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": u})
}

func (h *UserHandler) ListTailors(c echo.Context) error {
	list, err := h.svc.ListTailors(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]*PublicProfile, 0, len(list))
	for i := range list {
		resp = append(resp, toPublicProfile(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tailors": resp})
}

// CompletedCount reports 0 rather than an error when the count fails.
func (h *UserHandler) CompletedCount(c echo.Context) error {
	n, err := h.svc.CompletedCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Str("tailor_id", c.Param("id")).Msg("completed count")
		n = 0
	}
	return c.JSON(http.StatusOK, map[string]int64{"completedCount": n})
}
