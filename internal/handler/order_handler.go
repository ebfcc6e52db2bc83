package handler

import (
	"net/http"

	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	TailorID  string `json:"tailor_id"`
	DesignURL string `json:"design_url"`
}

type confirmDeliveryRequest struct {
	DeliveryDate *string `json:"delivery_date"`
}

func (h *OrderHandler) Create(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body createOrderRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errBadBody.Error())
	}
	o, err := h.svc.Create(c.Request().Context(), uid, body.TailorID, body.DesignURL)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"order": o})
}

func (h *OrderHandler) List(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.List(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]OrderResponse, 0, len(list))
	for _, d := range list {
		resp = append(resp, toOrderListResponse(d))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": resp})
}

func (h *OrderHandler) Get(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	d, err := h.svc.Get(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"order": toOrderDetailResponse(d)})
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	o, err := h.svc.Cancel(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"order": o})
}

func (h *OrderHandler) ConfirmDelivery(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	// the body is optional
	var body confirmDeliveryRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return badRequest(c, errBadBody.Error())
		}
	}
	o, err := h.svc.ConfirmDelivery(c.Request().Context(), c.Param("id"), uid, body.DeliveryDate)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"order": o})
}

func (h *OrderHandler) Complete(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	o, err := h.svc.Complete(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"order": o})
}
