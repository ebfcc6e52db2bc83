package handler

import (
	"net/http"
	"strconv"

	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type DesignHandler struct {
	svc service.DesignService
}

func NewDesignHandler(svc service.DesignService) *DesignHandler {
	return &DesignHandler{svc: svc}
}

type createDesignRequest struct {
	Name            string   `json:"name"`
	Image           string   `json:"image"`
	ExtractedDesign string   `json:"extractedDesign"`
	Tags            []uint64 `json:"tags"`
}

func (h *DesignHandler) Create(c echo.Context) error {
	uid := callerID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var body createDesignRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, errBadBody.Error())
	}
	d, err := h.svc.Create(c.Request().Context(), uid, service.DesignInput{
		Name:            body.Name,
		Image:           body.Image,
		ExtractedDesign: body.ExtractedDesign,
		TagIDs:          body.Tags,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"design": toDesignResponse(d)})
}

func (h *DesignHandler) List(c echo.Context) error {
	limit := 20
	if lStr := c.QueryParam("limit"); lStr != "" {
		if lParsed, err := strconv.Atoi(lStr); err == nil && lParsed > 0 {
			limit = lParsed
		}
	}
	offset := 0
	if oStr := c.QueryParam("offset"); oStr != "" {
		if oParsed, err := strconv.Atoi(oStr); err == nil && oParsed >= 0 {
			offset = oParsed
		}
	}
	list, total, err := h.svc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]DesignResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toDesignResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"designs": resp,
		"total":   total,
	})
}

func (h *DesignHandler) ListTags(c echo.Context) error {
	tags, err := h.svc.ListTags(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tags": tags})
}
