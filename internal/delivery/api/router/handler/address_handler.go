package handler

import (
	"net/http"

	"restapi/internal/delivery/api/middleware"
	"restapi/internal/delivery/api/response"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"
	"restapi/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type addressRequest struct {
	Street    string     `json:"street" validate:"required"`
	Area      string     `json:"area"`
	City      string     `json:"city" validate:"required"`
	State     string     `json:"state" validate:"required"`
	Landmark  string     `json:"landmark"`
	Pincode   flexString `json:"pincode" validate:"required"`
	Latitude  float64    `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"long" validate:"gte=-180,lte=180"`
	Tag       string     `json:"tag" validate:"omitempty,oneof=home office other"`
	UserID    *uuid.UUID `json:"userId"`
}

func (r *addressRequest) input() *usecase.AddressInput {
	return &usecase.AddressInput{
		Street:    r.Street,
		Area:      r.Area,
		City:      r.City,
		State:     r.State,
		Landmark:  r.Landmark,
		Pincode:   string(r.Pincode),
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Tag:       r.Tag,
		UserID:    r.UserID,
	}
}

// AddressHandler serves the address book of the signed in user.
type AddressHandler struct {
	addresses usecase.AddressUsecase
}

// NewAddressHandler is the constructor for AddressHandler, injected by Fx.
func NewAddressHandler(addresses usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// List handles GET /address.
func (h *AddressHandler) List(c echo.Context) error {
	q := listQuery(c, nil)

	out, err := h.addresses.List(c.Request().Context(), middleware.CurrentUser(c), q)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*entity.AddressView, 0, len(out.Addresses))
	for _, address := range out.Addresses {
		views = append(views, entity.NewAddressView(address))
	}

	return listResponse(c, "addresses", out.Count, views, q.Select)
}

// Create handles POST /address.
func (h *AddressHandler) Create(c echo.Context) error {
	var req addressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	address, err := h.addresses.Create(c.Request().Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, entity.NewAddressView(address))
}

// Get handles GET /address/:id.
func (h *AddressHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	address, err := h.addresses.Get(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return errors.WithStack(err)
	}

	view, err := query.Project(entity.NewAddressView(address), listQuery(c, nil).Select)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, view)
}

// Update handles PUT /address/:id.
func (h *AddressHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req addressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	address, err := h.addresses.Update(c.Request().Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, entity.NewAddressView(address))
}

// Delete handles DELETE /address/:id.
func (h *AddressHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.addresses.Delete(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Address deleted successfully")
}
