package handler

import (
	"net/http"

	"restapi/internal/delivery/api/middleware"
	"restapi/internal/delivery/api/response"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"
	"restapi/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ActivityHandler exposes the audit trail.
type ActivityHandler struct {
	activities usecase.ActivityUsecase
}

// NewActivityHandler is the constructor for ActivityHandler, injected by Fx.
func NewActivityHandler(activities usecase.ActivityUsecase) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// List handles GET /activities.
func (h *ActivityHandler) List(c echo.Context) error {
	q := listQuery(c, nil)

	out, err := h.activities.List(c.Request().Context(), middleware.CurrentUser(c), q)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*entity.ActivityView, 0, len(out.Activities))
	for _, activity := range out.Activities {
		views = append(views, entity.NewActivityView(activity))
	}

	return listResponse(c, "activities", out.Count, views, q.Select)
}

// Get handles GET /activities/:id.
func (h *ActivityHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	activity, err := h.activities.Get(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return errors.WithStack(err)
	}

	view, err := query.Project(entity.NewActivityView(activity), listQuery(c, nil).Select)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, view)
}

// Delete handles DELETE /activities/:id.
func (h *ActivityHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.activities.Delete(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Activity deleted successfully")
}
