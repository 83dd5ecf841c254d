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

type createUserRequest struct {
	FirstName string     `json:"firstName" validate:"required"`
	LastName  string     `json:"lastName" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,password"`
	Phone     flexString `json:"phone"`
	Role      string     `json:"role" validate:"omitempty,oneof=user admin"`
	Gender    string     `json:"gender" validate:"omitempty,oneof=male female other na"`
	BirthDate *flexDate  `json:"dob"`
	Bio       string     `json:"bio"`
	Image     string     `json:"image" validate:"omitempty,url"`
	Active    bool       `json:"activeFlag"`
}

type updateUserRequest struct {
	FirstName *string     `json:"firstName" validate:"omitempty,min=1"`
	LastName  *string     `json:"lastName" validate:"omitempty,min=1"`
	Phone     *flexString `json:"phone"`
	Password  *string     `json:"password" validate:"omitempty,password"`
	Role      *string     `json:"role" validate:"omitempty,oneof=user admin"`
	Gender    *string     `json:"gender" validate:"omitempty,oneof=male female other na"`
	BirthDate *flexDate   `json:"dob"`
	Bio       *string     `json:"bio"`
	Image     *string     `json:"image" validate:"omitempty,url"`
}

// UserHandler serves user administration and profiles.
type UserHandler struct {
	users usecase.UserUsecase
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(users usecase.UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /users.
func (h *UserHandler) List(c echo.Context) error {
	q := listQuery(c, entity.UserSecureFields)

	out, err := h.users.List(c.Request().Context(), q)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*entity.UserView, 0, len(out.Users))
	for _, user := range out.Users {
		views = append(views, entity.NewUserView(user))
	}

	return listResponse(c, "users", out.Count, views, q.Select)
}

// Create handles POST /users.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), middleware.CurrentUser(c), &usecase.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     string(req.Phone),
		Password:  req.Password,
		Role:      entity.RoleOrDefault(req.Role),
		Gender:    req.Gender,
		BirthDate: req.BirthDate.ptr(),
		Bio:       req.Bio,
		Image:     req.Image,
		Active:    req.Active,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, entity.NewUserView(user))
}

// Profile handles GET /users/profile.
func (h *UserHandler) Profile(c echo.Context) error {
	return response.JSON(c, http.StatusOK, entity.NewUserView(middleware.CurrentUser(c)))
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	view, err := query.Project(entity.NewUserView(user), listQuery(c, entity.UserSecureFields).Select)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, view)
}

// Update handles PUT /users/:id.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := &usecase.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Gender:    req.Gender,
		BirthDate: req.BirthDate.ptr(),
		Bio:       req.Bio,
		Image:     req.Image,
	}
	if req.Phone != nil {
		phone := string(*req.Phone)
		input.Phone = &phone
	}
	if req.Role != nil {
		role := entity.RoleOrDefault(*req.Role)
		input.Role = &role
	}

	user, err := h.users.Update(c.Request().Context(), middleware.CurrentUser(c), id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusOK, entity.NewUserView(user))
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "User deleted successfully")
}
