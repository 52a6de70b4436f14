package users

import (
	"context"
	"errors"

	"user-pulse/cmd/server/handlers/handlerutil"
	"user-pulse/cmd/server/handlers/httperr"
	"user-pulse/internal/logger"
	"user-pulse/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Fixed response bodies.
const (
	MsgUnableToLogin = "Unable to login"
	MsgLoggedOut     = "Successfully logged out"
	MsgLoggedOutAll  = "Successfully logged out from all devices"
)

// UserService defines the interface for the users service
type UserService interface {
	SignUp(ctx context.Context, req users.SignUpRequest) (*users.AuthResponse, error)
	Login(ctx context.Context, req users.LoginRequest) (*users.AuthResponse, error)
	Logout(ctx context.Context, sess users.Session) error
	LogoutAll(ctx context.Context, sess users.Session) error
	Get(ctx context.Context, id string) (*users.User, error)
	Update(ctx context.Context, sess users.Session, upd *users.Update) (*users.User, error)
	Delete(ctx context.Context, sess users.Session) (*users.User, error)
}

// Handlers contains the users HTTP handlers
type Handlers struct {
	svc       UserService
	validator *validator.Validate
}

// NewHandlers creates new users handlers
func NewHandlers(svc UserService, v *validator.Validate) *Handlers {
	return &Handlers{
		svc:       svc,
		validator: v,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body users.SignUpRequest true "Sign up request"
// @Success 201 {object} users.AuthResponse
// @Failure 400 {object} httperr.E
// @Router /users [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req users.SignUpRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignUp"); err != nil {
		return err
	}

	resp, err := h.svc.SignUp(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) || errors.Is(err, users.ErrInvalidValue) {
			logger.L().Warn("signup rejected", "handler", "SignUp", "email", req.Email, "error", err)
		} else {
			logger.L().Error("signup service failed", "handler", "SignUp", "email", req.Email, "error", err)
		}
		return httperr.BadRequest(err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles user authentication. Every failure looks the same to the client.
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param request body users.LoginRequest true "Login request"
// @Success 200 {object} users.AuthResponse
// @Failure 400 {string} string "Unable to login"
// @Router /users/login [post]
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req users.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.L().Warn("failed to parse login request body", "handler", "Login", "error", err)
		return httperr.Text(fiber.StatusBadRequest, MsgUnableToLogin)
	}

	if err := h.validator.Struct(req); err != nil {
		logger.L().Warn("login request validation failed", "handler", "Login", "error", err)
		return httperr.Text(fiber.StatusBadRequest, MsgUnableToLogin)
	}

	resp, err := h.svc.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			logger.L().Warn("login failed", "handler", "Login", "email", req.Email, "remote", c.IP(), "error", err)
		} else {
			logger.L().Error("login service failed", "handler", "Login", "email", req.Email, "error", err)
		}
		return httperr.Text(fiber.StatusBadRequest, MsgUnableToLogin)
	}

	return c.JSON(resp)
}

// Logout drops the token used for this request.
// @Summary Log out the current session
// @Tags users
// @Produce plain
// @Security Bearer
// @Success 200 {string} string "Successfully logged out"
// @Failure 401 {object} httperr.E
// @Failure 500 "empty body"
// @Router /users/logout [post]
func (h *Handlers) Logout(c *fiber.Ctx, sess users.Session) error {
	if err := h.svc.Logout(c.UserContext(), sess); err != nil {
		logger.L().Error("logout service failed", "handler", "Logout", "userID", sess.User.ID.Hex(), "error", err)
		return httperr.Empty(fiber.StatusInternalServerError)
	}
	return c.SendString(MsgLoggedOut)
}

// LogoutAll drops every session of the current user.
// @Summary Log out from all devices
// @Tags users
// @Produce plain
// @Security Bearer
// @Success 200 {string} string "Successfully logged out from all devices"
// @Failure 401 {object} httperr.E
// @Failure 500 "empty body"
// @Router /users/logoutAll [post]
func (h *Handlers) LogoutAll(c *fiber.Ctx, sess users.Session) error {
	if err := h.svc.LogoutAll(c.UserContext(), sess); err != nil {
		logger.L().Error("logout all service failed", "handler", "LogoutAll", "userID", sess.User.ID.Hex(), "error", err)
		return httperr.Empty(fiber.StatusInternalServerError)
	}
	return c.SendString(MsgLoggedOutAll)
}

// Me returns the authenticated user.
// @Summary Get current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} users.User
// @Failure 401 {object} httperr.E
// @Router /users/me [get]
func (h *Handlers) Me(c *fiber.Ctx, sess users.Session) error {
	return c.JSON(sess.User)
}

// GetByID returns any user by id.
// @Summary Get a user by id
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} users.User
// @Failure 404 {string} string "user not found"
// @Failure 500 {object} httperr.E
// @Router /users/{id} [get]
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")

	user, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			logger.L().Info("user not found", "handler", "GetByID", "id", id)
			return httperr.Text(fiber.StatusNotFound, users.ErrUserNotFound.Error())
		}
		logger.L().Error("user lookup failed", "handler", "GetByID", "id", id, "error", err)
		return httperr.Fail(httperr.InternalError(err.Error()))
	}

	return c.JSON(user)
}

// Update patches the current user with an allow-listed set of fields.
// @Summary Update current user
// @Description Keys must be a subset of name, email, password, age, dob, mobile, gender.
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body users.Update true "Fields to change"
// @Success 200 {object} users.User
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /users/me [patch]
func (h *Handlers) Update(c *fiber.Ctx, sess users.Session) error {
	userID := sess.User.ID.Hex()

	upd, err := users.ParseUpdate(c.Body())
	if err != nil {
		logger.L().Warn("update rejected", "handler", "Update", "userID", userID, "error", err)
		if errors.Is(err, users.ErrInvalidOperation) {
			return httperr.Text(fiber.StatusBadRequest, users.ErrInvalidOperation.Error())
		}
		return httperr.BadRequest(err)
	}

	if err := h.validator.Struct(upd); err != nil {
		logger.L().Warn("update validation failed", "handler", "Update", "userID", userID, "error", err)
		return httperr.InvalidInput(err)
	}

	user, err := h.svc.Update(c.UserContext(), sess, upd)
	if err != nil {
		logger.L().Warn("update failed", "handler", "Update", "userID", userID, "error", err)
		return httperr.BadRequest(err)
	}

	return c.JSON(user)
}

// Delete removes the current user.
// @Summary Delete current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} users.User
// @Failure 401 {object} httperr.E
// @Failure 404 "empty body"
// @Router /users/me [delete]
func (h *Handlers) Delete(c *fiber.Ctx, sess users.Session) error {
	removed, err := h.svc.Delete(c.UserContext(), sess)
	if err != nil {
		logger.L().Warn("delete failed", "handler", "Delete", "userID", sess.User.ID.Hex(), "error", err)
		return httperr.Empty(fiber.StatusNotFound)
	}
	return c.JSON(removed)
}
