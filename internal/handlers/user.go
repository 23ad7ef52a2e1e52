package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/hash"
	"github.com/rentkart/rentkart/internal/logging"
	authmw "github.com/rentkart/rentkart/internal/middleware/auth"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/mykafka"
	"github.com/rentkart/rentkart/internal/transport"
)

type UserHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

func (h *UserHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *UserHandler) profileResponse(user *models.User) (*transport.UserResponse, error) {
	token, err := authmw.GenerateToken(user, h.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &transport.UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}

func (h *UserHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		l.Warn("signup_error", "status", 400, "reason", "missing credentials")
		return echo.NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	var existing models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		l.Warn("signup_failed", "status", 409, "reason", "email taken")
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("signup_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot hash the password")
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: pwHash,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		l.Error("signup_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	resp, err := h.profileResponse(&user)
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	h.publish(c, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})

	l.Info("signup_success")
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Signin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.signin")

	var req transport.SigninRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signin_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		l.Warn("signin_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if !hash.CheckPassword(user.Password, req.Password) {
		l.Warn("signin_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	resp, err := h.profileResponse(&user)
	if err != nil {
		l.Error("signin_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	h.publish(c, map[string]any{
		"type":   "user_signed_in",
		"userID": user.ID,
	})

	l.Info("signin_success")
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) EditProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.edit_profile")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req transport.ProfileEditRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("edit_profile_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("edit_profile_failed", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "User Not Found")
		}
		l.Error("edit_profile_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			l.Error("edit_profile_failed", "status", 500, "reason", "cannot hash the password", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot hash the password")
		}
		user.Password = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		l.Error("edit_profile_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	resp, err := h.profileResponse(&user)
	if err != nil {
		l.Error("edit_profile_failed", "status", 500, "reason", "cannot create token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create token")
	}

	l.Info("edit_profile_success")
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_users")

	var users []models.User
	if err := h.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		l.Error("get_users_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get users")
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_user_failed", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_user_failed", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "User Not Found")
		}
		l.Error("get_user_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get user")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("update_user_failed", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var req transport.UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_user_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("update_user_failed", "status", 404, "reason", "user not found")
			return echo.NewHTTPError(http.StatusNotFound, "User Not Found")
		}
		l.Error("update_user_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get user")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	user.IsAdmin = bool(req.IsAdmin)

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		l.Error("update_user_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update user")
	}

	h.publish(c, map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
	})

	l.Info("update_user_success")
	return c.JSON(http.StatusOK, map[string]any{"message": "User Updated", "user": user})
}

// GetStaff lists admin accounts for the dashboard staff view.
func (h *UserHandler) GetStaff(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_staff")

	var users []models.User
	if err := h.DB.WithContext(ctx).Where("is_admin = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		l.Error("get_staff_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get staff")
	}

	return c.JSON(http.StatusOK, users)
}
