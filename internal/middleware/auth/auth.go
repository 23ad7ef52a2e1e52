package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rentkart/rentkart/internal/models"
)

const tokenTTL = 30 * 24 * time.Hour

// GenerateToken signs an HS256 bearer token carrying the user's identity
// and admin flag.
func GenerateToken(user *models.User, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":     user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func parseToken(raw string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	return claims, nil
}

func setUserContext(c echo.Context, claims jwt.MapClaims) error {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return fmt.Errorf("missing sub claim")
	}
	c.Set("userID", uint(sub))
	if name, ok := claims["name"].(string); ok {
		c.Set("userName", name)
	}
	if email, ok := claims["email"].(string); ok {
		c.Set("userEmail", email)
	}
	isAdmin, _ := claims["isAdmin"].(bool)
	c.Set("isAdmin", isAdmin)
	return nil
}

// RequireAuth validates the Authorization bearer token and stores the
// caller's identity in the echo context.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No Token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == header {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
			}

			claims, err := parseToken(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
			}
			if err := setUserContext(c, claims); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Token")
			}
			return next(c)
		}
	}
}

// AdminOnly rejects callers whose token does not carry the admin flag.
// It must run after RequireAuth.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		isAdmin, _ := c.Get("isAdmin").(bool)
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Invalid Admin Token")
		}
		return next(c)
	}
}

// UserID returns the authenticated caller's id from the echo context.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "No Token")
	}
	return id, nil
}

// UserName returns the authenticated caller's display name.
func UserName(c echo.Context) (string, error) {
	name, ok := c.Get("userName").(string)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "No Token")
	}
	return name, nil
}
