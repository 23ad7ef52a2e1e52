package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/rentkart/rentkart/internal/hash"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/transport"
)

func testUserHandler(t *testing.T) *UserHandler {
	t.Helper()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test-secret"
	}
	return &UserHandler{
		DB:        InitTestDB(t),
		Producer:  testProducer(),
		JWTSecret: []byte(secret),
	}
}

func TestSignup(t *testing.T) {
	h := testUserHandler(t)

	rec, c := doJSONRequest(t, http.MethodPost, "/api/users/signup", transport.SignupRequest{
		Name:     "test user",
		Email:    "test@example.com",
		Password: "password",
	})
	require.NoError(t, h.Signup(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "test user", resp.Name)
	require.Equal(t, "test@example.com", resp.Email)
	require.False(t, resp.IsAdmin)
	require.NotEmpty(t, resp.Token)

	var stored models.User
	require.NoError(t, h.DB.Where("email = ?", "test@example.com").First(&stored).Error)
	require.NotEqual(t, "password", stored.Password)
	require.True(t, hash.CheckPassword(stored.Password, "password"))
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := testUserHandler(t)

	payload := transport.SignupRequest{Name: "a", Email: "dup@example.com", Password: "pw"}

	_, c := doJSONRequest(t, http.MethodPost, "/api/users/signup", payload)
	require.NoError(t, h.Signup(c))

	_, c = doJSONRequest(t, http.MethodPost, "/api/users/signup", payload)
	err := h.Signup(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestSignin(t *testing.T) {
	h := testUserHandler(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := models.User{Name: "test user", Email: "test@example.com", Password: pwHash}
	require.NoError(t, h.DB.Create(&user).Error)

	rec, c := doJSONRequest(t, http.MethodPost, "/api/users/signin", transport.SigninRequest{
		Email:    "test@example.com",
		Password: "password",
	})
	require.NoError(t, h.Signin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.ID)
	require.NotEmpty(t, resp.Token)
}

func TestSigninWrongPassword(t *testing.T) {
	h := testUserHandler(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, h.DB.Create(&models.User{Name: "u", Email: "u@example.com", Password: pwHash}).Error)

	_, c := doJSONRequest(t, http.MethodPost, "/api/users/signin", transport.SigninRequest{
		Email:    "u@example.com",
		Password: "wrong",
	})
	err = h.Signin(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestUpdateUserAcceptsLegacyAdminString(t *testing.T) {
	h := testUserHandler(t)

	admin := createTestUser(t, h.DB, "root", true)
	target := createTestUser(t, h.DB, "plain", false)

	// legacy clients send the admin flag as the string "true"
	rec, c := doJSONRequest(t, http.MethodPut, "/api/users/2", map[string]any{
		"name":    "promoted",
		"isAdmin": "true",
	})
	c.SetParamNames("id")
	c.SetParamValues("2")
	asUser(c, admin)

	require.NoError(t, h.UpdateUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, h.DB.First(&stored, target.ID).Error)
	require.True(t, stored.IsAdmin)
	require.Equal(t, "promoted", stored.Name)
}

func TestGetStaffListsAdminsOnly(t *testing.T) {
	h := testUserHandler(t)

	createTestUser(t, h.DB, "root", true)
	createTestUser(t, h.DB, "plain", false)

	rec, c := doJSONRequest(t, http.MethodGet, "/api/users/staff/get-all-staff", nil)
	require.NoError(t, h.GetStaff(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var staff []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &staff))
	require.Len(t, staff, 1)
	require.Equal(t, "root", staff[0].Name)
}
