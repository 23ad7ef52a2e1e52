package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/mykafka"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Review{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Reservation{},
		&models.ReservationItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func doJSONRequest(t *testing.T, method, target string, payload any) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	e := echo.New()
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func asUser(c echo.Context, user *models.User) {
	c.Set("userID", user.ID)
	c.Set("userName", user.Name)
	c.Set("userEmail", user.Email)
	c.Set("isAdmin", user.IsAdmin)
}

func createTestUser(t *testing.T, db *gorm.DB, name string, admin bool) *models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		IsAdmin:  admin,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func testProducer() *mykafka.Producer {
	return &mykafka.Producer{}
}
