package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/lifecycle"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/transport"
)

func seedOrderProducts(t *testing.T, db *gorm.DB) (models.Product, models.Product) {
	t.Helper()

	a := models.Product{Name: "Product A", Slug: "product-a", Price: 10, CountInStock: 5}
	b := models.Product{Name: "Product B", Slug: "product-b", Price: 20, CountInStock: 1}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	return a, b
}

func orderRequest(a, b models.Product) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		OrderItems: []transport.CreateOrderItem{
			{ProductID: a.ID, Name: a.Name, Price: a.Price, Quantity: 2},
			{ProductID: b.ID, Name: b.Name, Price: b.Price, Quantity: 1},
		},
		ShippingAddress: models.ShippingAddress{FullName: "Test User", Address: "1 Main St", City: "Colombo"},
		PaymentMethod:   "PayPal",
		ItemsPrice:      40,
		ShippingPrice:   5,
		TotalPrice:      45,
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)
	a, b := seedOrderProducts(t, db)

	rec, c := doJSONRequest(t, http.MethodPost, "/api/orders", orderRequest(a, b))
	asUser(c, user)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, string(lifecycle.StatusPreparing), resp.Order.DeliveryStatus)
	require.False(t, resp.Order.IsPaid)
	require.Equal(t, 45.0, resp.Order.TotalPrice)
	require.Equal(t, resp.Order.ItemsPrice+resp.Order.ShippingPrice, resp.Order.TotalPrice)

	var storedA, storedB models.Product
	require.NoError(t, db.First(&storedA, a.ID).Error)
	require.NoError(t, db.First(&storedB, b.ID).Error)
	require.Equal(t, 3, storedA.CountInStock)
	require.Equal(t, 0, storedB.CountInStock)
}

func TestCreateOrderInsufficientStockAbortsWholeOrder(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)
	a, b := seedOrderProducts(t, db)

	req := orderRequest(a, b)
	req.OrderItems[1].Quantity = 2 // product B only has 1 in stock

	_, c := doJSONRequest(t, http.MethodPost, "/api/orders", req)
	asUser(c, user)

	err := h.CreateOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count, "no order may be persisted on a stock conflict")

	var storedA models.Product
	require.NoError(t, db.First(&storedA, a.ID).Error)
	require.Equal(t, 5, storedA.CountInStock, "the earlier decrement must be rolled back")
}

func createOrder(t *testing.T, db *gorm.DB, h *OrderHandler, user *models.User) uint {
	t.Helper()

	a, b := seedOrderProducts(t, db)
	rec, c := doJSONRequest(t, http.MethodPost, "/api/orders", orderRequest(a, b))
	asUser(c, user)
	require.NoError(t, h.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Order.ID
}

func transitionOrder(t *testing.T, h *OrderHandler, user *models.User, id string, fn func(echo.Context) error, payload any) error {
	t.Helper()

	_, c := doJSONRequest(t, http.MethodPut, "/api/orders/"+id+"/x", payload)
	c.SetParamNames("id")
	c.SetParamValues(id)
	asUser(c, user)
	return fn(c)
}

func TestOrderLifecycleStrict(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)
	_ = createOrder(t, db, h, user)

	// deliver before dispatch is rejected and leaves the order untouched
	err := transitionOrder(t, h, user, "1", h.Deliver, nil)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	var order models.Order
	require.NoError(t, db.First(&order, 1).Error)
	require.Equal(t, string(lifecycle.StatusPreparing), order.DeliveryStatus)
	require.Nil(t, order.DeliveredAt)

	require.NoError(t, transitionOrder(t, h, user, "1", h.Dispatch, nil))
	require.NoError(t, transitionOrder(t, h, user, "1", h.Deliver, nil))

	require.NoError(t, db.First(&order, 1).Error)
	require.Equal(t, string(lifecycle.StatusDelivered), order.DeliveryStatus)
	require.True(t, order.IsDispatched)
	require.NotNil(t, order.DispatchedAt)
	require.NotNil(t, order.DeliveredAt)
}

func TestOrderLifecyclePermissive(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: false}
	user := createTestUser(t, db, "buyer", false)
	_ = createOrder(t, db, h, user)

	// the historical API accepted any transition order; each call
	// overwrites the relevant flag and timestamp
	require.NoError(t, transitionOrder(t, h, user, "1", h.Pay, transport.PayRequest{
		ID: "PAY-1", Status: "COMPLETED", EmailAddress: "buyer@example.com",
	}))
	require.NoError(t, transitionOrder(t, h, user, "1", h.Deliver, nil))
	require.NoError(t, transitionOrder(t, h, user, "1", h.Dispatch, nil))

	var order models.Order
	require.NoError(t, db.First(&order, 1).Error)
	require.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	require.Equal(t, "PAY-1", order.PaymentResult.ProviderID)
	require.True(t, order.IsDispatched)
	require.NotNil(t, order.DeliveredAt)
	require.Equal(t, string(lifecycle.StatusDispatched), order.DeliveryStatus)
}

func TestPayStoresCallerResultVerbatim(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)
	_ = createOrder(t, db, h, user)

	require.NoError(t, transitionOrder(t, h, user, "1", h.Pay, transport.PayRequest{
		ID:           "PAY-42",
		Status:       "COMPLETED",
		UpdateTime:   "2024-05-01T10:00:00Z",
		EmailAddress: "payer@example.com",
	}))

	var order models.Order
	require.NoError(t, db.First(&order, 1).Error)
	require.True(t, order.IsPaid)
	require.Equal(t, "PAY-42", order.PaymentResult.ProviderID)
	require.Equal(t, "COMPLETED", order.PaymentResult.Status)
	require.Equal(t, "payer@example.com", order.PaymentResult.EmailAddress)
}

func TestGetOrderNotFound(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)

	_, c := doJSONRequest(t, http.MethodGet, "/api/orders/99", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")
	asUser(c, user)

	err := h.GetOrder(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
	require.Equal(t, "Order Not Found", he.Message)
}

func TestGetMineReturnsOwnOrdersOnly(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	buyer := createTestUser(t, db, "buyer", false)
	other := createTestUser(t, db, "other", false)

	_ = createOrder(t, db, h, buyer)

	rec, c := doJSONRequest(t, http.MethodGet, "/api/orders/mine", nil)
	asUser(c, other)
	require.NoError(t, h.GetMine(c))

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Empty(t, orders)

	rec, c = doJSONRequest(t, http.MethodGet, "/api/orders/mine", nil)
	asUser(c, buyer)
	require.NoError(t, h.GetMine(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Len(t, orders[0].OrderItems, 2)
}

func seedOrderAt(t *testing.T, db *gorm.DB, userID uint, address, status string) {
	t.Helper()

	o := models.Order{
		UserID:          userID,
		ShippingAddress: models.ShippingAddress{Address: address, City: "Colombo"},
		DeliveryStatus:  status,
		TotalPrice:      10,
	}
	require.NoError(t, db.Create(&o).Error)
}

func TestGetOrdersByLocationPaginates(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)

	for i := 0; i < 4; i++ {
		seedOrderAt(t, db, user.ID, "1 Main St", string(lifecycle.StatusPreparing))
	}
	seedOrderAt(t, db, user.ID, "9 Side Rd", string(lifecycle.StatusPreparing))

	byLocation := func(page string) (orders []models.Order, count int64, pages int64) {
		target := "/api/orders/by-location"
		if page != "" {
			target += "?page=" + page
		}
		rec, c := doJSONRequest(t, http.MethodPost, target, transport.ByLocationRequest{Address: "1 Main St"})
		asUser(c, user)
		require.NoError(t, h.GetOrdersByLocation(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Orders      []models.Order `json:"orders"`
			CountOrders int64          `json:"countOrders"`
			Pages       int64          `json:"pages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Orders, resp.CountOrders, resp.Pages
	}

	orders, count, pages := byLocation("")
	require.Len(t, orders, 3)
	require.Equal(t, int64(4), count)
	require.Equal(t, int64(2), pages)
	for _, o := range orders {
		require.Equal(t, "1 Main St", o.ShippingAddress.Address)
	}

	orders, count, pages = byLocation("2")
	require.Len(t, orders, 1)
	require.Equal(t, int64(4), count)
	require.Equal(t, int64(2), pages)
}

func TestGetNotDeliveredByLocation(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db, Producer: testProducer(), Strict: true}
	user := createTestUser(t, db, "buyer", false)

	seedOrderAt(t, db, user.ID, "1 Main St", string(lifecycle.StatusDispatched))
	seedOrderAt(t, db, user.ID, "1 Main St", string(lifecycle.StatusPreparing))
	seedOrderAt(t, db, user.ID, "1 Main St", string(lifecycle.StatusDelivered))
	seedOrderAt(t, db, user.ID, "9 Side Rd", string(lifecycle.StatusDispatched))

	rec, c := doJSONRequest(t, http.MethodPost, "/api/orders/by-location/not-delivered",
		transport.ByLocationRequest{Address: "1 Main St"})
	asUser(c, user)
	require.NoError(t, h.GetNotDeliveredByLocation(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.Equal(t, string(lifecycle.StatusDispatched), orders[0].DeliveryStatus)
	require.Equal(t, "1 Main St", orders[0].ShippingAddress.Address)
}
