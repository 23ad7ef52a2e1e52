package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/lifecycle"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/transport"
)

func seedOrder(t *testing.T, db *gorm.DB, userID uint, total float64, status string, paid bool) {
	t.Helper()

	o := models.Order{
		UserID:         userID,
		TotalPrice:     total,
		DeliveryStatus: status,
		IsPaid:         paid,
	}
	require.NoError(t, db.Create(&o).Error)
}

func seedReservation(t *testing.T, db *gorm.DB, userID uint, total float64, status string, paid bool) {
	t.Helper()

	r := models.Reservation{
		UserID:         userID,
		TotalPrice:     total,
		DeliveryStatus: status,
		IsPaid:         paid,
	}
	require.NoError(t, db.Create(&r).Error)
}

func TestSummaryAggregates(t *testing.T) {
	db := InitTestDB(t)
	h := &ReportHandler{DB: db}
	u := createTestUser(t, db, "buyer", false)
	createTestUser(t, db, "admin", true)

	seedOrder(t, db, u.ID, 100, string(lifecycle.StatusPreparing), false)
	seedOrder(t, db, u.ID, 50, string(lifecycle.StatusDelivered), true)
	seedReservation(t, db, u.ID, 40, string(lifecycle.StatusPreparing), true)
	seedReservation(t, db, u.ID, 60, string(lifecycle.StatusCompleted), true)

	for _, p := range []models.Product{
		{Name: "Drill", Slug: "drill", Category: "Tools"},
		{Name: "Saw", Slug: "saw", Category: "Tools"},
		{Name: "Tent", Slug: "tent", Category: "Camping"},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/orders/summary", nil)
	require.NoError(t, h.Summary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Users                 []map[string]int64 `json:"users"`
		Orders                []salesTotal       `json:"orders"`
		Reservations          []salesTotal       `json:"reservations"`
		DailyOrders           []dailyBucket      `json:"dailyOrders"`
		MonthlyOrders         []monthlyBucket    `json:"monthlyOrders"`
		PreparingOrders       []statusCount      `json:"preparingOrders"`
		CompletedOrders       []statusCount      `json:"completedOrders"`
		PreparingReservations []statusCount      `json:"preparingReservations"`
		CompletedReservations []statusCount      `json:"completedReservations"`
		ProductCategories     []categoryCount    `json:"productCategories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Users, 1)
	require.Equal(t, int64(2), resp.Users[0]["numUsers"])

	require.Len(t, resp.Orders, 1)
	require.Equal(t, int64(2), resp.Orders[0].NumOrders)
	require.Equal(t, 150.0, resp.Orders[0].TotalSales)

	require.Len(t, resp.Reservations, 1)
	require.Equal(t, 100.0, resp.Reservations[0].TotalSales)

	// both orders were created today, so they land in one daily bucket
	// and one monthly bucket
	require.Len(t, resp.DailyOrders, 1)
	require.Equal(t, int64(2), resp.DailyOrders[0].Orders)
	require.Equal(t, 150.0, resp.DailyOrders[0].Sales)

	require.Len(t, resp.MonthlyOrders, 1)
	require.Equal(t, monthNames[time.Now().Month()-1], resp.MonthlyOrders[0].Month)
	require.Equal(t, time.Now().Year(), resp.MonthlyOrders[0].Year)
	require.Equal(t, 150.0, resp.MonthlyOrders[0].TotalAmount)

	require.Len(t, resp.PreparingOrders, 1)
	require.Equal(t, int64(1), resp.PreparingOrders[0].Count)
	require.Len(t, resp.CompletedOrders, 1)
	require.Equal(t, string(lifecycle.StatusDelivered), resp.CompletedOrders[0].Status)

	require.Len(t, resp.PreparingReservations, 1)
	require.Len(t, resp.CompletedReservations, 1)

	require.Len(t, resp.ProductCategories, 2)
	require.Equal(t, "Camping", resp.ProductCategories[0].Category)
	require.Equal(t, int64(1), resp.ProductCategories[0].Count)
	require.Equal(t, "Tools", resp.ProductCategories[1].Category)
	require.Equal(t, int64(2), resp.ProductCategories[1].Count)
}

func TestSummaryUnpaidPreparingReservationExcluded(t *testing.T) {
	db := InitTestDB(t)
	h := &ReportHandler{DB: db}
	u := createTestUser(t, db, "buyer", false)

	seedReservation(t, db, u.ID, 40, string(lifecycle.StatusPreparing), false)

	rec, c := doJSONRequest(t, http.MethodGet, "/api/orders/summary", nil)
	require.NoError(t, h.Summary(c))

	var resp struct {
		PreparingReservations []statusCount `json:"preparingReservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.PreparingReservations)
}

func TestFilterByDate(t *testing.T) {
	db := InitTestDB(t)
	h := &ReportHandler{DB: db}
	u := createTestUser(t, db, "buyer", false)

	seedOrder(t, db, u.ID, 100, string(lifecycle.StatusPreparing), true)
	seedOrder(t, db, u.ID, 50, string(lifecycle.StatusDelivered), true)
	seedOrder(t, db, u.ID, 25, string(lifecycle.StatusPreparing), false)

	now := time.Now().UTC()
	req := transport.DateRangeRequest{
		StartDate: now.Add(-time.Hour).Format(time.RFC3339),
		EndDate:   now.Add(time.Hour).Format(time.RFC3339),
	}
	rec, c := doJSONRequest(t, http.MethodPost, "/api/orders/filter-by-date", req)
	require.NoError(t, h.FilterByDate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	type rangeCount struct {
		Count      int64   `json:"count"`
		TotalSales float64 `json:"totalSales"`
	}
	var resp struct {
		Orders          []salesTotal `json:"orders"`
		PreparingOrders []rangeCount `json:"preparingOrders"`
		CompletedOrders []rangeCount `json:"completedOrders"`
		OrdersByDate    []rangeCount `json:"OrdersByDate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, int64(3), resp.Orders[0].NumOrders)
	require.Equal(t, 175.0, resp.Orders[0].TotalSales)
	require.Equal(t, int64(1), resp.PreparingOrders[0].Count, "unpaid preparing order must not count")
	require.Equal(t, 100.0, resp.PreparingOrders[0].TotalSales)
	require.Equal(t, int64(1), resp.CompletedOrders[0].Count)
	require.Equal(t, int64(3), resp.OrdersByDate[0].Count)
}

func TestFilterByDateEmptyRange(t *testing.T) {
	db := InitTestDB(t)
	h := &ReportHandler{DB: db}
	u := createTestUser(t, db, "buyer", false)
	seedOrder(t, db, u.ID, 100, string(lifecycle.StatusPreparing), true)

	past := time.Now().UTC().AddDate(-1, 0, 0)
	req := transport.DateRangeRequest{
		StartDate: past.Format(time.RFC3339),
		EndDate:   past.Add(24 * time.Hour).Format(time.RFC3339),
	}
	rec, c := doJSONRequest(t, http.MethodPost, "/api/orders/filter-by-date", req)
	require.NoError(t, h.FilterByDate(c))

	var resp struct {
		Orders []salesTotal `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(0), resp.Orders[0].NumOrders)
	require.Equal(t, 0.0, resp.Orders[0].TotalSales)
}
