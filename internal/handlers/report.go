package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/lifecycle"
	"github.com/rentkart/rentkart/internal/logging"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/transport"
)

// ReportHandler serves the dashboard aggregates. Every figure is a plain
// grouped query at request time; nothing is cached or maintained
// incrementally.
type ReportHandler struct {
	DB *gorm.DB
}

type salesTotal struct {
	NumOrders  int64   `json:"numOrders"`
	TotalSales float64 `json:"totalSales"`
}

type dailyBucket struct {
	Day    string  `gorm:"column:day"   json:"_id"`
	Orders int64   `gorm:"column:num"   json:"orders"`
	Sales  float64 `gorm:"column:sales" json:"sales"`
}

type monthlyBucket struct {
	Month       string  `json:"month"`
	Year        int     `json:"year"`
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

type statusCount struct {
	Status string `gorm:"column:status" json:"_id"`
	Count  int64  `gorm:"column:num"    json:"count"`
}

type categoryCount struct {
	Category string `gorm:"column:category" json:"_id"`
	Count    int64  `gorm:"column:num"      json:"count"`
}

var monthNames = [12]string{
	"Jan", "Feb", "March", "April", "May", "June",
	"July", "Aug", "Sept", "Oct", "Nov", "Dec",
}

func (h *ReportHandler) totals(ctx context.Context, model any) (salesTotal, error) {
	var t salesTotal
	err := h.DB.WithContext(ctx).Model(model).
		Select("COUNT(*) AS num_orders, COALESCE(SUM(total_price), 0) AS total_sales").
		Scan(&t).Error
	return t, err
}

func (h *ReportHandler) daily(ctx context.Context, model any) ([]dailyBucket, error) {
	var buckets []dailyBucket
	err := h.DB.WithContext(ctx).Model(model).
		Select("date(created_at) AS day, COUNT(*) AS num, COALESCE(SUM(total_price), 0) AS sales").
		Group("date(created_at)").
		Order("day ASC").
		Scan(&buckets).Error
	return buckets, err
}

// monthly buckets the trailing twelve months in Go so the month-name
// projection stays independent of the SQL dialect's date functions.
func (h *ReportHandler) monthly(ctx context.Context, model any, since time.Time) ([]monthlyBucket, error) {
	var rows []struct {
		CreatedAt  time.Time
		TotalPrice float64
	}
	if err := h.DB.WithContext(ctx).Model(model).
		Select("created_at, total_price").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	type ym struct {
		year  int
		month time.Month
	}
	byMonth := map[ym]*monthlyBucket{}
	var keys []ym
	for _, r := range rows {
		k := ym{r.CreatedAt.Year(), r.CreatedAt.Month()}
		b, ok := byMonth[k]
		if !ok {
			b = &monthlyBucket{Month: monthNames[k.month-1], Year: k.year}
			byMonth[k] = b
			keys = append(keys, k)
		}
		b.Count++
		b.TotalAmount += r.TotalPrice
	}

	buckets := make([]monthlyBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, *byMonth[k])
	}
	return buckets, nil
}

func (h *ReportHandler) countByStatus(ctx context.Context, model any, status lifecycle.Status, paidOnly bool) ([]statusCount, error) {
	q := h.DB.WithContext(ctx).Model(model).
		Select("delivery_status AS status, COUNT(*) AS num").
		Where("delivery_status = ?", string(status))
	if paidOnly {
		q = q.Where("is_paid = ?", true)
	}
	var counts []statusCount
	err := q.Group("delivery_status").Scan(&counts).Error
	return counts, err
}

func (h *ReportHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.summary")

	fail := func(err error) error {
		l.Error("summary_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build summary")
	}

	var numUsers int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Count(&numUsers).Error; err != nil {
		return fail(err)
	}

	orderTotals, err := h.totals(ctx, &models.Order{})
	if err != nil {
		return fail(err)
	}
	reservationTotals, err := h.totals(ctx, &models.Reservation{})
	if err != nil {
		return fail(err)
	}

	dailyOrders, err := h.daily(ctx, &models.Order{})
	if err != nil {
		return fail(err)
	}
	dailyReservations, err := h.daily(ctx, &models.Reservation{})
	if err != nil {
		return fail(err)
	}

	since := time.Now().AddDate(0, -12, 0)
	monthlyOrders, err := h.monthly(ctx, &models.Order{}, since)
	if err != nil {
		return fail(err)
	}
	monthlyReservations, err := h.monthly(ctx, &models.Reservation{}, since)
	if err != nil {
		return fail(err)
	}

	preparingOrders, err := h.countByStatus(ctx, &models.Order{}, lifecycle.StatusPreparing, false)
	if err != nil {
		return fail(err)
	}
	completedOrders, err := h.countByStatus(ctx, &models.Order{}, lifecycle.StatusDelivered, false)
	if err != nil {
		return fail(err)
	}
	preparingReservations, err := h.countByStatus(ctx, &models.Reservation{}, lifecycle.StatusPreparing, true)
	if err != nil {
		return fail(err)
	}
	completedReservations, err := h.countByStatus(ctx, &models.Reservation{}, lifecycle.StatusCompleted, false)
	if err != nil {
		return fail(err)
	}

	var productCategories []categoryCount
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) AS num").
		Group("category").
		Order("category ASC").
		Scan(&productCategories).Error; err != nil {
		return fail(err)
	}

	var reservationsByDate []dailyBucket
	if err := h.DB.WithContext(ctx).Model(&models.Reservation{}).
		Select("date(created_at) AS day, COUNT(*) AS num, COALESCE(SUM(total_price), 0) AS sales").
		Where("created_at >= ?", since).
		Group("date(created_at)").
		Order("day ASC").
		Scan(&reservationsByDate).Error; err != nil {
		return fail(err)
	}

	l.Info("summary_success")
	return c.JSON(http.StatusOK, map[string]any{
		"users":                 []map[string]any{{"numUsers": numUsers}},
		"orders":                []salesTotal{orderTotals},
		"reservations":          []salesTotal{reservationTotals},
		"dailyOrders":           dailyOrders,
		"dailyReservations":     dailyReservations,
		"monthlyOrders":         monthlyOrders,
		"monthlyReservations":   monthlyReservations,
		"preparingOrders":       preparingOrders,
		"completedOrders":       completedOrders,
		"preparingReservations": preparingReservations,
		"completedReservations": completedReservations,
		"productCategories":     productCategories,
		"reservationsByDate":    reservationsByDate,
	})
}

func (h *ReportHandler) FilterByDate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.filter_by_date")

	var req transport.DateRangeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("filter_by_date_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	start, end, err := parseDateRange(req)
	if err != nil {
		l.Warn("filter_by_date_error", "status", 400, "reason", "invalid date range", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	fail := func(err error) error {
		l.Error("filter_by_date_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build report")
	}

	inRange := func() *gorm.DB {
		return h.DB.WithContext(ctx).Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", start, end)
	}

	var orders salesTotal
	if err := inRange().
		Select("COUNT(*) AS num_orders, COALESCE(SUM(total_price), 0) AS total_sales").
		Scan(&orders).Error; err != nil {
		return fail(err)
	}

	type rangeCount struct {
		Count      int64   `json:"count"`
		TotalSales float64 `json:"totalSales"`
	}

	var preparing rangeCount
	if err := inRange().
		Where("delivery_status = ? AND is_paid = ?", string(lifecycle.StatusPreparing), true).
		Select("COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS total_sales").
		Scan(&preparing).Error; err != nil {
		return fail(err)
	}

	var completed rangeCount
	if err := inRange().
		Where("delivery_status = ?", string(lifecycle.StatusDelivered)).
		Select("COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS total_sales").
		Scan(&completed).Error; err != nil {
		return fail(err)
	}

	var all rangeCount
	if err := inRange().
		Select("COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS total_sales").
		Scan(&all).Error; err != nil {
		return fail(err)
	}

	l.Info("filter_by_date_success")
	return c.JSON(http.StatusOK, map[string]any{
		"orders":          []salesTotal{orders},
		"preparingOrders": []rangeCount{preparing},
		"completedOrders": []rangeCount{completed},
		"OrdersByDate":    []rangeCount{all},
	})
}
