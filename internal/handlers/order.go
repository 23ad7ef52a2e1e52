package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/lifecycle"
	"github.com/rentkart/rentkart/internal/logging"
	authmw "github.com/rentkart/rentkart/internal/middleware/auth"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/mykafka"
	"github.com/rentkart/rentkart/internal/transport"
	"github.com/rentkart/rentkart/internal/util"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	// Strict rejects transitions outside the lifecycle table with 409.
	// Off reproduces the blind-write behavior of the historical API.
	Strict bool
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// CreateOrder snapshots the submitted line items and decrements purchase
// stock inside one transaction, so a shortfall on any item aborts the
// whole order.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.OrderItems) == 0 {
		l.Warn("create_order_error", "status", 400, "reason", "no items")
		return echo.NewHTTPError(http.StatusBadRequest, "order items required")
	}

	order := models.Order{
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
		DeliveryStatus:  string(lifecycle.StatusPreparing),
	}
	for _, it := range req.OrderItems {
		if it.Quantity <= 0 {
			l.Warn("create_order_error", "status", 400, "reason", "quantity must be > 0")
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range order.OrderItems {
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "Product Not Found")
				}
				return err
			}
			if product.CountInStock < it.Quantity {
				return echo.NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock for %s", product.Name))
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND count_in_stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("count_in_stock", gorm.Expr("count_in_stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return echo.NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient stock for %s", product.Name))
			}
		}
		return tx.Create(&order).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			l.Warn("create_order_failed", "status", he.Code, "reason", he.Message)
			return he
		}
		l.Error("create_order_failed", "status", 500, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create order")
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"total":   order.TotalPrice,
	})

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "New Order Created",
		"order":   order,
	})
}

func (h *OrderHandler) attachUserNames(ctx context.Context, orders []models.Order) {
	for i := range orders {
		var user models.User
		if err := h.DB.WithContext(ctx).Select("name").First(&user, orders[i].UserID).Error; err == nil {
			orders[i].UserName = user.Name
		}
	}
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Preload("OrderItems").Order("id ASC").Find(&orders).Error; err != nil {
		l.Error("get_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get orders")
	}
	h.attachUserNames(ctx, orders)

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_mine")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Preload("OrderItems").Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		l.Error("get_mine_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get orders")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_order_failed", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).Preload("OrderItems").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_order_failed", "status", 404, "reason", "order not found")
			return echo.NewHTTPError(http.StatusNotFound, "Order Not Found")
		}
		l.Error("get_order_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get order")
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrdersByDate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders_by_date")

	var req transport.DateRangeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("orders_by_date_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	start, end, err := parseDateRange(req)
	if err != nil {
		l.Warn("orders_by_date_error", "status", 400, "reason", "invalid date range", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Preload("OrderItems").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").Find(&orders).Error; err != nil {
		l.Error("orders_by_date_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get orders")
	}
	h.attachUserNames(ctx, orders)

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrdersByLocation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders_by_location")

	var req transport.ByLocationRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("orders_by_location_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Order{}).
		Where("shipping_address = ?", req.Address).Count(&total).Error; err != nil {
		l.Error("orders_by_location_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count orders")
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Preload("OrderItems").
		Where("shipping_address = ?", req.Address).
		Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		l.Error("orders_by_location_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get orders")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"orders":      orders,
		"countOrders": total,
		"page":        page,
		"pages":       (total + int64(limit) - 1) / int64(limit),
	})
}

func (h *OrderHandler) GetNotDeliveredByLocation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_not_delivered_by_location")

	var req transport.ByLocationRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("not_delivered_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var orders []models.Order
	if err := h.DB.WithContext(ctx).Preload("OrderItems").
		Where("shipping_address = ? AND delivery_status = ?", req.Address, string(lifecycle.StatusDispatched)).
		Find(&orders).Error; err != nil {
		l.Error("not_delivered_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get orders")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) loadOrder(c echo.Context, l *slog.Logger) (*models.Order, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("order_transition_error", "status", 400, "reason", "id not an integer", "error", err)
		return nil, echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var order models.Order
	if err := h.DB.WithContext(c.Request().Context()).Preload("OrderItems").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("order_transition_error", "status", 404, "reason", "order not found")
			return nil, echo.NewHTTPError(http.StatusNotFound, "Order Not Found")
		}
		l.Error("order_transition_error", "status", 500, "error", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "cannot get order")
	}
	return &order, nil
}

func (h *OrderHandler) step(order *models.Order, to lifecycle.Status) error {
	next, err := lifecycle.StepOrder(lifecycle.Status(order.DeliveryStatus), to, h.Strict)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	order.DeliveryStatus = string(next)
	return nil
}

func (h *OrderHandler) Dispatch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.dispatch")

	order, err := h.loadOrder(c, l)
	if err != nil {
		return err
	}

	if err := h.step(order, lifecycle.StatusDispatched); err != nil {
		l.Warn("dispatch_rejected", "status", 409, "from", order.DeliveryStatus)
		return err
	}
	now := time.Now()
	order.IsDispatched = true
	order.DispatchedAt = &now

	if err := h.DB.WithContext(ctx).Save(order).Error; err != nil {
		l.Error("dispatch_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
	}

	h.publish(c, map[string]any{"type": "order_dispatched", "orderID": order.ID})
	l.Info("dispatch_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{"message": "Order Dispatched"})
}

func (h *OrderHandler) Deliver(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.deliver")

	order, err := h.loadOrder(c, l)
	if err != nil {
		return err
	}

	if err := h.step(order, lifecycle.StatusDelivered); err != nil {
		l.Warn("deliver_rejected", "status", 409, "from", order.DeliveryStatus)
		return err
	}
	now := time.Now()
	order.DeliveredAt = &now

	if err := h.DB.WithContext(ctx).Save(order).Error; err != nil {
		l.Error("deliver_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
	}

	h.publish(c, map[string]any{"type": "order_delivered", "orderID": order.ID})
	l.Info("deliver_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{"message": "Order Delivered"})
}

// Pay stores the payment processor's result verbatim; the caller is
// trusted, the processor is not consulted.
func (h *OrderHandler) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	order, err := h.loadOrder(c, l)
	if err != nil {
		return err
	}

	var req transport.PayRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("pay_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = models.PaymentResult{
		ProviderID:   req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}

	if err := h.DB.WithContext(ctx).Save(order).Error; err != nil {
		l.Error("pay_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
	}

	h.publish(c, map[string]any{"type": "order_paid", "orderID": order.ID})
	l.Info("pay_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Payment Completed Successfully",
		"order":   order,
	})
}

func parseDateRange(req transport.DateRangeRequest) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
