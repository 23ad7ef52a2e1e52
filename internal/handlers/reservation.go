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
)

type ReservationHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Strict   bool
}

func (h *ReservationHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "reservation_events", fmt.Sprint(event["reservationID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// CreateReservation mirrors order creation against the rental stock
// counter; line items carry the rental window and penalty rate.
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reservation.create_reservation")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req transport.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_reservation_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.OrderItems) == 0 {
		l.Warn("create_reservation_error", "status", 400, "reason", "no items")
		return echo.NewHTTPError(http.StatusBadRequest, "order items required")
	}

	reservation := models.Reservation{
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
			l.Warn("create_reservation_error", "status", 400, "reason", "quantity must be > 0")
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
		if it.ReturnDate.Before(it.PickupDate) {
			l.Warn("create_reservation_error", "status", 400, "reason", "return before pickup")
			return echo.NewHTTPError(http.StatusBadRequest, "return date before pickup date")
		}
		reservation.OrderItems = append(reservation.OrderItems, models.ReservationItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Image:      it.Image,
			Price:      it.Price,
			Quantity:   it.Quantity,
			PickupDate: it.PickupDate,
			ReturnDate: it.ReturnDate,
			Penalty:    it.Penalty,
		})
	}

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range reservation.OrderItems {
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "Product Not Found")
				}
				return err
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND count_in_stock_for_rent >= ?", it.ProductID, it.Quantity).
				UpdateColumn("count_in_stock_for_rent", gorm.Expr("count_in_stock_for_rent - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return echo.NewHTTPError(http.StatusConflict,
					fmt.Sprintf("insufficient rental stock for %s", product.Name))
			}
		}
		return tx.Create(&reservation).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			l.Warn("create_reservation_failed", "status", he.Code, "reason", he.Message)
			return he
		}
		l.Error("create_reservation_failed", "status", 500, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create reservation")
	}

	h.publish(c, map[string]any{
		"type":          "reservation_created",
		"reservationID": reservation.ID,
		"userID":        userID,
		"total":         reservation.TotalPrice,
	})

	l.Info("create_reservation_success", "reservation_id", reservation.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "New Reservation Created",
		"reservation": reservation,
	})
}

func (h *ReservationHandler) GetReservations(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reservation.get_reservations")

	var reservations []models.Reservation
	if err := h.DB.WithContext(ctx).Preload("OrderItems").Order("id ASC").Find(&reservations).Error; err != nil {
		l.Error("get_reservations_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get reservations")
	}

	for i := range reservations {
		var user models.User
		if err := h.DB.WithContext(ctx).Select("name").First(&user, reservations[i].UserID).Error; err == nil {
			reservations[i].UserName = user.Name
		}
	}

	return c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) GetMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reservation.get_mine")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var reservations []models.Reservation
	if err := h.DB.WithContext(ctx).Preload("OrderItems").Where("user_id = ?", userID).Order("id ASC").Find(&reservations).Error; err != nil {
		l.Error("get_mine_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get reservations")
	}

	return c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reservation.get_reservation")

	reservation, err := h.loadReservation(c, l)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) loadReservation(c echo.Context, l *slog.Logger) (*models.Reservation, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("reservation_lookup_error", "status", 400, "reason", "id not an integer", "error", err)
		return nil, echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var reservation models.Reservation
	if err := h.DB.WithContext(c.Request().Context()).Preload("OrderItems").First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("reservation_lookup_error", "status", 404, "reason", "reservation not found")
			return nil, echo.NewHTTPError(http.StatusNotFound, "Reservation Not Found")
		}
		l.Error("reservation_lookup_error", "status", 500, "error", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "cannot get reservation")
	}
	return &reservation, nil
}

func (h *ReservationHandler) step(r *models.Reservation, to lifecycle.Status) error {
	next, err := lifecycle.StepReservation(lifecycle.Status(r.DeliveryStatus), to, h.Strict)
	if err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	r.DeliveryStatus = string(next)
	return nil
}

func (h *ReservationHandler) transition(c echo.Context, name string, to lifecycle.Status, message string, stamp func(*models.Reservation, time.Time)) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reservation."+name)

	reservation, err := h.loadReservation(c, l)
	if err != nil {
		return err
	}

	if err := h.step(reservation, to); err != nil {
		l.Warn(name+"_rejected", "status", 409, "from", reservation.DeliveryStatus)
		return err
	}
	stamp(reservation, time.Now())

	if err := h.DB.WithContext(ctx).Save(reservation).Error; err != nil {
		l.Error(name+"_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update reservation")
	}

	h.publish(c, map[string]any{
		"type":          "reservation_" + name,
		"reservationID": reservation.ID,
		"status":        reservation.DeliveryStatus,
	})

	l.Info(name+"_success", "reservation_id", reservation.ID)
	return c.JSON(http.StatusOK, map[string]any{"message": message})
}

func (h *ReservationHandler) Dispatch(c echo.Context) error {
	return h.transition(c, "dispatch", lifecycle.StatusDispatched, "Reservation Dispatched",
		func(r *models.Reservation, now time.Time) {
			r.IsDispatched = true
			r.DispatchedAt = &now
		})
}

func (h *ReservationHandler) Deliver(c echo.Context) error {
	return h.transition(c, "deliver", lifecycle.StatusDelivered, "Reservation Delivered",
		func(r *models.Reservation, now time.Time) { r.DeliveredAt = &now })
}

func (h *ReservationHandler) Release(c echo.Context) error {
	return h.transition(c, "release", lifecycle.StatusReleased, "Reservation Released",
		func(r *models.Reservation, now time.Time) { r.ReleasedAt = &now })
}

func (h *ReservationHandler) Receive(c echo.Context) error {
	return h.transition(c, "receive", lifecycle.StatusReceived, "Reservation Received",
		func(r *models.Reservation, now time.Time) { r.ReceivedAt = &now })
}

func (h *ReservationHandler) Return(c echo.Context) error {
	return h.transition(c, "return", lifecycle.StatusReturned, "Reservation Returned",
		func(r *models.Reservation, now time.Time) { r.ReturnedAt = &now })
}

func (h *ReservationHandler) Complete(c echo.Context) error {
	return h.transition(c, "complete", lifecycle.StatusCompleted, "Reservation Completed",
		func(r *models.Reservation, now time.Time) { r.CompletedAt = &now })
}

// Pay mirrors the order Pay endpoint: the caller's payment result is
// stored verbatim.
func (h *ReservationHandler) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reservation.pay")

	reservation, err := h.loadReservation(c, l)
	if err != nil {
		return err
	}

	var req transport.PayRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("pay_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	now := time.Now()
	reservation.IsPaid = true
	reservation.PaidAt = &now
	reservation.PaymentResult = models.PaymentResult{
		ProviderID:   req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}

	if err := h.DB.WithContext(ctx).Save(reservation).Error; err != nil {
		l.Error("pay_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update reservation")
	}

	h.publish(c, map[string]any{"type": "reservation_paid", "reservationID": reservation.ID})
	l.Info("pay_success", "reservation_id", reservation.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Payment Completed Successfully",
		"reservation": reservation,
	})
}
