package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/logging"
	authmw "github.com/rentkart/rentkart/internal/middleware/auth"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/transport"
)

// CreateReview appends a review under the caller's display name and
// recomputes the product's aggregate rating. One review per distinct
// reviewer name, checked by scanning the existing list.
func (h *ProductHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_review")

	reviewer, err := authmw.UserName(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("create_review_error", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_review_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		l.Warn("create_review_error", "status", 400, "reason", "rating out of range")
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be between 1 and 5")
	}

	var product models.Product
	var review models.Review

	txErr := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Reviews").First(&product, id).Error; err != nil {
			return err
		}

		for _, r := range product.Reviews {
			if r.Name == reviewer {
				return echo.NewHTTPError(http.StatusBadRequest, "You already submitted a review")
			}
		}

		review = models.Review{
			ProductID: product.ID,
			Name:      reviewer,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		product.Reviews = append(product.Reviews, review)
		product.NumReviews = len(product.Reviews)

		var sum float64
		for _, r := range product.Reviews {
			sum += r.Rating
		}
		product.Rating = sum / float64(len(product.Reviews))

		return tx.Save(&product).Error
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			l.Warn("create_review_failed", "status", he.Code, "reason", he.Message)
			return he
		}
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			l.Warn("create_review_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product Not Found")
		}
		l.Error("create_review_failed", "status", 500, "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create review")
	}

	h.publish(c, map[string]any{
		"type":      "review_created",
		"productID": product.ID,
		"reviewer":  reviewer,
		"rating":    review.Rating,
	})

	l.Info("create_review_success")
	return c.JSON(http.StatusCreated, map[string]any{
		"message":    "Review Created",
		"review":     review,
		"numReviews": product.NumReviews,
		"rating":     product.Rating,
	})
}
