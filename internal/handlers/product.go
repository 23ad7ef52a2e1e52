package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/rentkart/rentkart/internal/logging"
	"github.com/rentkart/rentkart/internal/models"
	"github.com/rentkart/rentkart/internal/mykafka"
	"github.com/rentkart/rentkart/internal/transport"
	"github.com/rentkart/rentkart/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	var products []models.Product
	if err := h.DB.WithContext(ctx).Preload("Reviews").Order("id ASC").Find(&products).Error; err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get products")
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).Preload("Reviews").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product Not Found")
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProductBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product_by_slug")

	var product models.Product
	if err := h.DB.WithContext(ctx).Preload("Reviews").Where("slug = ?", c.Param("slug")).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "slug not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product Not Found")
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_categories")

	var categories []string
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).Distinct("category").Order("category ASC").Pluck("category", &categories).Error; err != nil {
		l.Error("get_categories_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get categories")
	}

	return c.JSON(http.StatusOK, categories)
}

func (h *ProductHandler) GetProductsAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products_admin")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		l.Error("get_products_admin_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count products")
	}

	var products []models.Product
	if err := h.DB.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		l.Error("get_products_admin_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"products":      products,
		"countProducts": total,
		"page":          page,
		"pages":         (total + int64(limit) - 1) / int64(limit),
	})
}

// SearchProducts is the storefront filter query: free-text name match,
// category, price range, minimum rating and sort order, paginated.
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.WithContext(ctx).Model(&models.Product{})

	if query := c.QueryParam("query"); query != "" && query != "all" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}
	if category := c.QueryParam("category"); category != "" && category != "all" {
		q = q.Where("category = ?", category)
	}
	if rating := c.QueryParam("rating"); rating != "" && rating != "all" {
		min, err := strconv.ParseFloat(rating, 64)
		if err != nil {
			l.Warn("search_products_failed", "status", 400, "reason", "rating not a number")
			return echo.NewHTTPError(http.StatusBadRequest, "rating not a number")
		}
		q = q.Where("rating >= ?", min)
	}
	if price := c.QueryParam("price"); price != "" && price != "all" {
		bounds := strings.SplitN(price, "-", 2)
		if len(bounds) != 2 {
			l.Warn("search_products_failed", "status", 400, "reason", "price range malformed")
			return echo.NewHTTPError(http.StatusBadRequest, "price range malformed")
		}
		low, err1 := strconv.ParseFloat(bounds[0], 64)
		high, err2 := strconv.ParseFloat(bounds[1], 64)
		if err1 != nil || err2 != nil {
			l.Warn("search_products_failed", "status", 400, "reason", "price range malformed")
			return echo.NewHTTPError(http.StatusBadRequest, "price range malformed")
		}
		q = q.Where("price >= ? AND price <= ?", low, high)
	}

	switch c.QueryParam("order") {
	case "lowest":
		q = q.Order("price ASC")
	case "highest":
		q = q.Order("price DESC")
	case "toprated":
		q = q.Order("rating DESC")
	case "newest":
		q = q.Order("created_at DESC")
	default:
		q = q.Order("id DESC")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		l.Error("search_products_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count products")
	}

	var products []models.Product
	if err := q.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		l.Error("search_products_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"products":      products,
		"countProducts": total,
		"page":          page,
		"pages":         (total + int64(limit) - 1) / int64(limit),
	})
}

// CreateProduct inserts a sample-seeded product the admin then edits, the
// flow the dashboard expects.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	now := time.Now().UnixMilli()
	product := models.Product{
		Name:        fmt.Sprintf("sample name %d", now),
		Slug:        fmt.Sprintf("sample-name-%d", now),
		Image:       "/images/sample.png",
		Category:    "sample category",
		Brand:       "sample brand",
		Description: "sample description",
	}

	if err := h.DB.WithContext(ctx).Create(&product).Error; err != nil {
		l.Error("product_create_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("create_product_success")
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Product Created",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	var req transport.ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var product models.Product
	if err := h.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_update_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product Not Found")
		}
		l.Error("product_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	product.Name = req.Name
	product.Slug = req.Slug
	product.Image = req.Image
	product.Brand = req.Brand
	product.Category = req.Category
	product.Description = req.Description
	product.Price = req.Price
	product.Rent = req.Rent
	product.Penalty = req.Penalty
	product.CountInStock = req.CountInStock
	product.CountInStockForRent = req.CountInStockForRent

	if err := h.DB.WithContext(ctx).Save(&product).Error; err != nil {
		l.Error("product_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})

	l.Info("update_product_success")
	return c.JSON(http.StatusOK, map[string]any{"message": "Product Updated"})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not an integer")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		l.Error("product_delete_error", "status", 500, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}
	if res.RowsAffected == 0 {
		l.Warn("product_delete_error", "status", 404, "reason", "product not found")
		return echo.NewHTTPError(http.StatusNotFound, "Product Not Found")
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	l.Info("delete_product_success")
	return c.JSON(http.StatusOK, map[string]any{"message": "Product Deleted"})
}
